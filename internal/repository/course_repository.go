package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/orm-demo/internal/models"
	"github.com/noah-isme/orm-demo/internal/schema"
)

// CourseRepository manages persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// CreateBatch inserts courses in one transaction and returns them in input order with IDs.
func (r *CourseRepository) CreateBatch(ctx context.Context, courses []models.Course) ([]models.Course, error) {
	rows := make([][]interface{}, len(courses))
	for i, c := range courses {
		rows[i] = []interface{}{c.Name}
	}
	ids, err := insertReturningIDs(ctx, r.db, schema.Courses.InsertReturningID(), rows)
	if err != nil {
		return nil, fmt.Errorf("create courses: %w", err)
	}
	created := make([]models.Course, len(courses))
	for i, c := range courses {
		c.ID = ids[i]
		created[i] = c
	}
	return created, nil
}

// List returns every course in storage order.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT c.id, c.name FROM courses c ORDER BY c.id`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListByStudent returns the courses associated with a student, in association order.
func (r *CourseRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, schema.StudentCourses.TargetsQuery(), studentID); err != nil {
		return nil, fmt.Errorf("list student courses: %w", err)
	}
	return courses, nil
}

// CountStudents returns, for every course, how many association rows point at it.
func (r *CourseRepository) CountStudents(ctx context.Context) ([]models.CourseHeadcount, error) {
	query := schema.CourseStudents.CountQuery("student_count", "s.id AS course_id", "s.name")
	var counts []models.CourseHeadcount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count course students: %w", err)
	}
	return counts, nil
}
