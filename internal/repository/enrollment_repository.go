package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/orm-demo/internal/models"
	"github.com/noah-isme/orm-demo/internal/schema"
)

// EnrollmentRepository handles persistence of student-course associations.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// AssignBatch links a student to each course in courseIDs, in order, within
// one transaction. Existing links are not checked; repeats create new rows.
func (r *EnrollmentRepository) AssignBatch(ctx context.Context, studentID int64, courseIDs []int64) ([]models.StudentCourse, error) {
	rows := make([][]interface{}, len(courseIDs))
	for i, courseID := range courseIDs {
		rows[i] = []interface{}{studentID, courseID}
	}
	ids, err := insertReturningIDs(ctx, r.db, schema.StudentsCourses.InsertReturningID(), rows)
	if err != nil {
		return nil, fmt.Errorf("assign courses to student %d: %w", studentID, err)
	}
	links := make([]models.StudentCourse, len(courseIDs))
	for i, courseID := range courseIDs {
		links[i] = models.StudentCourse{ID: ids[i], StudentID: studentID, CourseID: courseID}
	}
	return links, nil
}
