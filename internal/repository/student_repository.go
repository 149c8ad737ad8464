package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/orm-demo/internal/models"
	"github.com/noah-isme/orm-demo/internal/schema"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a single student in its own transaction and sets the generated ID.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	ids, err := insertReturningIDs(ctx, r.db, schema.Students.InsertReturningID(), [][]interface{}{studentArgs(*student)})
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	student.ID = ids[0]
	return nil
}

// CreateBatch inserts students in one transaction. The result is a copy of
// the input, in input order, with IDs populated.
func (r *StudentRepository) CreateBatch(ctx context.Context, students []models.Student) ([]models.Student, error) {
	rows := make([][]interface{}, len(students))
	for i, s := range students {
		rows[i] = studentArgs(s)
	}
	ids, err := insertReturningIDs(ctx, r.db, schema.Students.InsertReturningID(), rows)
	if err != nil {
		return nil, fmt.Errorf("create students: %w", err)
	}
	created := make([]models.Student, len(students))
	for i, s := range students {
		s.ID = ids[i]
		created[i] = s
	}
	return created, nil
}

// List returns every student in storage order.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s ORDER BY s.id", schema.Students.SelectColumns("s"))
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Count returns the number of stored students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// FindByID fetches a student by ID. A missing row yields sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s WHERE s.id = $1", schema.Students.SelectColumns("s"))
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

func studentArgs(s models.Student) []interface{} {
	return []interface{}{s.FirstName, s.LastName, s.EnrollmentDate}
}
