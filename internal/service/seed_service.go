package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/orm-demo/internal/models"
	"github.com/noah-isme/orm-demo/internal/seed"
	appErrors "github.com/noah-isme/orm-demo/pkg/errors"
)

type studentWriter interface {
	Create(ctx context.Context, student *models.Student) error
	CreateBatch(ctx context.Context, students []models.Student) ([]models.Student, error)
}

type courseStore interface {
	CreateBatch(ctx context.Context, courses []models.Course) ([]models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
}

type enrollmentWriter interface {
	AssignBatch(ctx context.Context, studentID int64, courseIDs []int64) ([]models.StudentCourse, error)
}

// CourseIndex maps a course name to the ID of the first course stored under it.
type CourseIndex map[string]int64

// NewCourseIndex indexes courses by name; on duplicate names the first one wins.
func NewCourseIndex(courses []models.Course) CourseIndex {
	idx := make(CourseIndex, len(courses))
	for _, c := range courses {
		if _, ok := idx[c.Name]; !ok {
			idx[c.Name] = c.ID
		}
	}
	return idx
}

// Lookup resolves an exact course name.
func (idx CourseIndex) Lookup(name string) (int64, error) {
	id, ok := idx[name]
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %q not found", name))
	}
	return id, nil
}

// SeedService loads the fixed demo rows.
type SeedService struct {
	students    studentWriter
	courses     courseStore
	enrollments enrollmentWriter
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewSeedService constructs the seed service. enrollments and courses may be
// nil for the single-entity flow.
func NewSeedService(students studentWriter, courses courseStore, enrollments enrollmentWriter, metrics *MetricsService, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{students: students, courses: courses, enrollments: enrollments, metrics: metrics, logger: logger}
}

// InsertStudent stores one student and sets its generated ID.
func (s *SeedService) InsertStudent(ctx context.Context, student *models.Student) error {
	start := time.Now()
	if err := s.students.Create(ctx, student); err != nil {
		return appErrors.FromPostgres(err, "failed to insert student")
	}
	s.metrics.ObserveDBQuery("insert_student", time.Since(start))
	s.metrics.AddRows("students", 1)
	s.logger.Debug("student inserted", zap.Int64("id", student.ID))
	return nil
}

// InsertStudents stores a batch in one transaction and returns it in input order with IDs.
func (s *SeedService) InsertStudents(ctx context.Context, students []models.Student) ([]models.Student, error) {
	start := time.Now()
	created, err := s.students.CreateBatch(ctx, students)
	if err != nil {
		return nil, appErrors.FromPostgres(err, "failed to insert students")
	}
	s.metrics.ObserveDBQuery("insert_students", time.Since(start))
	s.metrics.AddRows("students", len(created))
	s.logger.Debug("students inserted", zap.Int("count", len(created)))
	return created, nil
}

// InsertCourses stores a batch in one transaction and returns it in input order with IDs.
func (s *SeedService) InsertCourses(ctx context.Context, courses []models.Course) ([]models.Course, error) {
	start := time.Now()
	created, err := s.courses.CreateBatch(ctx, courses)
	if err != nil {
		return nil, appErrors.FromPostgres(err, "failed to insert courses")
	}
	s.metrics.ObserveDBQuery("insert_courses", time.Since(start))
	s.metrics.AddRows("courses", len(created))
	s.logger.Debug("courses inserted", zap.Int("count", len(created)))
	return created, nil
}

// BuildCourseIndex loads every stored course once and indexes it by name.
func (s *SeedService) BuildCourseIndex(ctx context.Context) (CourseIndex, error) {
	start := time.Now()
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.FromPostgres(err, "failed to load courses")
	}
	s.metrics.ObserveDBQuery("list_courses", time.Since(start))
	return NewCourseIndex(courses), nil
}

// AssignCourses links a student to the named courses and commits once for
// the student. Every name is resolved before anything is written, so an
// unknown name leaves the student without new links.
func (s *SeedService) AssignCourses(ctx context.Context, idx CourseIndex, studentID int64, names []string) ([]models.StudentCourse, error) {
	if len(names) == 0 {
		return nil, nil
	}
	courseIDs := make([]int64, len(names))
	for i, name := range names {
		id, err := idx.Lookup(name)
		if err != nil {
			return nil, err
		}
		courseIDs[i] = id
	}

	start := time.Now()
	links, err := s.enrollments.AssignBatch(ctx, studentID, courseIDs)
	if err != nil {
		return nil, appErrors.FromPostgres(err, fmt.Sprintf("failed to assign courses to student %d", studentID))
	}
	s.metrics.ObserveDBQuery("assign_courses", time.Since(start))
	s.metrics.AddRows("studentscourses", len(links))
	s.logger.Debug("courses assigned", zap.Int64("student_id", studentID), zap.Strings("courses", names))
	return links, nil
}

// ApplyAssignments builds the course index once and assigns each entry in order.
func (s *SeedService) ApplyAssignments(ctx context.Context, assignments []seed.Assignment) error {
	idx, err := s.BuildCourseIndex(ctx)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if _, err := s.AssignCourses(ctx, idx, a.StudentID, a.Courses); err != nil {
			return err
		}
	}
	return nil
}
