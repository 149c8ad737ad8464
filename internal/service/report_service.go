package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/orm-demo/internal/models"
	appErrors "github.com/noah-isme/orm-demo/pkg/errors"
)

type studentReader interface {
	List(ctx context.Context) ([]models.Student, error)
	Count(ctx context.Context) (int, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type courseReader interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.Course, error)
	CountStudents(ctx context.Context) ([]models.CourseHeadcount, error)
}

// ReportService answers the read-only demo queries.
type ReportService struct {
	students studentReader
	courses  courseReader
	logger   *zap.Logger
	metrics  *MetricsService
}

// NewReportService constructs the report service. courses may be nil for
// the single-entity flow.
func NewReportService(students studentReader, courses courseReader, metrics *MetricsService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{students: students, courses: courses, metrics: metrics, logger: logger}
}

// ListAll returns every stored student and the total the database counts.
func (s *ReportService) ListAll(ctx context.Context) ([]models.Student, int, error) {
	students, err := s.listStudents(ctx)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	total, err := s.students.Count(ctx)
	if err != nil {
		return nil, 0, appErrors.FromPostgres(err, "failed to count students")
	}
	s.metrics.ObserveDBQuery("count_students", time.Since(start))
	if total != len(students) {
		s.logger.Warn("student count differs from listed rows", zap.Int("count", total), zap.Int("listed", len(students)))
	}
	return students, total, nil
}

// SortedByFirstName returns all students ascending by first name. Ties keep storage order.
func (s *ReportService) SortedByFirstName(ctx context.Context) ([]models.Student, error) {
	students, err := s.listStudents(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(students, func(i, j int) bool {
		return students[i].FirstName < students[j].FirstName
	})
	return students, nil
}

// EnrolledInMonth returns students whose enrollment date falls in month,
// ascending by enrollment date. Ties keep storage order.
func (s *ReportService) EnrolledInMonth(ctx context.Context, month time.Month) ([]models.Student, error) {
	students, err := s.listStudents(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.Student, 0, len(students))
	for _, st := range students {
		if st.EnrollmentDate.Month() == month {
			filtered = append(filtered, st)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].EnrollmentDate.Before(filtered[j].EnrollmentDate)
	})
	return filtered, nil
}

// CountStudentsPerCourse returns one headcount per distinct course name.
// When several courses share a name, the first stored one is reported.
func (s *ReportService) CountStudentsPerCourse(ctx context.Context) ([]models.CourseHeadcount, error) {
	start := time.Now()
	counts, err := s.courses.CountStudents(ctx)
	if err != nil {
		return nil, appErrors.FromPostgres(err, "failed to count students per course")
	}
	s.metrics.ObserveDBQuery("count_course_students", time.Since(start))

	seen := make(map[string]bool, len(counts))
	distinct := make([]models.CourseHeadcount, 0, len(counts))
	for _, c := range counts {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		distinct = append(distinct, c)
	}
	return distinct, nil
}

// CoursesForStudent returns the student and its courses in association order.
func (s *ReportService) CoursesForStudent(ctx context.Context, studentID int64) (*models.StudentCourses, error) {
	start := time.Now()
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %d not found", studentID))
		}
		return nil, appErrors.FromPostgres(err, "failed to load student")
	}
	courses, err := s.courses.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.FromPostgres(err, "failed to load student courses")
	}
	s.metrics.ObserveDBQuery("student_courses", time.Since(start))
	if courses == nil {
		courses = []models.Course{}
	}
	return &models.StudentCourses{Student: *student, Courses: courses}, nil
}

func (s *ReportService) listStudents(ctx context.Context) ([]models.Student, error) {
	start := time.Now()
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.FromPostgres(err, "failed to list students")
	}
	s.metrics.ObserveDBQuery("list_students", time.Since(start))
	return students, nil
}
