package handler

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/orm-demo/internal/models"
	"github.com/noah-isme/orm-demo/internal/seed"
	"github.com/noah-isme/orm-demo/internal/service"
)

const (
	headerSetup    = "----Database setup----"
	headerPopulate = "----Table population----"
	headerQuery    = "----Table query----"
)

type provisioner interface {
	Reset(ctx context.Context) error
}

type seeder interface {
	InsertStudent(ctx context.Context, student *models.Student) error
	InsertStudents(ctx context.Context, students []models.Student) ([]models.Student, error)
	InsertCourses(ctx context.Context, courses []models.Course) ([]models.Course, error)
	ApplyAssignments(ctx context.Context, assignments []seed.Assignment) error
}

type reporter interface {
	ListAll(ctx context.Context) ([]models.Student, int, error)
	SortedByFirstName(ctx context.Context) ([]models.Student, error)
	EnrolledInMonth(ctx context.Context, month time.Month) ([]models.Student, error)
	CountStudentsPerCourse(ctx context.Context) ([]models.CourseHeadcount, error)
	CoursesForStudent(ctx context.Context, studentID int64) (*models.StudentCourses, error)
}

// DemoHandler runs a demo flow end to end and prints its console report.
type DemoHandler struct {
	provision provisioner
	seeds     seeder
	reports   reporter
	out       io.Writer
	logger    *zap.Logger
	metrics   *service.MetricsService
}

// NewDemoHandler constructs handler.
func NewDemoHandler(provision provisioner, seeds seeder, reports reporter, out io.Writer, metrics *service.MetricsService, logger *zap.Logger) *DemoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DemoHandler{provision: provision, seeds: seeds, reports: reports, out: out, metrics: metrics, logger: logger}
}

// RunStudents runs the single-entity flow: one student saved alone, five in
// bulk, then the count, sorted and August listings.
func (h *DemoHandler) RunStudents(ctx context.Context) error {
	p := &printer{w: h.out}

	if err := h.setup(ctx, p); err != nil {
		return err
	}

	p.line(headerPopulate)
	err := h.step("populate", func() error {
		first := seed.FirstStudent()
		if err := h.seeds.InsertStudent(ctx, &first); err != nil {
			return err
		}
		p.linef("Saved first student record. The database generated PK value '%d' for this record", first.ID)

		created, err := h.seeds.InsertStudents(ctx, seed.Students())
		if err != nil {
			return err
		}
		p.printStudentIDs(created)
		return nil
	})
	if err != nil {
		return err
	}
	p.sectionBreak()

	p.line(headerQuery)
	err = h.step("query", func() error {
		_, total, err := h.reports.ListAll(ctx)
		if err != nil {
			return err
		}
		p.linef("Total number of student records in database: %d", total)
		p.blank()

		sorted, err := h.reports.SortedByFirstName(ctx)
		if err != nil {
			return err
		}
		p.line("Student records sorted by FirstName:")
		for _, s := range sorted {
			p.linef("%s: %d", s.FullName(), s.ID)
		}
		p.blank()

		august, err := h.reports.EnrolledInMonth(ctx, time.August)
		if err != nil {
			return err
		}
		p.line("Student enrolled in August:")
		for _, s := range august {
			p.linef("%s: %s", s.FullName(), s.EnrollmentDate.Format("2006-01-02"))
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.sectionBreak()

	return p.err
}

// RunEnrollments runs the many-to-many flow: students and courses in bulk,
// the fixed course assignments, then per-course headcounts and the course
// list of one student.
func (h *DemoHandler) RunEnrollments(ctx context.Context) error {
	p := &printer{w: h.out}

	if err := h.setup(ctx, p); err != nil {
		return err
	}

	var reportID int64

	p.line(headerPopulate)
	err := h.step("populate", func() error {
		students, err := h.seeds.InsertStudents(ctx, seed.Students())
		if err != nil {
			return err
		}
		p.printStudentIDs(students)

		courses, err := h.seeds.InsertCourses(ctx, seed.Courses())
		if err != nil {
			return err
		}
		p.line("The following PK values were generated for the bulk insertion of records:")
		for _, c := range courses {
			p.linef("%s: %d", c.Name, c.ID)
		}

		if len(students) > seed.ReportStudent {
			reportID = students[seed.ReportStudent].ID
		}
		return h.seeds.ApplyAssignments(ctx, seed.AssignmentsFor(students))
	})
	if err != nil {
		return err
	}
	p.sectionBreak()

	p.line(headerQuery)
	err = h.step("query", func() error {
		counts, err := h.reports.CountStudentsPerCourse(ctx)
		if err != nil {
			return err
		}
		for _, c := range counts {
			p.linef("Total count of students in the %s course: %d", c.Name, c.StudentCount)
		}
		p.blank()

		result, err := h.reports.CoursesForStudent(ctx, reportID)
		if err != nil {
			return err
		}
		p.linef("Following courses are assigned to student: %s", result.Student.FullName())
		for _, c := range result.Courses {
			p.linef("\t %s", c.Name)
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.sectionBreak()

	return p.err
}

func (h *DemoHandler) setup(ctx context.Context, p *printer) error {
	p.line(headerSetup)
	if err := h.provision.Reset(ctx); err != nil {
		return err
	}
	p.sectionBreak()
	return nil
}

func (h *DemoHandler) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	h.metrics.ObserveStep(name, time.Since(start))
	if err != nil {
		h.logger.Error("demo step failed", zap.String("step", name), zap.Error(err))
		return err
	}
	h.logger.Debug("demo step finished", zap.String("step", name), zap.Duration("took", time.Since(start)))
	return nil
}

// printer writes report lines and keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s+"\n")
}

func (p *printer) linef(format string, args ...interface{}) {
	p.line(fmt.Sprintf(format, args...))
}

// blank separates listings within a section.
func (p *printer) blank() {
	p.line("\n")
}

// sectionBreak closes a section.
func (p *printer) sectionBreak() {
	p.line("\n\n")
}

func (p *printer) printStudentIDs(students []models.Student) {
	p.line("The following PK values were generated for the bulk insertion of records:")
	for _, s := range students {
		p.linef("%s: %d", s.FullName(), s.ID)
	}
}
