// Package seed holds the fixed rows loaded by both demo flows.
package seed

import (
	"time"

	"github.com/noah-isme/orm-demo/internal/models"
)

// Assignment lists the course names a student is linked to, in link order.
type Assignment struct {
	StudentID int64
	Courses   []string
}

func date(raw string) time.Time {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		panic(err)
	}
	return d
}

// FirstStudent is the record saved on its own before the bulk insert in the
// single-entity flow.
func FirstStudent() models.Student {
	return models.Student{FirstName: "John", LastName: "Smith", EnrollmentDate: date("2021-08-13")}
}

// Students returns the bulk-inserted students.
func Students() []models.Student {
	return []models.Student{
		{FirstName: "Alice", LastName: "Black", EnrollmentDate: date("2021-08-01")},
		{FirstName: "Peter", LastName: "Brown", EnrollmentDate: date("2021-07-28")},
		{FirstName: "Fred", LastName: "Green", EnrollmentDate: date("2021-08-13")},
		{FirstName: "Sarah", LastName: "Silver", EnrollmentDate: date("2021-08-23")},
		{FirstName: "Jack", LastName: "White", EnrollmentDate: date("2021-07-12")},
	}
}

// Courses returns the bulk-inserted courses.
func Courses() []models.Course {
	return []models.Course{
		{Name: "History"},
		{Name: "French"},
		{Name: "English"},
		{Name: "Physics"},
		{Name: "Biology"},
		{Name: "Chemistry"},
	}
}

// ReportStudent is the position in Students of the student whose courses
// the enrollments flow lists.
const ReportStudent = 2

// courseNames holds the course list of each bulk-inserted student, by
// position in Students. Jack takes none.
func courseNames() [][]string {
	return [][]string{
		{"English", "French"},
		{"English", "History", "Biology"},
		{"English", "French", "Biology", "Physics"},
		{"Biology"},
	}
}

// AssignmentsFor pairs the course lists with students as returned by the
// bulk insert, matching by position. Students without courses are skipped.
func AssignmentsFor(students []models.Student) []Assignment {
	names := courseNames()
	assignments := make([]Assignment, 0, len(names))
	for i, s := range students {
		if i >= len(names) {
			break
		}
		assignments = append(assignments, Assignment{StudentID: s.ID, Courses: names[i]})
	}
	return assignments
}
