// Package schema declares the tables of the demo database and the
// student/course relation that resolves through the join table.
package schema

import (
	"fmt"
	"strings"
)

// Column is a single column declaration.
type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
	References *Reference
}

// Reference is a foreign key target.
type Reference struct {
	Table  string
	Column string
}

// Table is a named list of columns.
type Table struct {
	Name    string
	Columns []Column
}

// CreateSQL renders the CREATE TABLE statement.
func (t Table) CreateSQL() string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		def := c.Name + " " + c.Type
		if c.PrimaryKey {
			def += " PRIMARY KEY"
		}
		if c.References != nil {
			def += fmt.Sprintf(" REFERENCES %s (%s)", c.References.Table, c.References.Column)
		}
		defs[i] = def
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, strings.Join(defs, ", "))
}

// DropSQL renders an idempotent DROP TABLE statement.
func (t Table) DropSQL() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", t.Name)
}

// InsertColumns lists every column except the engine-assigned primary key.
func (t Table) InsertColumns() []string {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.PrimaryKey {
			continue
		}
		cols = append(cols, c.Name)
	}
	return cols
}

// SelectColumns lists every column qualified with alias.
func (t Table) SelectColumns(alias string) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = alias + "." + c.Name
	}
	return strings.Join(cols, ", ")
}

// InsertReturningID renders a positional INSERT ... RETURNING id for the table.
func (t Table) InsertReturningID() string {
	cols := t.InsertColumns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		t.Name, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}

func pk() Column {
	return Column{Name: "id", Type: "SERIAL", PrimaryKey: true}
}

var (
	Students = Table{
		Name: "students",
		Columns: []Column{
			pk(),
			{Name: "first_name", Type: "VARCHAR"},
			{Name: "last_name", Type: "VARCHAR"},
			{Name: "enrollment_date", Type: "DATE"},
		},
	}

	Courses = Table{
		Name: "courses",
		Columns: []Column{
			pk(),
			{Name: "name", Type: "VARCHAR"},
		},
	}

	// StudentsCourses carries no uniqueness on (student_id, course_id).
	StudentsCourses = Table{
		Name: "studentscourses",
		Columns: []Column{
			pk(),
			{Name: "student_id", Type: "INTEGER", References: &Reference{Table: "students", Column: "id"}},
			{Name: "course_id", Type: "INTEGER", References: &Reference{Table: "courses", Column: "id"}},
		},
	}
)

// Schema is an ordered table set; parents precede the tables referencing them.
type Schema []Table

// StudentsOnly is the single-entity schema.
var StudentsOnly = Schema{Students}

// StudentsAndCourses adds courses and the join table.
var StudentsAndCourses = Schema{Students, Courses, StudentsCourses}

// CreateStatements renders CREATE TABLE in declaration order.
func (s Schema) CreateStatements() []string {
	stmts := make([]string, len(s))
	for i, t := range s {
		stmts[i] = t.CreateSQL()
	}
	return stmts
}

// DropStatements renders DROP TABLE in reverse declaration order.
func (s Schema) DropStatements() []string {
	stmts := make([]string, len(s))
	for i, t := range s {
		stmts[len(s)-1-i] = t.DropSQL()
	}
	return stmts
}

// Names returns the table names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, t := range s {
		names[i] = t.Name
	}
	return names
}
