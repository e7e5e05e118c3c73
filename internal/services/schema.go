package services

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lojf/enrollments/internal/models"
)

// ErrInvalidField is returned (wrapped with the field name) when a typed
// field is missing or cannot be coerced.
var ErrInvalidField = errors.New("invalid field")

type Variant string

const (
	VariantFull    Variant = "full"
	VariantReduced Variant = "reduced"
)

// Control is one input of the HTML form, in display order.
type Control struct {
	Name    string // form key, matches the schema field exactly
	ID      string
	Label   string
	Input   string // number | text | date | select | textarea | email | tel
	Options []string
}

// Submission holds the coerced typed fields of a form post.
type Submission struct {
	StudentID        int
	CourseID         int
	EnrollmentDate   time.Time
	RegistrationDate time.Time
	DateOfBirth      time.Time
}

// Coercion parses one form value into the submission.
type Coercion struct {
	Field string
	Apply func(raw string, s *Submission) error
}

// Schema describes one enrollment variant: its form, its coercion order and
// how a record is assembled.
type Schema struct {
	Variant   Variant
	Controls  []Control
	Coercions []Coercion

	build  func(s Submission, form url.Values) models.Record
	record func() models.Record
}

// SchemaFor returns the schema of the named variant.
func SchemaFor(v Variant) (*Schema, error) {
	switch v {
	case VariantFull:
		return fullSchema, nil
	case VariantReduced:
		return reducedSchema, nil
	default:
		return nil, fmt.Errorf("unknown enrollment variant %q", v)
	}
}

// NewRecord returns an empty record of the variant, used for migrations.
func (s *Schema) NewRecord() models.Record { return s.record() }

// Parse runs the coercions in order and stops at the first failure. Free-text
// fields are copied verbatim.
func (s *Schema) Parse(form url.Values) (models.Record, error) {
	var sub Submission
	for _, c := range s.Coercions {
		if err := c.Apply(form.Get(c.Field), &sub); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Field, err)
		}
	}
	return s.build(sub, form), nil
}

func intField(dst func(*Submission) *int) func(string, *Submission) error {
	return func(raw string, s *Submission) error {
		n, err := ParseInt(raw)
		if err != nil {
			return err
		}
		*dst(s) = n
		return nil
	}
}

func dateField(dst func(*Submission) *time.Time) func(string, *Submission) error {
	return func(raw string, s *Submission) error {
		t, err := ParseDate(raw)
		if err != nil {
			return err
		}
		*dst(s) = t
		return nil
	}
}

// ParseInt accepts an optionally signed 32-bit decimal with surrounding whitespace.
func ParseInt(raw string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, ErrInvalidField
	}
	return int(n), nil
}

var dateLayouts = []string{
	"2006-1-2",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/1/2",
	"2006/1/2 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// ParseDate accepts ISO dates (slash or dash, unpadded ok) and date-times,
// RFC 3339, M/D/YYYY and English month-name dates.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrInvalidField
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidField
}

var (
	studentID      = Coercion{"StudentId", intField(func(s *Submission) *int { return &s.StudentID })}
	courseID       = Coercion{"CourseId", intField(func(s *Submission) *int { return &s.CourseID })}
	enrollmentDate = Coercion{"EnrollmentDate", dateField(func(s *Submission) *time.Time { return &s.EnrollmentDate })}
)

var fullSchema = &Schema{
	Variant: VariantFull,
	Controls: []Control{
		{Name: "StudentId", ID: "studentId", Label: "Student ID", Input: "number"},
		{Name: "StudentName", ID: "studentName", Label: "Student Name", Input: "text"},
		{Name: "DateOfBirth", ID: "dateOfBirth", Label: "Date of Birth", Input: "date"},
		{Name: "Gender", ID: "gender", Label: "Gender", Input: "select", Options: []string{"Male", "Female", "Other"}},
		{Name: "Address", ID: "address", Label: "Address", Input: "textarea"},
		{Name: "Email", ID: "email", Label: "Email", Input: "email"},
		{Name: "PhoneNumber", ID: "phoneNumber", Label: "Phone Number", Input: "tel"},
		{Name: "CourseId", ID: "courseId", Label: "Course ID", Input: "number"},
		{Name: "EnrollmentDate", ID: "enrollmentDate", Label: "Enrollment Date", Input: "date"},
		{Name: "RegistrationDate", ID: "registrationDate", Label: "Registration Date", Input: "date"},
	},
	Coercions: []Coercion{
		studentID,
		courseID,
		enrollmentDate,
		{"RegistrationDate", dateField(func(s *Submission) *time.Time { return &s.RegistrationDate })},
		{"DateOfBirth", dateField(func(s *Submission) *time.Time { return &s.DateOfBirth })},
	},
	// Absent free-text fields become "", only typed fields are required.
	build: func(s Submission, form url.Values) models.Record {
		return &models.Enrollment{
			StudentID:        s.StudentID,
			StudentName:      form.Get("StudentName"),
			DateOfBirth:      models.NewDate(s.DateOfBirth),
			Gender:           form.Get("Gender"),
			Address:          form.Get("Address"),
			Email:            form.Get("Email"),
			PhoneNumber:      form.Get("PhoneNumber"),
			CourseID:         s.CourseID,
			EnrollmentDate:   models.NewDate(s.EnrollmentDate),
			RegistrationDate: models.NewDate(s.RegistrationDate),
		}
	},
	record: func() models.Record { return &models.Enrollment{} },
}

var reducedSchema = &Schema{
	Variant: VariantReduced,
	Controls: []Control{
		{Name: "StudentId", ID: "studentId", Label: "Student ID", Input: "number"},
		{Name: "CourseId", ID: "courseId", Label: "Course ID", Input: "number"},
		{Name: "EnrollmentDate", ID: "enrollmentDate", Label: "Enrollment Date", Input: "date"},
	},
	Coercions: []Coercion{studentID, courseID, enrollmentDate},
	build: func(s Submission, _ url.Values) models.Record {
		return &models.BasicEnrollment{
			StudentID:      s.StudentID,
			CourseID:       s.CourseID,
			EnrollmentDate: models.NewDate(s.EnrollmentDate),
		}
	},
	record: func() models.Record { return &models.BasicEnrollment{} },
}
