package models

// Record is a row of the enrollments table. Both schema variants implement it.
type Record interface {
	TableName() string
	PrimaryKey() uint
}

// Enrollment is the full variant: student demographics plus the course link.
type Enrollment struct {
	ID               uint   `gorm:"primaryKey" json:"Id"`
	StudentID        int    `gorm:"not null" json:"StudentId"`
	StudentName      string `gorm:"not null" json:"StudentName"`
	DateOfBirth      Date   `gorm:"not null" json:"DateOfBirth"`
	Gender           string `gorm:"not null" json:"Gender"` // Male | Female | Other, not enforced
	Address          string `gorm:"size:255;not null;check:length(address) <= 255" json:"Address"`
	Email            string `gorm:"not null" json:"Email"`
	PhoneNumber      string `gorm:"not null" json:"PhoneNumber"`
	CourseID         int    `gorm:"not null" json:"CourseId"`
	EnrollmentDate   Date   `gorm:"not null" json:"EnrollmentDate"`
	RegistrationDate Date   `gorm:"not null" json:"RegistrationDate"`
}

func (*Enrollment) TableName() string  { return "enrollments" }
func (e *Enrollment) PrimaryKey() uint { return e.ID }

// BasicEnrollment is the reduced variant. It shares the enrollments table name;
// a process only ever migrates one of the two.
type BasicEnrollment struct {
	ID             uint `gorm:"primaryKey" json:"Id"`
	StudentID      int  `gorm:"not null" json:"StudentId"`
	CourseID       int  `gorm:"not null" json:"CourseId"`
	EnrollmentDate Date `gorm:"not null" json:"EnrollmentDate"`
}

func (*BasicEnrollment) TableName() string  { return "enrollments" }
func (e *BasicEnrollment) PrimaryKey() uint { return e.ID }
