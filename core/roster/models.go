package roster

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Youngger9765/duotopia-sub010/core"
)

type Teacher struct {
	Email string `json:"email" db:"email"`
	Name  string `json:"name" db:"name"`
}

type Classroom struct {
	ID           int    `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	TeacherEmail string `json:"teacher_email" db:"teacher_email"`
}

// ClassroomSummary is a Classroom with its live student count.
type ClassroomSummary struct {
	Classroom
	StudentCount int `json:"student_count" db:"student_count"`
}

type Student struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	ClassroomID  int       `json:"classroom_id" db:"classroom_id"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	LastLogin    time.Time `json:"last_login" db:"last_login"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	ClassroomID int    `json:"classroom_id" validate:"required"`
	Password    string `json:"password" validate:"required,min=4"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return core.Validate.Struct(ns)
}
