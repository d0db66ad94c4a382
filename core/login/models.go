package login

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrBusy               = errors.New("a request is already in flight")
	ErrInvalidEmail       = errors.New("a valid email address is required")
	ErrWrongStep          = errors.New("action not available at this step")
	ErrUnknownClassroom   = errors.New("classroom not in the current list")
	ErrUnknownStudent     = errors.New("student not in the current list")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Step identifies the wizard screen currently shown to the student.
type Step int

const (
	StepTeacher Step = iota + 1
	StepClassroom
	StepStudent
	StepPassword
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepTeacher:
		return "teacher"
	case StepClassroom:
		return "classroom"
	case StepStudent:
		return "student"
	case StepPassword:
		return "password"
	case StepDone:
		return "done"
	}
	return "unknown"
}

// TeacherIdentity is a previously validated teacher, as remembered locally.
type TeacherIdentity struct {
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	LastUsed time.Time `json:"lastUsed"` // UTC
}

type ClassroomSummary struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	StudentCount int    `json:"studentCount"`
}

type StudentIdentity struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the credential produced by a successful authentication.
type Session struct {
	AccessToken string                 `json:"access_token"`
	User        map[string]interface{} `json:"user"`
}

// TeacherCheck is the outcome of a teacher validation call.
type TeacherCheck struct {
	Valid bool   `json:"valid"`
	Name  string `json:"name"`
}

type (
	// Gateway is the platform API surface the wizard depends on.
	// AuthenticateStudent returns ErrInvalidCredentials when the backend
	// rejects the password; any other error is a transport failure.
	Gateway interface {
		ValidateTeacher(ctx context.Context, email string) (TeacherCheck, error)
		ClassroomsForTeacher(ctx context.Context, email string) ([]ClassroomSummary, error)
		StudentsForClassroom(ctx context.Context, classroomID int) ([]StudentIdentity, error)
		AuthenticateStudent(ctx context.Context, studentID int, password string) (Session, error)
	}

	// SessionSink receives the session exactly once on terminal success.
	SessionSink interface {
		StartSession(sess Session)
	}

	SessionSinkFunc func(sess Session)
)

func (f SessionSinkFunc) StartSession(sess Session) { f(sess) }

// CanSubmitEmail is the client-side gate on the teacher email input;
// the backend still does the real validation.
func CanSubmitEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && strings.Contains(email, "@")
}
