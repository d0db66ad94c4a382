package roster

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/Youngger9765/duotopia-sub010/core"
)

var (
	// errors
	ErrTeacherNotFound   = errors.New("teacher not found")
	ErrClassroomNotFound = errors.New("classroom not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrAuthFailed        = errors.New("authentication failed")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		GetTeacherByEmail(ctx context.Context, email string) (Teacher, error)
		UpsertTeacher(ctx context.Context, t Teacher) (Teacher, error)
		CreateClassroom(ctx context.Context, c Classroom) (Classroom, error)
		GetClassroomByID(ctx context.Context, id int) (Classroom, error)
		// QueryClassroomSummaries returns the teacher's classrooms with live
		// student counts, ordered by classroom id.
		QueryClassroomSummaries(ctx context.Context, teacherEmail string) ([]ClassroomSummary, error)
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		QueryStudentsByClassroom(ctx context.Context, classroomID int) ([]Student, error)
		SetStudentLastLogin(ctx context.Context, id int, t time.Time) (Student, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

// CheckTeacher looks a teacher up by email, case-insensitively.
func (svc *Service) CheckTeacher(ctx context.Context, email string) (Teacher, error) {
	return svc.repo.GetTeacherByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) AddTeacher(ctx context.Context, t Teacher) (Teacher, error) {
	t.Email = core.CleanString(t.Email, true /* lower */)
	t.Name = core.CleanString(t.Name)
	return svc.repo.UpsertTeacher(ctx, t)
}

func (svc *Service) AddClassroom(ctx context.Context, c Classroom) (Classroom, error) {
	c.TeacherEmail = core.CleanString(c.TeacherEmail, true /* lower */)
	if _, err := svc.repo.GetTeacherByEmail(ctx, c.TeacherEmail); err != nil {
		return Classroom{}, errors.Wrap(err, "resolving classroom teacher")
	}
	return svc.repo.CreateClassroom(ctx, c)
}

func (svc *Service) ClassroomsForTeacher(ctx context.Context, teacherEmail string) ([]ClassroomSummary, error) {
	return svc.repo.QueryClassroomSummaries(ctx, core.CleanString(teacherEmail, true /* lower */))
}

func (svc *Service) StudentsForClassroom(ctx context.Context, classroomID int) ([]Student, error) {
	if _, err := svc.repo.GetClassroomByID(ctx, classroomID); err != nil {
		return nil, err
	}
	return svc.repo.QueryStudentsByClassroom(ctx, classroomID)
}

func (svc *Service) Enroll(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	if _, err := svc.repo.GetClassroomByID(ctx, ns.ClassroomID); err != nil {
		return Student{}, errors.Wrap(err, "resolving student classroom")
	}
	stu := Student{
		Name:        ns.Name,
		Email:       ns.Email,
		ClassroomID: ns.ClassroomID,
	}
	if err := stu.SetPassword(ns.Password); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(ctx, stu)
}

// Authenticate verifies a student's password. Unknown students and bad
// passwords are indistinguishable to the caller.
func (svc *Service) Authenticate(ctx context.Context, studentID int, pwd string) (Student, error) {
	stu, err := svc.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		if errors.Cause(err) == ErrStudentNotFound {
			return Student{}, ErrAuthFailed
		}
		return Student{}, errors.Wrap(err, "finding student by ID")
	}
	if err := stu.CheckPassword(pwd); err != nil {
		return Student{}, ErrAuthFailed
	}
	stu, err = svc.repo.SetStudentLastLogin(ctx, stu.ID, nowFunc().UTC())
	if err != nil {
		return Student{}, errors.Wrap(err, "setting lastLogin")
	}
	svc.sendSignInAlert(stu)
	return stu, nil
}

func (svc *Service) sendSignInAlert(stu Student) {
	if svc.mailSvc == nil || stu.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: stu.Name, Address: stu.Email}},
		Subject: "New sign-in to your account",
		BodyStr: fmt.Sprintf("Hi %s,\n\nYour account just signed in to the student portal. "+
			"If this wasn't you, tell your teacher.\n", stu.Name),
	})
}
