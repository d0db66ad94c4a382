package dummygw

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Youngger9765/duotopia-sub010/core/login"
)

// Service is an in-memory login.Gateway for tests and the offline demo mode.
type Service struct {
	mu         sync.Mutex
	teachers   map[string]string // lowercased email -> display name
	classrooms map[string][]login.ClassroomSummary
	students   map[int][]login.StudentIdentity
	passwords  map[int]string

	// Err, when set, makes every call fail with it.
	Err error
}

var _ login.Gateway = (*Service)(nil)

func NewService() *Service {
	return &Service{
		teachers:   make(map[string]string),
		classrooms: make(map[string][]login.ClassroomSummary),
		students:   make(map[int][]login.StudentIdentity),
		passwords:  make(map[int]string),
	}
}

// NewDemoService returns a gateway preloaded with the demo roster.
func NewDemoService(demoTeacherEmail string) *Service {
	svc := NewService()
	svc.AddTeacher(demoTeacherEmail, "Demo Teacher")
	svc.AddClassroom(demoTeacherEmail, login.ClassroomSummary{ID: 1, Name: "Class A"})
	svc.AddClassroom(demoTeacherEmail, login.ClassroomSummary{ID: 2, Name: "Class B"})
	svc.AddStudent(1, login.StudentIdentity{ID: 1, Name: "Awe", Email: "awe@test.cd"}, "demo")
	svc.AddStudent(1, login.StudentIdentity{ID: 2, Name: "King", Email: "king@test.cd"}, "demo")
	svc.AddStudent(2, login.StudentIdentity{ID: 3, Name: "Hero", Email: "hero@test.cd"}, "demo")
	return svc
}

func (svc *Service) AddTeacher(email, name string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.teachers[strings.ToLower(email)] = name
}

func (svc *Service) AddClassroom(teacherEmail string, c login.ClassroomSummary) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	key := strings.ToLower(teacherEmail)
	svc.classrooms[key] = append(svc.classrooms[key], c)
}

func (svc *Service) AddStudent(classroomID int, stu login.StudentIdentity, password string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.students[classroomID] = append(svc.students[classroomID], stu)
	svc.passwords[stu.ID] = password

	for teacher, rooms := range svc.classrooms {
		for i := range rooms {
			if rooms[i].ID == classroomID {
				svc.classrooms[teacher][i].StudentCount++
			}
		}
	}
}

func (svc *Service) ValidateTeacher(_ context.Context, email string) (login.TeacherCheck, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.Err != nil {
		return login.TeacherCheck{}, svc.Err
	}
	name, ok := svc.teachers[strings.ToLower(email)]
	return login.TeacherCheck{Valid: ok, Name: name}, nil
}

func (svc *Service) ClassroomsForTeacher(_ context.Context, email string) ([]login.ClassroomSummary, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.Err != nil {
		return nil, svc.Err
	}
	return append([]login.ClassroomSummary(nil), svc.classrooms[strings.ToLower(email)]...), nil
}

func (svc *Service) StudentsForClassroom(_ context.Context, classroomID int) ([]login.StudentIdentity, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.Err != nil {
		return nil, svc.Err
	}
	return append([]login.StudentIdentity(nil), svc.students[classroomID]...), nil
}

func (svc *Service) AuthenticateStudent(_ context.Context, studentID int, password string) (login.Session, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.Err != nil {
		return login.Session{}, svc.Err
	}
	want, ok := svc.passwords[studentID]
	if !ok || want != password {
		return login.Session{}, login.ErrInvalidCredentials
	}

	var profile login.StudentIdentity
	for _, students := range svc.students {
		for _, stu := range students {
			if stu.ID == studentID {
				profile = stu
			}
		}
	}
	return login.Session{
		AccessToken: "demo-" + uuid.New().String(),
		User: map[string]interface{}{
			"id":    profile.ID,
			"name":  profile.Name,
			"email": profile.Email,
		},
	}, nil
}
