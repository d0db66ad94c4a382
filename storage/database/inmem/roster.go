package inmemdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Youngger9765/duotopia-sub010/core/roster"
)

// DB is a process-local roster database; the devserver default.
type DB struct {
	mu          sync.RWMutex
	teachers    map[string]*roster.Teacher
	classrooms  map[int]*roster.Classroom
	students    map[int]*roster.Student
	classroomPK int
	studentPK   int
}

func NewDB() *DB {
	return &DB{
		teachers:   make(map[string]*roster.Teacher),
		classrooms: make(map[int]*roster.Classroom),
		students:   make(map[int]*roster.Student),
	}
}

type rosterRepository struct {
	db *DB
}

var _ roster.Repository = (*rosterRepository)(nil)

func NewRosterRepository(db *DB) roster.Repository {
	return &rosterRepository{db: db}
}

func (repo *rosterRepository) GetTeacherByEmail(_ context.Context, email string) (roster.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if t, ok := repo.db.teachers[email]; ok {
		return *t, nil
	}
	return roster.Teacher{}, roster.ErrTeacherNotFound
}

func (repo *rosterRepository) UpsertTeacher(_ context.Context, t roster.Teacher) (roster.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.teachers[t.Email] = &t
	return t, nil
}

func (repo *rosterRepository) CreateClassroom(_ context.Context, c roster.Classroom) (roster.Classroom, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.classroomPK++
	c.ID = repo.db.classroomPK
	repo.db.classrooms[c.ID] = &c
	return c, nil
}

func (repo *rosterRepository) GetClassroomByID(_ context.Context, id int) (roster.Classroom, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.classrooms[id]; ok {
		return *c, nil
	}
	return roster.Classroom{}, roster.ErrClassroomNotFound
}

func (repo *rosterRepository) QueryClassroomSummaries(_ context.Context, teacherEmail string) ([]roster.ClassroomSummary, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	counts := make(map[int]int)
	for _, stu := range repo.db.students {
		counts[stu.ClassroomID]++
	}

	summaries := make([]roster.ClassroomSummary, 0)
	for _, c := range repo.db.classrooms {
		if c.TeacherEmail != teacherEmail {
			continue
		}
		summaries = append(summaries, roster.ClassroomSummary{
			Classroom:    *c,
			StudentCount: counts[c.ID],
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

func (repo *rosterRepository) CreateStudent(_ context.Context, s roster.Student) (roster.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.studentPK++
	s.ID = repo.db.studentPK
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *rosterRepository) GetStudentByID(_ context.Context, id int) (roster.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return *s, nil
	}
	return roster.Student{}, roster.ErrStudentNotFound
}

func (repo *rosterRepository) QueryStudentsByClassroom(_ context.Context, classroomID int) ([]roster.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students := make([]roster.Student, 0)
	for _, s := range repo.db.students {
		if s.ClassroomID == classroomID {
			students = append(students, *s)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *rosterRepository) SetStudentLastLogin(_ context.Context, id int, t time.Time) (roster.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s, ok := repo.db.students[id]
	if !ok {
		return roster.Student{}, roster.ErrStudentNotFound
	}
	s.LastLogin = t
	return *s, nil
}
