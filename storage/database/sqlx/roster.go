package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Youngger9765/duotopia-sub010/core/roster"
)

type rosterRepository struct {
	db *sqlx.DB
}

var _ roster.Repository = (*rosterRepository)(nil)

func NewRosterRepository(db *sql.DB) roster.Repository {
	return &rosterRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *rosterRepository) GetTeacherByEmail(ctx context.Context, email string) (roster.Teacher, error) {
	var t roster.Teacher
	err := repo.db.GetContext(ctx, &t, `SELECT email, name FROM teacher WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return roster.Teacher{}, roster.ErrTeacherNotFound
	}
	return t, errors.Wrap(err, "getting teacher")
}

func (repo *rosterRepository) UpsertTeacher(ctx context.Context, t roster.Teacher) (roster.Teacher, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO teacher (email, name) VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name`,
		t.Email, t.Name,
	)
	return t, errors.Wrap(err, "upserting teacher")
}

func (repo *rosterRepository) CreateClassroom(ctx context.Context, c roster.Classroom) (roster.Classroom, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO classroom (name, teacher_email) VALUES ($1, $2) RETURNING id`,
		c.Name, c.TeacherEmail,
	).Scan(&c.ID)
	return c, errors.Wrap(err, "creating classroom")
}

func (repo *rosterRepository) GetClassroomByID(ctx context.Context, id int) (roster.Classroom, error) {
	var c roster.Classroom
	err := repo.db.GetContext(ctx, &c, `SELECT id, name, teacher_email FROM classroom WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return roster.Classroom{}, roster.ErrClassroomNotFound
	}
	return c, errors.Wrap(err, "getting classroom")
}

func (repo *rosterRepository) QueryClassroomSummaries(ctx context.Context, teacherEmail string) ([]roster.ClassroomSummary, error) {
	summaries := make([]roster.ClassroomSummary, 0)
	err := repo.db.SelectContext(ctx, &summaries,
		`SELECT c.id, c.name, c.teacher_email, COUNT(s.id) AS student_count
		 FROM classroom c
		 LEFT JOIN student s ON s.classroom_id = c.id
		 WHERE c.teacher_email = $1
		 GROUP BY c.id
		 ORDER BY c.id`,
		teacherEmail,
	)
	return summaries, errors.Wrap(err, "querying classroom summaries")
}

func (repo *rosterRepository) CreateStudent(ctx context.Context, s roster.Student) (roster.Student, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO student (name, email, classroom_id, password_hash) VALUES ($1, $2, $3, $4) RETURNING id`,
		s.Name, s.Email, s.ClassroomID, s.PasswordHash,
	).Scan(&s.ID)
	return s, errors.Wrap(err, "creating student")
}

func (repo *rosterRepository) GetStudentByID(ctx context.Context, id int) (roster.Student, error) {
	var s roster.Student
	err := repo.db.GetContext(ctx, &s,
		`SELECT id, name, email, classroom_id, password_hash, last_login FROM student WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return roster.Student{}, roster.ErrStudentNotFound
	}
	return s, errors.Wrap(err, "getting student")
}

func (repo *rosterRepository) QueryStudentsByClassroom(ctx context.Context, classroomID int) ([]roster.Student, error) {
	students := make([]roster.Student, 0)
	err := repo.db.SelectContext(ctx, &students,
		`SELECT id, name, email, classroom_id, password_hash, last_login
		 FROM student WHERE classroom_id = $1 ORDER BY id`,
		classroomID,
	)
	return students, errors.Wrap(err, "querying students")
}

func (repo *rosterRepository) SetStudentLastLogin(ctx context.Context, id int, t time.Time) (roster.Student, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE student SET last_login = $1 WHERE id = $2`, t, id)
	if err != nil {
		return roster.Student{}, errors.Wrap(err, "setting lastLogin")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return roster.Student{}, roster.ErrStudentNotFound
	}
	return repo.GetStudentByID(ctx, id)
}
