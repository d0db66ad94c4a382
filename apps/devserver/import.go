package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/Youngger9765/duotopia-sub010/core/roster"
)

// importRoster loads teachers, classrooms and students from the first sheet
// of an .xlsx file. Expected columns (header row skipped):
//
//	teacher_email | teacher_name | classroom | student_name | student_email | password
//
// Returns the number of students enrolled.
func importRoster(ctx context.Context, svc *roster.Service, path string) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, errors.Wrap(err, "reading rows")
	}

	classroomIDs := make(map[string]int) // "teacherEmail/classroom" -> id
	var enrolled int
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 6 {
			return enrolled, errors.Errorf("row %d: want 6 columns, got %d", i+1, len(row))
		}
		teacherEmail := strings.ToLower(strings.TrimSpace(row[0]))
		teacherName := strings.TrimSpace(row[1])
		classroom := strings.TrimSpace(row[2])

		if _, err := svc.AddTeacher(ctx, roster.Teacher{Email: teacherEmail, Name: teacherName}); err != nil {
			return enrolled, errors.Wrapf(err, "row %d: adding teacher", i+1)
		}

		key := teacherEmail + "/" + classroom
		classroomID, ok := classroomIDs[key]
		if !ok {
			c, err := svc.AddClassroom(ctx, roster.Classroom{Name: classroom, TeacherEmail: teacherEmail})
			if err != nil {
				return enrolled, errors.Wrapf(err, "row %d: adding classroom", i+1)
			}
			classroomID = c.ID
			classroomIDs[key] = classroomID
		}

		ns := roster.NewStudent{
			Name:        row[3],
			Email:       row[4],
			ClassroomID: classroomID,
			Password:    row[5],
		}
		if _, err := svc.Enroll(ctx, ns); err != nil {
			return enrolled, errors.Wrapf(err, "row %d: enrolling student", i+1)
		}
		enrolled++
	}
	return enrolled, nil
}
