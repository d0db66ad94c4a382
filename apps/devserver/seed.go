package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Youngger9765/duotopia-sub010/core"
	"github.com/Youngger9765/duotopia-sub010/core/roster"
)

const seedPassword = "demo1234"

// seedDemoRoster loads the demo teacher and a couple of classrooms,
// unless the roster already has them.
func seedDemoRoster(ctx context.Context, svc *roster.Service) error {
	demoEmail := core.Conf.DemoTeacherEmail
	if _, err := svc.CheckTeacher(ctx, demoEmail); err == nil {
		return nil // already seeded
	} else if errors.Cause(err) != roster.ErrTeacherNotFound {
		return errors.Wrap(err, "checking demo teacher")
	}

	if _, err := svc.AddTeacher(ctx, roster.Teacher{Email: demoEmail, Name: "Demo Teacher"}); err != nil {
		return errors.Wrap(err, "adding demo teacher")
	}

	classrooms := map[string][]roster.NewStudent{
		"Class A": {
			{Name: "Awe", Email: "awe@test.cd", Password: seedPassword},
			{Name: "King", Email: "king@test.cd", Password: seedPassword},
			{Name: "Hero", Email: "hero@test.cd", Password: seedPassword},
		},
		"Class B": {
			{Name: "Principal Jr", Email: "jr@test.cd", Password: seedPassword},
		},
	}
	for name, students := range classrooms {
		c, err := svc.AddClassroom(ctx, roster.Classroom{Name: name, TeacherEmail: demoEmail})
		if err != nil {
			return errors.Wrapf(err, "adding classroom %s", name)
		}
		for _, ns := range students {
			ns.ClassroomID = c.ID
			if _, err := svc.Enroll(ctx, ns); err != nil {
				return errors.Wrapf(err, "enrolling %s", ns.Email)
			}
		}
	}
	return nil
}
