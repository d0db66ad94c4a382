package echoapi

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/Youngger9765/duotopia-sub010/core/login"
	gatewaysvc "github.com/Youngger9765/duotopia-sub010/services/gateway"
)

// Walks the whole wizard against a live devserver over HTTP.
func TestWizardAgainstDevServer(t *testing.T) {
	app, svc := setup(t)
	teacher := createTeacher(t, svc, "teach@duotopia.com", "Teacher Demo")
	classA := createClassroom(t, svc, "Class A", teacher.Email)
	createClassroom(t, svc, "Class B", teacher.Email)
	awe := enrollStudent(t, svc, "Awe", "awe@test.cd", classA.ID, "demo1234")
	enrollStudent(t, svc, "King", "king@test.cd", classA.ID, "demo1234")

	ts := httptest.NewServer(app)
	defer ts.Close()

	var sessions []login.Session
	w := login.NewWizard(login.Options{
		Gateway: gatewaysvc.NewHTTPGatewayAt(ts.URL, ts.Client()),
		Sink:    login.SessionSinkFunc(func(sess login.Session) { sessions = append(sessions, sess) }),
	})
	ctx := context.Background()

	w.SetTeacherEmail("TEACH@Duotopia.Com") // server side lookup is case-insensitive
	if err := w.SubmitTeacher(ctx); err != nil {
		t.Fatalf("SubmitTeacher(): %v", err)
	}
	state := w.State()
	if state.Step != login.StepClassroom {
		t.Fatalf("failed! step = %v (error %q); want %v", state.Step, state.Error, login.StepClassroom)
	}
	if len(state.Classrooms) != 2 {
		t.Fatalf("failed! classrooms = %v; want 2", len(state.Classrooms))
	}
	if state.Classrooms[0].StudentCount != 2 {
		t.Errorf("failed! studentCount = %v; want 2", state.Classrooms[0].StudentCount)
	}

	if err := w.SelectClassroom(ctx, classA.ID); err != nil {
		t.Fatalf("SelectClassroom(): %v", err)
	}
	state = w.State()
	if state.Step != login.StepStudent {
		t.Fatalf("failed! step = %v (error %q); want %v", state.Step, state.Error, login.StepStudent)
	}
	if len(state.Students) != 2 {
		t.Fatalf("failed! students = %v; want 2", len(state.Students))
	}

	if err := w.SelectStudent(awe.ID); err != nil {
		t.Fatalf("SelectStudent(): %v", err)
	}

	// a wrong password surfaces as a step error and keeps the student selected
	w.SetPassword("nope1234")
	if err := w.SubmitPassword(ctx); err != nil {
		t.Fatalf("SubmitPassword(): %v", err)
	}
	state = w.State()
	if state.Step != login.StepPassword || state.Error == "" {
		t.Fatalf("failed! step = %v, error = %q; want a password step error", state.Step, state.Error)
	}
	if len(sessions) != 0 {
		t.Fatal("session started on a failed authentication")
	}

	w.SetPassword("demo1234")
	if err := w.SubmitPassword(ctx); err != nil {
		t.Fatalf("SubmitPassword(): %v", err)
	}
	state = w.State()
	if state.Step != login.StepDone {
		t.Fatalf("failed! step = %v (error %q); want %v", state.Step, state.Error, login.StepDone)
	}
	if !w.Done() {
		t.Error("wizard not done after a successful login")
	}
	if len(sessions) != 1 {
		t.Fatalf("failed! sessions = %v; want exactly 1", len(sessions))
	}
	if sessions[0].AccessToken == "" {
		t.Error("session has no access token")
	}
	if name, _ := sessions[0].User["name"].(string); name != "Awe" {
		t.Errorf("failed! session user name = %q; want %q", name, "Awe")
	}
}
