package login

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// user-facing step errors; the raw gateway errors never surface.
const (
	msgTeacherNotFound = "teacher not found"
	msgWrongPassword   = "wrong password"
	msgTryAgain        = "something went wrong, please try again"
)

// State is the whole wizard screen state. It is only ever mutated through
// the Wizard's transition methods.
type State struct {
	Step         Step
	TeacherEmail string // raw input field
	Teacher      TeacherIdentity
	Classrooms   []ClassroomSummary
	Classroom    *ClassroomSummary
	Students     []StudentIdentity
	Student      *StudentIdentity
	Password     string // raw input field
	Error        string
	Busy         bool
}

type (
	Options struct {
		Gateway   Gateway
		History   *History    // optional; nil disables the teacher history
		Sink      SessionSink // optional
		DemoEmail string      // quick-fill shortcut; empty disables it
	}

	// Wizard drives the four-step student login flow. Its transition methods
	// return an error only when the caller's action is not applicable
	// (busy, wrong step, bad selection); backend outcomes land in State.Error.
	Wizard struct {
		opts Options

		mu    sync.Mutex
		state State
		seq   uint64 // request generation; stale gateway results are dropped
		done  bool
	}
)

func NewWizard(opts Options) *Wizard {
	return &Wizard{
		opts:  opts,
		state: State{Step: StepTeacher},
	}
}

// State returns a snapshot of the current wizard state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Wizard) Done() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// History lists the remembered teachers, most recent first.
func (w *Wizard) History() []TeacherIdentity {
	return w.opts.History.Load()
}

func (w *Wizard) SetTeacherEmail(email string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Step == StepTeacher && !w.state.Busy {
		w.state.TeacherEmail = email
	}
}

// QuickFill seeds the configured demo email into the input field.
// It does not bypass validation; submission still goes through the gateway.
func (w *Wizard) QuickFill() {
	if w.opts.DemoEmail != "" {
		w.SetTeacherEmail(w.opts.DemoEmail)
	}
}

func (w *Wizard) SetPassword(pwd string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Step == StepPassword && !w.state.Busy {
		w.state.Password = pwd
	}
}

// SubmitTeacher validates the email currently in the input field.
func (w *Wizard) SubmitTeacher(ctx context.Context) error {
	w.mu.Lock()
	email := strings.TrimSpace(w.state.TeacherEmail)
	w.mu.Unlock()
	return w.submitTeacher(ctx, email)
}

// UseHistoryShortcut submits a remembered teacher. It follows the exact
// same validation path as a manual submission, not a bypass.
func (w *Wizard) UseHistoryShortcut(ctx context.Context, t TeacherIdentity) error {
	w.SetTeacherEmail(t.Email)
	return w.submitTeacher(ctx, t.Email)
}

func (w *Wizard) submitTeacher(ctx context.Context, email string) error {
	if !CanSubmitEmail(email) {
		return ErrInvalidEmail
	}
	token, err := w.begin(StepTeacher)
	if err != nil {
		return err
	}

	check, err := w.opts.Gateway.ValidateTeacher(ctx, email)
	if err != nil {
		w.fail(token, msgTryAgain)
		return nil
	}
	if !check.Valid {
		w.fail(token, msgTeacherNotFound)
		return nil
	}

	teacher := TeacherIdentity{Email: email, Name: check.Name, LastUsed: nowFunc().UTC()}
	w.opts.History.Record(teacher)

	classrooms, err := w.opts.Gateway.ClassroomsForTeacher(ctx, email)
	if err != nil {
		// the teacher is already validated; stay here and let the user retry
		w.fail(token, msgTryAgain)
		return nil
	}
	if classrooms == nil {
		classrooms = []ClassroomSummary{} // an empty list is a valid step-2 state
	}
	w.finish(token, func(s *State) {
		s.Step = StepClassroom
		s.Teacher = teacher
		s.Classrooms = classrooms
	})
	return nil
}

// SelectClassroom picks a classroom from the current list and loads its students.
func (w *Wizard) SelectClassroom(ctx context.Context, classroomID int) error {
	w.mu.Lock()
	if w.state.Step != StepClassroom {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if w.state.Busy {
		w.mu.Unlock()
		return ErrBusy
	}
	var picked *ClassroomSummary
	for i := range w.state.Classrooms {
		if w.state.Classrooms[i].ID == classroomID {
			c := w.state.Classrooms[i]
			picked = &c
			break
		}
	}
	if picked == nil {
		w.mu.Unlock()
		return ErrUnknownClassroom
	}
	w.seq++
	token := w.seq
	w.state.Busy = true
	w.state.Error = ""
	w.state.Classroom = picked
	w.mu.Unlock()

	students, err := w.opts.Gateway.StudentsForClassroom(ctx, picked.ID)
	if err != nil {
		w.fail(token, msgTryAgain)
		return nil
	}
	// gateway order is not trusted; sort for deterministic display
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	w.finish(token, func(s *State) {
		s.Step = StepStudent
		s.Students = students
	})
	return nil
}

// SelectStudent picks a student from the current list. No backend call.
func (w *Wizard) SelectStudent(studentID int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Step != StepStudent {
		return ErrWrongStep
	}
	if w.state.Busy {
		return ErrBusy
	}
	for i := range w.state.Students {
		if w.state.Students[i].ID == studentID {
			stu := w.state.Students[i]
			w.state.Student = &stu
			w.state.Step = StepPassword
			w.state.Password = ""
			w.state.Error = ""
			return nil
		}
	}
	return ErrUnknownStudent
}

// SubmitPassword authenticates the selected student with the password
// currently in the input field. On success the session is handed to the
// sink exactly once and the wizard reaches its terminal step.
func (w *Wizard) SubmitPassword(ctx context.Context) error {
	w.mu.Lock()
	if w.state.Step != StepPassword {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if w.state.Busy {
		w.mu.Unlock()
		return ErrBusy
	}
	student := *w.state.Student
	pwd := w.state.Password
	w.seq++
	token := w.seq
	w.state.Busy = true
	w.state.Error = ""
	w.mu.Unlock()

	sess, err := w.opts.Gateway.AuthenticateStudent(ctx, student.ID, pwd)
	if err != nil {
		msg := msgTryAgain
		if errors.Cause(err) == ErrInvalidCredentials {
			msg = msgWrongPassword
		}
		w.finish(token, func(s *State) {
			// the student stays selected; only the password starts over
			s.Password = ""
			s.Error = msg
		})
		return nil
	}

	var handoff bool
	w.finish(token, func(s *State) {
		s.Step = StepDone
		s.Password = ""
		handoff = !w.done
		w.done = true
	})
	if handoff && w.opts.Sink != nil {
		w.opts.Sink.StartSession(sess)
	}
	return nil
}

// Back returns to the previous step, clearing the step error and
// invalidating any in-flight backend call.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	w.state.Busy = false
	w.state.Error = ""
	switch w.state.Step {
	case StepClassroom:
		w.state.Step = StepTeacher
		w.state.Classrooms = nil
		w.state.Classroom = nil
	case StepStudent:
		w.state.Step = StepClassroom
		w.state.Classroom = nil
		w.state.Students = nil
	case StepPassword:
		// re-entry to student selection starts clean
		w.state.Step = StepStudent
		w.state.Student = nil
		w.state.Password = ""
	}
}

// begin marks the step busy and returns the request generation token.
func (w *Wizard) begin(step Step) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Step != step {
		return 0, ErrWrongStep
	}
	if w.state.Busy {
		return 0, ErrBusy
	}
	w.seq++
	w.state.Busy = true
	w.state.Error = ""
	return w.seq, nil
}

// finish applies fn only if no back-navigation or newer request has
// superseded the call identified by token; stale results are dropped.
func (w *Wizard) finish(token uint64, fn func(s *State)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if token != w.seq {
		return
	}
	w.state.Busy = false
	fn(&w.state)
}

func (w *Wizard) fail(token uint64, msg string) {
	w.finish(token, func(s *State) { s.Error = msg })
}
