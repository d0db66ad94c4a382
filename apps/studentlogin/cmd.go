package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/Youngger9765/duotopia-sub010/core/login"
)

var readPasswordFunc = term.ReadPassword // mockable

// commandLine walks the user through the login wizard one prompt at a time.
type commandLine struct {
	wizard *login.Wizard
	in     *bufio.Reader
	out    io.Writer
}

func (cli commandLine) run() error {
	ctx := context.Background()

	fmt.Fprintln(cli.out, "Duotopia student login")
	for !cli.wizard.Done() {
		state := cli.wizard.State()
		if state.Error != "" {
			fmt.Fprintf(cli.out, "! %s\n", state.Error)
		}

		var err error
		switch state.Step {
		case login.StepTeacher:
			err = cli.teacherPrompt(ctx)
		case login.StepClassroom:
			err = cli.classroomPrompt(ctx, state)
		case login.StepStudent:
			err = cli.studentPrompt(state)
		case login.StepPassword:
			err = cli.passwordPrompt(ctx, state)
		default:
			return fmt.Errorf("unexpected step %s", state.Step)
		}
		switch err {
		case nil, errRetryPrompt:
		case io.EOF:
			return nil
		default:
			return err
		}
	}
	return nil
}

// errRetryPrompt re-shows the current step after an invalid selection.
var errRetryPrompt = fmt.Errorf("retry prompt")

func (cli commandLine) teacherPrompt(ctx context.Context) error {
	history := cli.wizard.History()
	if len(history) > 0 {
		fmt.Fprintln(cli.out, "\nRecent teachers:")
		for i, t := range history {
			fmt.Fprintf(cli.out, "  %d) %s <%s>\n", i+1, t.Name, t.Email)
		}
	}
	fmt.Fprint(cli.out, "Teacher email (number for a recent one, 'd' for demo): ")

	input, err := cli.readLine()
	if err != nil {
		return err
	}
	switch {
	case input == "":
		return errRetryPrompt
	case input == "d":
		cli.wizard.QuickFill()
		return cli.checkInput(cli.wizard.SubmitTeacher(ctx))
	default:
		if n, err := strconv.Atoi(input); err == nil {
			if n < 1 || n > len(history) {
				fmt.Fprintln(cli.out, "no such entry")
				return errRetryPrompt
			}
			return cli.checkInput(cli.wizard.UseHistoryShortcut(ctx, history[n-1]))
		}
		cli.wizard.SetTeacherEmail(input)
		return cli.checkInput(cli.wizard.SubmitTeacher(ctx))
	}
}

func (cli commandLine) classroomPrompt(ctx context.Context, state login.State) error {
	fmt.Fprintf(cli.out, "\nClassrooms of %s:\n", state.Teacher.Name)
	if len(state.Classrooms) == 0 {
		fmt.Fprintln(cli.out, "  (none yet)")
	}
	for i, c := range state.Classrooms {
		fmt.Fprintf(cli.out, "  %d) %s (%d students)\n", i+1, c.Name, c.StudentCount)
	}
	fmt.Fprint(cli.out, "Pick a classroom ('b' to go back): ")

	input, err := cli.readLine()
	if err != nil {
		return err
	}
	if input == "b" {
		cli.wizard.Back()
		return nil
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(state.Classrooms) {
		fmt.Fprintln(cli.out, "no such classroom")
		return errRetryPrompt
	}
	return cli.checkInput(cli.wizard.SelectClassroom(ctx, state.Classrooms[n-1].ID))
}

func (cli commandLine) studentPrompt(state login.State) error {
	fmt.Fprintf(cli.out, "\nStudents in %s:\n", state.Classroom.Name)
	for i, s := range state.Students {
		fmt.Fprintf(cli.out, "  %d) %s\n", i+1, s.Name)
	}
	if len(state.Students) == 0 {
		fmt.Fprintln(cli.out, "  (none yet)")
	}
	fmt.Fprint(cli.out, "Who are you? ('b' to go back): ")

	input, err := cli.readLine()
	if err != nil {
		return err
	}
	if input == "b" {
		cli.wizard.Back()
		return nil
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(state.Students) {
		fmt.Fprintln(cli.out, "no such student")
		return errRetryPrompt
	}
	return cli.checkInput(cli.wizard.SelectStudent(state.Students[n-1].ID))
}

func (cli commandLine) passwordPrompt(ctx context.Context, state login.State) error {
	fmt.Fprintf(cli.out, "\nPassword for %s (empty to go back): ", state.Student.Name)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		cli.wizard.Back()
		return nil
	}
	cli.wizard.SetPassword(string(pwd))
	return cli.checkInput(cli.wizard.SubmitPassword(ctx))
}

func (cli commandLine) readLine() (string, error) {
	line, err := cli.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// checkInput downgrades wizard input errors to a re-prompt; backend
// outcomes are already reported through State.Error.
func (cli commandLine) checkInput(err error) error {
	switch err {
	case nil:
		return nil
	case login.ErrInvalidEmail, login.ErrUnknownClassroom, login.ErrUnknownStudent:
		fmt.Fprintf(cli.out, "! %s\n", err)
		return errRetryPrompt
	default:
		return err
	}
}
