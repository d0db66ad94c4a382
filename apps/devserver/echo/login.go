package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Youngger9765/duotopia-sub010/core"
	"github.com/Youngger9765/duotopia-sub010/core/roster"
)

type (
	ValidateTeacherRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ValidateTeacherResponse struct {
		Valid bool   `json:"valid"`
		Name  string `json:"name"`
	}

	ClassroomsRequest struct {
		TeacherEmail string `json:"teacherEmail" validate:"required,email"`
	}

	ClassroomResponse struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		StudentCount int    `json:"studentCount"`
	}

	StudentsRequest struct {
		ClassroomID int `json:"classroomId" validate:"required"`
	}

	StudentResponse struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	AuthenticateRequest struct {
		ID       int    `json:"id" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	AuthenticateResponse struct {
		AccessToken string         `json:"access_token"`
		User        roster.Student `json:"user"`
	}
)

func (r *ValidateTeacherRequest) Validate() error { return core.Validate.Struct(r) }
func (r *ClassroomsRequest) Validate() error      { return core.Validate.Struct(r) }
func (r *StudentsRequest) Validate() error        { return core.Validate.Struct(r) }
func (r *AuthenticateRequest) Validate() error    { return core.Validate.Struct(r) }

type loginApi struct {
	svc *roster.Service
}

func registerLoginAPI(g *echo.Group, svc *roster.Service) {
	api := loginApi{svc: svc}

	lg := g.Group("/login")
	// TODO: rate limit `/authenticate`
	lg.POST("/validate-teacher", api.validateTeacher)
	lg.POST("/classrooms", api.classrooms)
	lg.POST("/students", api.students)
	lg.POST("/authenticate", api.authenticate)
}

// Handlers

func (api *loginApi) validateTeacher(ctx echo.Context) error {
	var data ValidateTeacherRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ValidateTeacherRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.CheckTeacher(ctx.Request().Context(), data.Email)
	if err != nil {
		if errors.Cause(err) == roster.ErrTeacherNotFound {
			return ctx.JSON(http.StatusOK, ValidateTeacherResponse{Valid: false})
		}
		return errors.Wrap(err, "checking teacher")
	}
	return ctx.JSON(http.StatusOK, ValidateTeacherResponse{Valid: true, Name: t.Name})
}

func (api *loginApi) classrooms(ctx echo.Context) error {
	var data ClassroomsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassroomsRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	summaries, err := api.svc.ClassroomsForTeacher(ctx.Request().Context(), data.TeacherEmail)
	if err != nil {
		return errors.Wrap(err, "querying classrooms")
	}
	out := make([]ClassroomResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, ClassroomResponse{ID: s.ID, Name: s.Name, StudentCount: s.StudentCount})
	}
	return ctx.JSON(http.StatusOK, out)
}

func (api *loginApi) students(ctx echo.Context) error {
	var data StudentsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentsRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	students, err := api.svc.StudentsForClassroom(ctx.Request().Context(), data.ClassroomID)
	if err != nil {
		if errors.Cause(err) == roster.ErrClassroomNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying students")
	}
	out := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, StudentResponse{ID: s.ID, Name: s.Name, Email: s.Email})
	}
	return ctx.JSON(http.StatusOK, out)
}

func (api *loginApi) authenticate(ctx echo.Context) error {
	var data AuthenticateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AuthenticateRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	stu, err := api.svc.Authenticate(ctx.Request().Context(), data.ID, data.Password)
	if err != nil {
		if errors.Cause(err) == roster.ErrAuthFailed {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}

	token, err := GenerateToken(GetStudentClaims(stu))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, AuthenticateResponse{AccessToken: token, User: stu})
}
