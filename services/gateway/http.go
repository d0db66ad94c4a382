package gatewaysvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Youngger9765/duotopia-sub010/core"
	"github.com/Youngger9765/duotopia-sub010/core/login"
)

// API paths, shared with the devserver.
const (
	ValidateTeacherPath = "/v1/login/validate-teacher"
	ClassroomsPath      = "/v1/login/classrooms"
	StudentsPath        = "/v1/login/students"
	AuthenticatePath    = "/v1/login/authenticate"
)

type (
	validateTeacherRequest struct {
		Email string `json:"email"`
	}
	classroomsRequest struct {
		TeacherEmail string `json:"teacherEmail"`
	}
	studentsRequest struct {
		ClassroomID int `json:"classroomId"`
	}
	authenticateRequest struct {
		ID       int    `json:"id"`
		Password string `json:"password"`
	}
)

// httpGateway talks to the platform API over its four login endpoints.
type httpGateway struct {
	client  *http.Client
	baseURL string
}

var _ login.Gateway = (*httpGateway)(nil)

func NewHTTPGateway(conf *core.Config) login.Gateway {
	return &httpGateway{
		client:  &http.Client{Timeout: conf.Gateway.Timeout},
		baseURL: strings.TrimRight(conf.Gateway.BaseURL, "/"),
	}
}

// NewHTTPGatewayAt targets an explicit base URL; used against test servers.
func NewHTTPGatewayAt(baseURL string, client *http.Client) login.Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpGateway{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (gw *httpGateway) ValidateTeacher(ctx context.Context, email string) (login.TeacherCheck, error) {
	var out login.TeacherCheck
	code, err := gw.post(ctx, ValidateTeacherPath, validateTeacherRequest{Email: email}, &out)
	if err != nil {
		return login.TeacherCheck{}, err
	}
	if code != http.StatusOK {
		return login.TeacherCheck{}, errors.Errorf("validate-teacher: unexpected status %d", code)
	}
	return out, nil
}

func (gw *httpGateway) ClassroomsForTeacher(ctx context.Context, email string) ([]login.ClassroomSummary, error) {
	var out []login.ClassroomSummary
	code, err := gw.post(ctx, ClassroomsPath, classroomsRequest{TeacherEmail: email}, &out)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, errors.Errorf("classrooms: unexpected status %d", code)
	}
	return out, nil
}

func (gw *httpGateway) StudentsForClassroom(ctx context.Context, classroomID int) ([]login.StudentIdentity, error) {
	var out []login.StudentIdentity
	code, err := gw.post(ctx, StudentsPath, studentsRequest{ClassroomID: classroomID}, &out)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, errors.Errorf("students: unexpected status %d", code)
	}
	return out, nil
}

func (gw *httpGateway) AuthenticateStudent(ctx context.Context, studentID int, password string) (login.Session, error) {
	var out login.Session
	code, err := gw.post(ctx, AuthenticatePath, authenticateRequest{ID: studentID, Password: password}, &out)
	if err != nil {
		return login.Session{}, err
	}
	// any non-2xx means the backend rejected the credentials
	if code < http.StatusOK || code >= http.StatusMultipleChoices {
		return login.Session{}, login.ErrInvalidCredentials
	}
	return out, nil
}

// post sends a JSON request and decodes a 2xx response body into out.
func (gw *httpGateway) post(ctx context.Context, path string, in, out interface{}) (int, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return 0, errors.Wrap(err, "encoding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gw.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	res, err := gw.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "calling %s", path)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices && out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return res.StatusCode, errors.Wrapf(err, "decoding %s response", path)
		}
	} else {
		_, _ = io.Copy(io.Discard, res.Body)
	}
	return res.StatusCode, nil
}
