package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"

	"github.com/Youngger9765/duotopia-sub010/core"
	"github.com/Youngger9765/duotopia-sub010/core/roster"
	emailsvc "github.com/Youngger9765/duotopia-sub010/services/email"
	gatewaysvc "github.com/Youngger9765/duotopia-sub010/services/gateway"
	inmemdb "github.com/Youngger9765/duotopia-sub010/storage/database/inmem"
)

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true
	core.Conf.SecretKey = []byte("secret")
	core.Conf.Server.JWTExpirationDelta = 10 * time.Minute
	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func setup(t *testing.T) (Server, *roster.Service) {
	t.Helper()
	repo := inmemdb.NewRosterRepository(inmemdb.NewDB())
	svc := roster.NewService(repo, emailsvc.NewConsoleServiceMock())
	app := NewServer(&Options{
		DisableReqLogs: true,
		RosterSvc:      svc,
		Logger:         nil,
	})
	return app, svc
}

func createTeacher(t *testing.T, svc *roster.Service, email, name string) roster.Teacher {
	t.Helper()
	teacher, err := svc.AddTeacher(context.Background(), roster.Teacher{Email: email, Name: name})
	if err != nil {
		t.Fatalf("createTeacher(): %v", err)
	}
	return teacher
}

func createClassroom(t *testing.T, svc *roster.Service, name, teacherEmail string) roster.Classroom {
	t.Helper()
	c, err := svc.AddClassroom(context.Background(), roster.Classroom{Name: name, TeacherEmail: teacherEmail})
	if err != nil {
		t.Fatalf("createClassroom(): %v", err)
	}
	return c
}

func enrollStudent(t *testing.T, svc *roster.Service, name, email string, classroomID int, pwd string) roster.Student {
	t.Helper()
	stu, err := svc.Enroll(context.Background(), roster.NewStudent{
		Name:        name,
		Email:       email,
		ClassroomID: classroomID,
		Password:    pwd,
	})
	if err != nil {
		t.Fatalf("enrollStudent(): %v", err)
	}
	return stu
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func Test_loginApi_validateTeacher(t *testing.T) {
	app, svc := setup(t)
	createTeacher(t, svc, "teach@duotopia.com", "Teacher Demo")

	tests := []httpTest{
		{
			name: "Known teacher", body: marchallObj(t, ValidateTeacherRequest{Email: "teach@duotopia.com"}),
			wantCode: http.StatusOK, wantData: marchallObj(t, ValidateTeacherResponse{Valid: true, Name: "Teacher Demo"}),
		},
		{
			name: "Lookup is case-insensitive", body: marchallObj(t, ValidateTeacherRequest{Email: "TEACH@Duotopia.Com"}),
			wantCode: http.StatusOK, wantData: marchallObj(t, ValidateTeacherResponse{Valid: true, Name: "Teacher Demo"}),
		},
		{
			name: "Unknown teacher", body: marchallObj(t, ValidateTeacherRequest{Email: "nobody@duotopia.com"}),
			wantCode: http.StatusOK, wantData: marchallObj(t, ValidateTeacherResponse{Valid: false}),
		},
		{
			name: "Email required", body: marchallObj(t, ValidateTeacherRequest{}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "Email must be valid", body: marchallObj(t, ValidateTeacherRequest{Email: "not-an-email"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, gatewaysvc.ValidateTeacherPath, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_loginApi_classrooms(t *testing.T) {
	app, svc := setup(t)
	teacher := createTeacher(t, svc, "teach@duotopia.com", "Teacher Demo")
	classA := createClassroom(t, svc, "Class A", teacher.Email)
	classB := createClassroom(t, svc, "Class B", teacher.Email)
	enrollStudent(t, svc, "Awe", "awe@test.cd", classA.ID, "demo1234")
	enrollStudent(t, svc, "King", "king@test.cd", classA.ID, "demo1234")

	tests := []httpTest{
		{
			name: "Classrooms with counts", body: marchallObj(t, ClassroomsRequest{TeacherEmail: teacher.Email}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []ClassroomResponse{
				{ID: classA.ID, Name: "Class A", StudentCount: 2},
				{ID: classB.ID, Name: "Class B", StudentCount: 0},
			}),
		},
		{
			name: "Unknown teacher gets an empty list", body: marchallObj(t, ClassroomsRequest{TeacherEmail: "nobody@duotopia.com"}),
			wantCode: http.StatusOK, wantData: marchallObj(t, []ClassroomResponse{}),
		},
		{
			name: "Teacher email required", body: marchallObj(t, ClassroomsRequest{}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"teacherEmail": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, gatewaysvc.ClassroomsPath, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_loginApi_students(t *testing.T) {
	app, svc := setup(t)
	teacher := createTeacher(t, svc, "teach@duotopia.com", "Teacher Demo")
	classA := createClassroom(t, svc, "Class A", teacher.Email)
	awe := enrollStudent(t, svc, "Awe", "awe@test.cd", classA.ID, "demo1234")
	king := enrollStudent(t, svc, "King", "king@test.cd", classA.ID, "demo1234")

	tests := []httpTest{
		{
			name: "Students of a classroom", body: marchallObj(t, StudentsRequest{ClassroomID: classA.ID}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []StudentResponse{
				{ID: awe.ID, Name: "Awe", Email: "awe@test.cd"},
				{ID: king.ID, Name: "King", Email: "king@test.cd"},
			}),
		},
		{
			name: "Unknown classroom", body: marchallObj(t, StudentsRequest{ClassroomID: 999}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Classroom required", body: marchallObj(t, StudentsRequest{}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"classroomId": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, gatewaysvc.StudentsPath, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_loginApi_authenticate(t *testing.T) {
	app, svc := setup(t)
	teacher := createTeacher(t, svc, "teach@duotopia.com", "Teacher Demo")
	classA := createClassroom(t, svc, "Class A", teacher.Email)
	awe := enrollStudent(t, svc, "Awe", "awe@test.cd", classA.ID, "demo1234")

	authFailed := marchallObj(t, httpErr{Error: "authentication failed"})
	tests := []httpTest{
		{
			name: "Wrong password", body: marchallObj(t, AuthenticateRequest{ID: awe.ID, Password: "nope1234"}),
			wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "Unknown student is indistinguishable", body: marchallObj(t, AuthenticateRequest{ID: 999, Password: "demo1234"}),
			wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "Password required", body: marchallObj(t, AuthenticateRequest{ID: awe.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"password": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, gatewaysvc.AuthenticatePath, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Success issues a student JWT", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, gatewaysvc.AuthenticatePath, marchallObj(t, AuthenticateRequest{ID: awe.ID, Password: "demo1234"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp AuthenticateResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.User.ID != awe.ID || resp.User.Name != "Awe" {
			t.Errorf("failed! user = %+v", resp.User)
		}
		if resp.User.LastLogin.IsZero() {
			t.Error("lastLogin not set on sign-in")
		}

		claims := new(Claims)
		token, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(core.Conf.SecretKey), nil
		})
		if err != nil {
			t.Fatalf("parsing access token: %v", err)
		}
		if !token.Valid {
			t.Error("access token is not valid")
		}
		if claims.Subject != strconv.Itoa(awe.ID) {
			t.Errorf("failed! sub = %v; want %v", claims.Subject, awe.ID)
		}
		if !claims.IsStudent {
			t.Error("is_student claim not set")
		}
		if claims.ClassroomID != classA.ID {
			t.Errorf("failed! classroom_id = %v; want %v", claims.ClassroomID, classA.ID)
		}
	})
}
