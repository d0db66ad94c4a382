package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/Youngger9765/duotopia-sub010/core"
	"github.com/Youngger9765/duotopia-sub010/core/roster"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	IsStudent   bool   `json:"is_student,omitempty"` // -> STUDENT PORTAL
	ClassroomID int    `json:"classroom_id,omitempty"`
}

func GetStudentClaims(stu roster.Student) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   strconv.Itoa(stu.ID),
			Audience:  "StudentPortal",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:        stu.Name,
		Email:       stu.Email,
		IsStudent:   true,
		ClassroomID: stu.ClassroomID,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(core.Conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}
