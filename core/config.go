package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppName          string
	Env              string // DEV (default), TEST, QA, PROD
	Debug            bool
	TestMode         bool
	Build            string
	SecretKey        []byte
	WorkDir          string
	DefaultFromEmail mail.Address
	RollbarToken     string
	SendgridAPIKey   string
	DemoTeacherEmail string

	Server struct {
		Host               string
		Addr               string
		JWTExpirationDelta time.Duration
	}

	// Gateway is the platform API the login client talks to.
	Gateway struct {
		BaseURL string
		Timeout time.Duration
	}

	// History configures the local teacher-history store.
	History struct {
		Path      string // JSON file; empty -> <user config dir>/duotopia/teacher_history.json
		RedisAddr string // non-empty -> shared Redis store instead of the file
	}

	Database struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}
}

func (c *Config) DatabaseAddress() string {
	return c.Database.Host + ":" + c.Database.Port
}

var Conf *Config

func init() {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Duotopia")
	v.SetDefault("secretKey", "x2m$7y(1r&+0f8#jq_dp4v!5nc^3zhw9sblk6ug*aeot)iqm-s")
	v.SetDefault("build", "dev")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("demoTeacherEmail", "demo@duotopia.com")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("gatewayBaseURL", "http://localhost:8000")
	v.SetDefault("gatewayTimeout", 15*time.Second)
	v.SetDefault("historyPath", "")
	v.SetDefault("historyRedisAddr", "")
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "duotopia")
	v.SetDefault("dbUser", "")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridAPIKey", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		Build:            v.GetString("build"),
		SecretKey:        []byte(v.GetString("secretKey")),
		WorkDir:          wd,
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridAPIKey:   v.GetString("sendgridAPIKey"),
		DemoTeacherEmail: v.GetString("demoTeacherEmail"),
	}
	Conf.Server.Host = v.GetString("serverHost")
	Conf.Server.Addr = v.GetString("serverAddr")
	Conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")
	Conf.Gateway.BaseURL = v.GetString("gatewayBaseURL")
	Conf.Gateway.Timeout = v.GetDuration("gatewayTimeout")
	Conf.History.Path = v.GetString("historyPath")
	Conf.History.RedisAddr = v.GetString("historyRedisAddr")
	Conf.Database.Engine = v.GetString("dbEngine")
	Conf.Database.Host = v.GetString("dbHost")
	Conf.Database.Port = v.GetString("dbPort")
	Conf.Database.Name = v.GetString("dbName")
	Conf.Database.User = v.GetString("dbUser")
	Conf.Database.Password = v.GetString("dbPassword")
	Conf.Database.AdminUser = v.GetString("dbAdminUser")
	Conf.Database.AdminPassword = v.GetString("dbAdminPassword")
	Conf.Database.DisableTLS = v.GetBool("dbDisableTLS")
}

// Getwd tries to find the project root.
// go-test changes the working directory to the test package being run during tests... this breaks our code...
// see: https://stackoverflow.com/questions/23847003/golang-tests-and-working-directory
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd // not in a checkout; settle for the working dir
		}
		currDir = newDir
	}
}
