package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Youngger9765/duotopia-sub010/core"
	"github.com/Youngger9765/duotopia-sub010/core/login"
	gatewaysvc "github.com/Youngger9765/duotopia-sub010/services/gateway"
	dummygw "github.com/Youngger9765/duotopia-sub010/services/gateway/dummy"
	"github.com/Youngger9765/duotopia-sub010/storage/keyvalue"
)

const sessionKey = "login:session"

var logger *log.Logger

// studentlogin is the terminal client for the student portal sign-in flow.
func main() {
	defer os.Exit(0)

	logger = log.New(os.Stderr, "LOGIN : ", log.LstdFlags)

	demo := flag.Bool("demo", false, "run against a built-in demo roster, no server needed")
	flag.Parse()

	kv := openHistoryStore()

	var gw login.Gateway
	if *demo {
		gw = dummygw.NewDemoService(core.Conf.DemoTeacherEmail)
	} else {
		gw = gatewaysvc.NewHTTPGateway(core.Conf)
	}

	wizard := login.NewWizard(login.Options{
		Gateway:   gw,
		History:   login.NewHistory(kv),
		Sink:      &sessionSaver{kv: kv},
		DemoEmail: core.Conf.DemoTeacherEmail,
	})

	cli := commandLine{wizard: wizard, in: bufio.NewReader(os.Stdin), out: os.Stdout}
	if err := cli.run(); err != nil {
		logger.Printf("\nerror: %s\n", err)
		os.Exit(1)
	}
}

// openHistoryStore picks the configured history backend. The login flow must
// stay usable without one, so every failure degrades to no persistence.
func openHistoryStore() core.KeyValueStore {
	if addr := core.Conf.History.RedisAddr; addr != "" {
		kv, err := keyvalue.NewRedisStore(addr)
		if err != nil {
			logger.Printf("shared history unavailable: %v", err)
			return nil
		}
		return kv
	}

	path := core.Conf.History.Path
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(dir, "duotopia", "teacher_history.json")
	}
	kv, err := keyvalue.NewFileStore(path)
	if err != nil {
		logger.Printf("local history unavailable: %v", err)
		return nil
	}
	return kv
}

// sessionSaver keeps the session next to the teacher history so the portal
// can pick it up on next start.
type sessionSaver struct {
	kv core.KeyValueStore
}

var _ login.SessionSink = (*sessionSaver)(nil)

func (s *sessionSaver) StartSession(sess login.Session) {
	if s.kv != nil {
		if raw, err := json.Marshal(sess); err == nil {
			_ = s.kv.Set(sessionKey, raw)
		}
	}
	name, _ := sess.User["name"].(string)
	fmt.Printf("\nWelcome %s! You are signed in.\n", name)
}
