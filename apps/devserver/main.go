package main

import (
	"context"
	"flag"
	"log"
	"os"

	echoapi "github.com/Youngger9765/duotopia-sub010/apps/devserver/echo"
	"github.com/Youngger9765/duotopia-sub010/core"
	"github.com/Youngger9765/duotopia-sub010/core/roster"
	emailsvc "github.com/Youngger9765/duotopia-sub010/services/email"
	logsvc "github.com/Youngger9765/duotopia-sub010/services/logger"
	"github.com/Youngger9765/duotopia-sub010/storage/database"
	inmemdb "github.com/Youngger9765/duotopia-sub010/storage/database/inmem"
	sqlxrepos "github.com/Youngger9765/duotopia-sub010/storage/database/sqlx"
)

// devserver is a development stand-in for the platform API: it serves the
// four student-login endpoints over a seeded roster.
func main() {
	usePg := flag.Bool("pg", false, "back the roster with Postgres instead of memory")
	importPath := flag.String("import", "", "import a roster from an .xlsx file before serving")
	noSeed := flag.Bool("noseed", false, "skip seeding the demo roster")
	flag.Parse()

	std := log.New(os.Stdout, "DEVSERVER : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var logger core.Logger
	if core.Conf.RollbarToken != "" && !core.Conf.Debug {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	} else {
		logger = logsvc.NewStdLogger(std)
	}

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService()
	}

	var repo roster.Repository
	if *usePg {
		if err := database.CreateIfNotExist(core.Conf); err != nil {
			logger.Fatal("creating database", err)
		}
		db, err := database.Open(core.Conf)
		if err != nil {
			logger.Fatal("opening database", err)
		}
		defer func() { _ = db.Close() }()
		if err = database.Migrate(db); err != nil {
			logger.Fatal("migrating database", err)
		}
		repo = sqlxrepos.NewRosterRepository(db)
	} else {
		repo = inmemdb.NewRosterRepository(inmemdb.NewDB())
	}

	svc := roster.NewService(repo, mailSvc)
	ctx := context.Background()

	if *importPath != "" {
		n, err := importRoster(ctx, svc, *importPath)
		if err != nil {
			logger.Fatal("importing roster", err)
		}
		logger.Info("roster imported", map[string]interface{}{"students": n, "file": *importPath})
	}
	if !*noSeed {
		if err := seedDemoRoster(ctx, svc); err != nil {
			logger.Fatal("seeding demo roster", err)
		}
	}

	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:      core.Conf.Server.Addr,
			RosterSvc: svc,
			Logger:    logger,
		},
	)
	logger.Info("starting dev API", map[string]interface{}{"addr": core.Conf.Server.Addr})
	app.Start()
}
