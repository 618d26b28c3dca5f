package main

import (
	"log"
	"os"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/user"
	emailsvc "github.com/examhub/portal/services/email"
	logsvc "github.com/examhub/portal/services/logger"
	"github.com/examhub/portal/storage/dataapi"
	"github.com/examhub/portal/storage/database"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)

	// set up services
	client, err := dataapi.New(conf)
	errAndDie(err)
	usrSvc := user.NewService(dataapi.NewUserRepository(client), emailsvc.NewConsoleService(conf, appLogger))

	// start CLI
	cli := commandLine{
		db:     db,
		usrSvc: usrSvc,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	appLogger.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
