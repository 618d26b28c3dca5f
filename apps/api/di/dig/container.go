package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/examhub/portal/apps/api/echo"
	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/quiz"
	"github.com/examhub/portal/core/user"
	emailsvc "github.com/examhub/portal/services/email"
	logsvc "github.com/examhub/portal/services/logger"
	"github.com/examhub/portal/storage/dataapi"
	"github.com/examhub/portal/storage/database"
	sqlxrepos "github.com/examhub/portal/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newDB opens the history database and brings its schema up to date.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newDataAPIClient(conf *core.Config, logger core.Logger) *dataapi.Client {
	client, err := dataapi.New(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up data API client: %v", err), err)
	}
	return client
}

// newResultSubmitter returns nil when remote result submission is turned off.
func newResultSubmitter(conf *core.Config, client *dataapi.Client) quiz.ResultSubmitter {
	if !conf.DataAPI.SubmitResults {
		return nil
	}
	return dataapi.NewResults(client)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newDataAPIClient))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))

	// repositories
	must(c.Provide(dataapi.NewUserRepository))
	must(c.Provide(sqlxrepos.NewHistoryStore))
	must(c.Provide(newResultSubmitter))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(dataapi.NewCatalogService))
	must(c.Provide(quiz.NewService))

	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
