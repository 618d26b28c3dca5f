// Package database opens the local SQL database holding exam history and migrates it.
package database

import (
	"context"
	"embed"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/examhub/portal/core"
)

//go:embed migrations
var migrationsFS embed.FS

// goose keeps its base FS and dialect globally
var gooseMu sync.Mutex

type engine struct {
	driver  string // database/sql driver name
	dialect string // goose dialect, also the migrations sub-directory
}

var engines = map[string]engine{
	"sqlite":   {driver: "sqlite", dialect: "sqlite3"},
	"sqlite3":  {driver: "sqlite", dialect: "sqlite3"},
	"postgres": {driver: "postgres", dialect: "postgres"},
}

func engineFor(name string) (engine, error) {
	e, ok := engines[name]
	if !ok {
		return engine{}, errors.Errorf("unsupported database engine %q", name)
	}
	return e, nil
}

// Open opens the database described by conf.Database and waits for it to answer.
func Open(conf *core.Config) (*sqlx.DB, error) {
	return OpenDSN(conf.Database.Engine, conf.Database.DSN)
}

func OpenDSN(engineName, dsn string) (*sqlx.DB, error) {
	e, err := engineFor(engineName)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(e.driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if e.driver == "sqlite" {
		// one writer at a time; also keeps a `:memory:` database alive across queries
		db.SetMaxOpenConns(1)
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Run runs a goose command (up, down, status, version, redo, ...) against the embedded migrations.
func Run(command string, db *sqlx.DB, args ...string) error {
	e, err := engineFor(db.DriverName())
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	if err = goose.SetDialect(e.dialect); err != nil {
		return errors.Wrap(err, "setting migrations dialect")
	}
	return goose.RunContext(context.Background(), command, db.DB, "migrations/"+e.dialect, args...)
}

func Migrate(db *sqlx.DB) error {
	if err := Run("up", db); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
