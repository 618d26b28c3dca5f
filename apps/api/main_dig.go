package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	dig_container "github.com/examhub/portal/apps/api/di/dig"
	echoapi "github.com/examhub/portal/apps/api/echo"
	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/catalog"
	"github.com/examhub/portal/core/user"
)

// portal is what the API process pulls out of the container.
type portal struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	History    *sqlx.DB
	Catalog    *catalog.Service
	Validate   *validator.Validate
	Translator ut.Translator
	Server     *echoapi.Server
}

func startWithDig() {
	c := dig_container.New()
	if err := c.Invoke(serve); err != nil {
		log.Fatal(errors.Wrap(err, "portal stopped"))
	}
}

func serve(p portal) error {
	startedAt := time.Now()
	p.Logger.Info(fmt.Sprintf("%s API starting : build %q, env %s", p.Conf.AppName, p.Conf.Build, p.Conf.Env))

	core.InitValidators(p.Validate, p.Translator)
	user.InitValidators(p.Validate, p.Translator)
	core.ParseEmailTemplates(p.Conf, p.Logger)

	defer func() {
		if err := p.History.Close(); err != nil {
			p.Logger.Error("closing history database", err)
		}
		p.Logger.Info(fmt.Sprintf("%s API stopped after %s", p.Conf.AppName, time.Since(startedAt).Round(time.Second)))
		if c, ok := p.Logger.(interface{ Close() }); ok {
			c.Close()
		}
	}()

	checkCatalog(p)
	serveDebug(p, startedAt)

	go p.Server.Start()
	return awaitShutdown(p)
}

// checkCatalog reports whether the data API answers. The API still starts when it does not.
func checkCatalog(p portal) {
	ctx, cancel := context.WithTimeout(context.Background(), p.Conf.DataAPI.Timeout)
	defer cancel()

	counts, err := p.Catalog.Counts(ctx)
	if err != nil {
		p.Logger.Warn(fmt.Sprintf("data API at %s is unreachable: %v", p.Conf.DataAPI.BaseURL, errors.Cause(err)), err)
		return
	}
	p.Logger.Info(fmt.Sprintf(
		"catalog : %d courses, %d subjects, %d exams, %d questions",
		counts.Courses, counts.Subjects, counts.Exams, counts.Questions,
	))
}

// serveDebug exposes /debug/pprof and /debug/vars on the debug host.
func serveDebug(p portal, startedAt time.Time) {
	expvar.NewString("build").Set(p.Conf.Build)
	expvar.NewString("env").Set(p.Conf.Env)
	expvar.NewString("dataApi").Set(p.Conf.DataAPI.BaseURL)
	expvar.NewString("historyEngine").Set(p.Conf.Database.Engine)
	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(startedAt).Round(time.Second).String()
	}))

	go func() {
		if err := http.ListenAndServe(p.Conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			p.Logger.Error(fmt.Sprintf("debug endpoint at %s closed: %v", p.Conf.Server.DebugHost, err), err)
		}
	}()
}

// awaitShutdown blocks until the server fails or a shutdown is requested.
// Pending result submissions are flushed by Server.Shutdown.
func awaitShutdown(p portal) error {
	select {
	case err := <-p.Server.Errors():
		return errors.Wrap(err, "serving API")

	case sig := <-p.Server.ShutdownSignal():
		p.Logger.Info(fmt.Sprintf("%v : draining requests and result submissions", sig))

		ctx, cancel := context.WithTimeout(context.Background(), p.Conf.Server.ShutdownTimeout)
		defer cancel()

		if err := p.Server.Shutdown(ctx); err != nil {
			p.Logger.Error(fmt.Sprintf("graceful shutdown failed: %v", err), err)
			if err = p.Server.Close(); err != nil {
				return errors.Wrap(err, "forcing API shutdown")
			}
		}
		return nil
	}
}
