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

type (
	ServerConfig struct {
		Address                   string
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		CORSOrigins               []string
		DisableReqLogs            bool
	}

	DataAPIConfig struct {
		BaseURL       string
		Timeout       time.Duration
		SubmitResults bool // fire-and-forget POST /results after each exam
	}

	DatabaseConfig struct {
		Engine string // sqlite | postgres
		DSN    string
	}

	Config struct {
		AppName          string
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridApiKey   string

		Server   ServerConfig
		DataAPI  DataAPIConfig
		Database DatabaseConfig
	}
)

// NewConfig reads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the upper-cased ENV value, eg. DEV_DATAAPI_BASEURL.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "ExamHub")
	conf.SetDefault("build", "develop")
	conf.SetDefault("secretKey", "x8#k2v!b0q@3m9z$wr7t^e1j&u5n*c4y")
	conf.SetDefault("frontendBaseUrl", "http://localhost:3000")
	conf.SetDefault("defaultFromName", "ExamHub")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("testMode", false)

	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.debugHost", "localhost:4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("server.corsOrigins", []string{"http://localhost:3000"})
	conf.SetDefault("server.disableReqLogs", false)

	conf.SetDefault("dataApi.baseUrl", "http://localhost:8080")
	conf.SetDefault("dataApi.timeout", 10*time.Second)
	conf.SetDefault("dataApi.submitResults", true)

	conf.SetDefault("database.engine", "sqlite")
	conf.SetDefault("database.dsn", "file:examhub.db?_pragma=busy_timeout(5000)")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(ProjectRoot(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:         conf.GetString("appName"),
		Env:             env,
		Build:           conf.GetString("build"),
		Debug:           conf.GetBool("debug"),
		TestMode:        conf.GetBool("testMode"),
		SecretKey:       conf.GetString("secretKey"),
		FrontendBaseURL: strings.TrimSuffix(conf.GetString("frontendBaseUrl"), "/"),
		DefaultFromEmail: mail.Address{
			Name:    conf.GetString("defaultFromName"),
			Address: conf.GetString("defaultFromEmail"),
		},
		RollbarToken:   conf.GetString("rollbarToken"),
		SendgridApiKey: conf.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Address:                   conf.GetString("server.address"),
			Host:                      conf.GetString("server.host"),
			DebugHost:                 conf.GetString("server.debugHost"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
			CORSOrigins:               conf.GetStringSlice("server.corsOrigins"),
			DisableReqLogs:            conf.GetBool("server.disableReqLogs"),
		},
		DataAPI: DataAPIConfig{
			BaseURL:       strings.TrimSuffix(conf.GetString("dataApi.baseUrl"), "/"),
			Timeout:       conf.GetDuration("dataApi.timeout"),
			SubmitResults: conf.GetBool("dataApi.submitResults"),
		},
		Database: DatabaseConfig{
			Engine: conf.GetString("database.engine"),
			DSN:    conf.GetString("database.dsn"),
		},
	}
}
