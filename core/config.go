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

// Conf is set by LoadConfig at startup. Only the email template cache reads it
// ambiently; everything else receives the *Config explicitly.
var Conf *Config

type (
	ServerConfig struct {
		Host    string
		Address string
	}

	DatabaseConfig struct {
		// Path to the sqlite database file. ":memory:" is accepted for tests.
		Path string
	}

	MailConfig struct {
		// Backend selects the outbound implementation: "console", "smtp" or "sendgrid".
		Backend        string
		RelayHost      string
		RelayPort      int
		SenderName     string
		SenderAddress  string
		SenderPassword string
		SendgridApiKey string
	}

	ReminderConfig struct {
		CronSpec string
		// Window bounds how close a deadline must be before a reminder goes out.
		Window time.Duration
	}

	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string
		WorkDir  string

		// BaseURL is the absolute address confirmation links resolve against.
		BaseURL string

		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Mail     MailConfig
		Reminder ReminderConfig
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.Mail.SenderName, Address: c.Mail.SenderAddress}
}

// LoadConfig reads the configuration from the environment (and an optional
// config/.env.<env> file) into an explicit Config. It also sets core.Conf.
func LoadConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Ubao")
	v.SetDefault("baseUrl", "http://localhost:8000")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("databasePath", "ubao.db")
	v.SetDefault("mailBackend", "console")
	v.SetDefault("mailRelayHost", "smtp.gmail.com")
	v.SetDefault("mailRelayPort", 587)
	v.SetDefault("mailSenderAddress", "noreply@localhost")
	v.SetDefault("reminderCronSpec", "0 8 * * *")
	v.SetDefault("reminderWindow", 24*time.Hour)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		WorkDir:      wd,
		BaseURL:      strings.TrimRight(v.GetString("baseUrl"), "/"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:    v.GetString("serverHost"),
			Address: v.GetString("serverAddress"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("databasePath"),
		},
		Mail: MailConfig{
			Backend:        v.GetString("mailBackend"),
			RelayHost:      v.GetString("mailRelayHost"),
			RelayPort:      v.GetInt("mailRelayPort"),
			SenderName:     v.GetString("mailSenderName"),
			SenderAddress:  v.GetString("mailSenderAddress"),
			SenderPassword: v.GetString("mailSenderPassword"),
			SendgridApiKey: v.GetString("sendgridApiKey"),
		},
		Reminder: ReminderConfig{
			CronSpec: v.GetString("reminderCronSpec"),
			Window:   v.GetDuration("reminderWindow"),
		},
	}
	Conf = conf
	return conf
}

// TestConfig returns a Config suitable for unit tests and sets core.Conf.
func TestConfig() *Config {
	conf := &Config{
		Env:      "TEST",
		Debug:    true,
		TestMode: true,
		AppName:  "Ubao",
		WorkDir:  Getwd(),
		BaseURL:  "http://localhost:8000",
		Database: DatabaseConfig{Path: ":memory:"},
		Mail: MailConfig{
			Backend:       "console",
			SenderName:    "Ubao",
			SenderAddress: "noreply@test.test",
		},
		Reminder: ReminderConfig{
			CronSpec: "@every 1h",
			Window:   24 * time.Hour,
		},
	}
	Conf = conf
	return conf
}
