package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Settings is the on-disk configuration of a bot. It is loaded from a JSON
// file and then overridden from the environment (and a .env file, if any).
type Settings struct {
	Development bool   `env:"DEVELOPMENT"`
	LogLevel    string `env:"LOG_LEVEL"`
	AuthToken   string `env:"TOKEN"`

	CommandPrefix        string   `env:"PREFIX"`
	OwnerIds             []string `env:"OWNERS" envSeparator:","`
	Invite               string   `env:"INVITE"`
	DefaultHelpCommand   bool     `env:"DEFAULT_HELP"`
	MentionPrefix        bool     `env:"MENTION_PREFIX"`
	UnknownCommandNotice bool     `env:"UNKNOWN_COMMAND_NOTICE"`
	AllowBots            bool     `env:"ALLOW_BOTS"` // dispatch commands from other bot accounts
	DispatchEdits        bool     `env:"DISPATCH_EDITS"`

	DefaultLocale   string `env:"DEFAULT_LOCALE"`
	LocaleDirectory string `env:"LOCALE_DIRECTORY"`

	// Loader inputs.
	CommandPath string `env:"COMMAND_PATH"`
	EventPath   string `env:"EVENT_PATH"`
	TaskPath    string `env:"TASK_PATH"`

	Database      string `env:"DATABASE"`
	MetricsListen string `env:"METRICS_LISTEN"`
}

// EnvPrefix is prepended to every environment override, e.g. GOCOMMANDO_TOKEN.
const EnvPrefix = "GOCOMMANDO_"

// LoadSettings reads the settings file, applies environment overrides and
// validates the result. An empty path skips the file.
func LoadSettings(settingsfile string) (*Settings, error) {
	s := &Settings{
		CommandPrefix: "!",
		DefaultLocale: "en-US",
		CommandPath:   "commands",
		EventPath:     "events",
		TaskPath:      "tasks",
		Database:      ":memory:",
	}
	if settingsfile != "" {
		file, err := os.Open(settingsfile)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(s); err != nil {
			return nil, fmt.Errorf("failed to parse configuration: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil {
		LogDebug("No .env file found, using process environment only")
	}
	if err := env.ParseWithOptions(s, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if s.Development {
		SetLogLevel("DEBUG")
		LogDebug("Loaded config successfully from", settingsfile)
	} else if s.LogLevel != "" {
		SetLogLevel(s.LogLevel)
	}
	return s, nil
}

// Validate reports missing required settings.
func (s *Settings) Validate() error {
	var errs []error
	if s.AuthToken == "" {
		errs = append(errs, errors.New("auth token is not set"))
	}
	if s.CommandPrefix == "" && !s.MentionPrefix {
		errs = append(errs, errors.New("command prefix is empty and mention prefix is disabled"))
	}
	return errors.Join(errs...)
}
