// Package config assembles and validates the relay's settings.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/ghrelay/ghrelay/internal/ghsdk"
	"github.com/ghrelay/ghrelay/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// viper keys
const (
	KeyTelegramAppID    = "telegram_api_id"
	KeyTelegramAppHash  = "telegram_api_hash"
	KeyTelegramBotToken = "telegram_bot_token"
	KeyGitHubToken      = "github_token"
	KeyGitHubRepo       = "github_repo"
	KeyGitHubReleaseTag = "github_release_tag"
	KeyGitHubAPIURL     = "github_api_url"
	KeyDataDir          = "data_dir"
	KeyHealthAddr       = "health_addr"
	KeyLogLevel         = "log_level"
)

var (
	home, _           = os.UserHomeDir()
	DefaultDataDir    = filepath.Join(home, ".ghrelay")
	DefaultHealthAddr = "0.0.0.0:5000"
	DefaultLogLevel   = "info"
)

// envBindings maps every key to the environment variable it is read from.
var envBindings = map[string]string{
	KeyTelegramAppID:    "TELEGRAM_API_ID",
	KeyTelegramAppHash:  "TELEGRAM_API_HASH",
	KeyTelegramBotToken: "TELEGRAM_BOT_TOKEN",
	KeyGitHubToken:      "GITHUB_TOKEN",
	KeyGitHubRepo:       "GITHUB_REPO",
	KeyGitHubReleaseTag: "GITHUB_RELEASE_TAG",
	KeyGitHubAPIURL:     "GITHUB_API_URL",
	KeyDataDir:          "GHRELAY_DATA_DIR",
	KeyHealthAddr:       "GHRELAY_HEALTH_ADDR",
	KeyLogLevel:         "LOG_LEVEL",
}

type Config struct {
	TelegramAppID    int    `env:"TELEGRAM_API_ID" validate:"required,gt=0"`
	TelegramAppHash  string `env:"TELEGRAM_API_HASH" validate:"required"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN" validate:"required"`
	GitHubToken      string `env:"GITHUB_TOKEN" validate:"required"`
	GitHubRepo       string `env:"GITHUB_REPO" validate:"required,github_repo"`
	GitHubReleaseTag string `env:"GITHUB_RELEASE_TAG" validate:"required"`
	GitHubAPIURL     string `env:"GITHUB_API_URL" validate:"required,url"`
	DataDir          string `env:"GHRELAY_DATA_DIR" validate:"required"`
	HealthAddr       string `env:"GHRELAY_HEALTH_ADDR" validate:"required,hostname_port"`
	LogLevel         string `env:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`

	// Path is the config file that was read, if any
	Path string `env:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	_ = v.RegisterValidation("github_repo", func(fl validator.FieldLevel) bool {
		_, err := ghsdk.ParseRepo(fl.Field().String())
		return err == nil
	})
	return v
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyGitHubAPIURL, ghsdk.DefaultBaseURL)
	v.SetDefault(KeyDataDir, DefaultDataDir)
	v.SetDefault(KeyHealthAddr, DefaultHealthAddr)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
}

// FromViper reads a Config out of v. It does not validate.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		TelegramAppID:    v.GetInt(KeyTelegramAppID),
		TelegramAppHash:  v.GetString(KeyTelegramAppHash),
		TelegramBotToken: v.GetString(KeyTelegramBotToken),
		GitHubToken:      v.GetString(KeyGitHubToken),
		GitHubRepo:       strings.TrimSpace(v.GetString(KeyGitHubRepo)),
		GitHubReleaseTag: strings.TrimSpace(v.GetString(KeyGitHubReleaseTag)),
		GitHubAPIURL:     v.GetString(KeyGitHubAPIURL),
		DataDir:          v.GetString(KeyDataDir),
		HealthAddr:       v.GetString(KeyHealthAddr),
		LogLevel:         strings.ToLower(v.GetString(KeyLogLevel)),
		Path:             v.ConfigFileUsed(),
	}
}

// Validate checks every field and reports all problems at once, named by environment variable.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	problems := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fieldError(fe))
	}
	return fmt.Errorf("invalid config: %w", errors.Join(problems...))
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "github_repo":
		return fmt.Errorf("%s must be owner/name, got %q", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s is invalid (%s), got %v", fe.Field(), fe.Tag(), fe.Value())
	}
}

// Repo returns the parsed target repository. Call after Validate.
func (c *Config) Repo() ghsdk.Repo {
	repo, _ := ghsdk.ParseRepo(c.GitHubRepo)
	return repo
}

// LogValue keeps secrets out of logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", c.Path),
		slog.Int("telegramAppId", c.TelegramAppID),
		slog.String("telegramAppHash", utils.MaskSecret(c.TelegramAppHash)),
		slog.String("telegramBotToken", utils.MaskSecret(c.TelegramBotToken)),
		slog.String("githubToken", utils.MaskSecret(c.GitHubToken)),
		slog.String("githubRepo", c.GitHubRepo),
		slog.String("githubReleaseTag", c.GitHubReleaseTag),
		slog.String("githubApiUrl", c.GitHubAPIURL),
		slog.String("dataDir", c.DataDir),
		slog.String("healthAddr", c.HealthAddr),
		slog.String("logLevel", c.LogLevel),
	)
}
