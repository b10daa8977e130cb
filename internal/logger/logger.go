package logger

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a component-scoped zerolog wrapper. Every service gets its own
// instance via New("Component") so log lines carry their origin.
type Logger struct {
	*zerolog.Logger
	component string
}

var envLevels = map[string]zerolog.Level{
	"development": zerolog.DebugLevel,
	"staging":     zerolog.InfoLevel,
	"production":  zerolog.InfoLevel,
}

var levelColors = map[string]string{
	"debug":   "\033[36m[DEBUG]\033[0m",
	"info":    "\033[34m[INFO]\033[0m",
	"success": "\033[32m[SUCCESS]\033[0m",
	"warn":    "\033[33m[WARN]\033[0m",
	"error":   "\033[31m[ERROR]\033[0m",
	"fatal":   "\033[35m[FATAL]\033[0m",
}

// Config controls timestamp and level behaviour per environment.
type Config struct {
	IsProduction bool
	AppEnv       string
}

// New creates a logger for a component, configured from APP_ENV.
func New(component string) *Logger {
	return NewWithConfig(component, Config{
		IsProduction: os.Getenv("APP_ENV") == "production",
		AppEnv:       os.Getenv("APP_ENV"),
	})
}

// NewWithConfig creates a logger with explicit configuration.
func NewWithConfig(component string, cfg Config) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	output := zerolog.ConsoleWriter{
		Out: os.Stdout,
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("[%s] %s", component, i)
		},
		FormatLevel: func(i interface{}) string {
			if level, ok := i.(string); ok {
				if c, ok := levelColors[level]; ok {
					return c
				}
				return fmt.Sprintf("[%s]", level)
			}
			return "???"
		},
	}

	if cfg.IsProduction {
		output.TimeFormat = ""
	} else {
		output.TimeFormat = "2006-01-02 15:04:05"
	}

	var zl zerolog.Logger
	if cfg.IsProduction {
		zl = zerolog.New(output).Level(levelFor(cfg.AppEnv))
	} else {
		zl = zerolog.New(output).Level(levelFor(cfg.AppEnv)).With().Timestamp().Logger()
	}

	return &Logger{Logger: &zl, component: component}
}

func levelFor(env string) zerolog.Level {
	if level, ok := envLevels[env]; ok {
		return level
	}
	return zerolog.DebugLevel
}

func (l *Logger) Debug() *zerolog.Event   { return l.Logger.Debug() }
func (l *Logger) Info() *zerolog.Event    { return l.Logger.Info() }
func (l *Logger) Success() *zerolog.Event { return l.Logger.Info().Str("level", "success") }
func (l *Logger) Warn() *zerolog.Event    { return l.Logger.Warn() }
func (l *Logger) Error() *zerolog.Event   { return l.Logger.Error() }

func (l *Logger) LogDebug(msg string)   { l.Debug().Msg(msg) }
func (l *Logger) LogInfo(msg string)    { l.Info().Msg(msg) }
func (l *Logger) LogSuccess(msg string) { l.Success().Msg(msg) }
func (l *Logger) LogWarn(msg string)    { l.Warn().Msg(msg) }

func (l *Logger) LogError(msg string, err error) {
	if err != nil {
		l.Error().Err(err).Msg(msg)
		return
	}
	l.Error().Msg(msg)
}

func (l *Logger) LogFatal(msg string, err error) {
	if err != nil {
		l.Fatal().Err(err).Msg(msg)
		return
	}
	l.Fatal().Msg(msg)
}

func (l *Logger) LogDebugf(format string, v ...interface{})   { l.Debug().Msgf(format, v...) }
func (l *Logger) LogInfof(format string, v ...interface{})    { l.Info().Msgf(format, v...) }
func (l *Logger) LogSuccessf(format string, v ...interface{}) { l.Success().Msgf(format, v...) }
func (l *Logger) LogWarnf(format string, v ...interface{})    { l.Warn().Msgf(format, v...) }
func (l *Logger) LogErrorf(format string, v ...interface{})   { l.Error().Msgf(format, v...) }
func (l *Logger) LogFatalf(format string, v ...interface{})   { l.Fatal().Msgf(format, v...) }

// WithFields adds fields to an info-level event.
func (l *Logger) WithFields(fields map[string]interface{}) *zerolog.Event {
	event := l.Info()
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	return event
}

// StripANSI removes color escape sequences, for strings that end up in
// HTTP responses.
func StripANSI(str string) string {
	ansiPattern := regexp.MustCompile("\x1B\\[[0-9;]*[a-zA-Z]")
	return ansiPattern.ReplaceAllString(str, "")
}
