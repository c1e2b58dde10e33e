package logger

import (
	"checkout/api/internal/config"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"

	"github.com/golang-cz/devslog"
	"github.com/google/uuid"
)

type Logger struct {
	*slog.Logger
}

func Init(config *config.Config) Logger {
	return New(os.Stdout, config.Prod_env)
}

// json records in production, colored devslog output otherwise
func New(w io.Writer, prod bool) Logger {
	slogOpts := &slog.HandlerOptions{}

	var handler slog.Handler
	if prod {
		handler = slog.NewJSONHandler(w, slogOpts)
	} else {
		slogOpts.Level = slog.LevelDebug

		opts := &devslog.Options{
			HandlerOptions:    slogOpts,
			MaxSlicePrintSize: 4,
			SortKeys:          true,
			NewLineAfterLog:   true,
		}
		handler = devslog.NewHandler(w, opts)
	}

	logger := slog.New(handler)

	slog.SetDefault(logger)

	return Logger{logger}
}

// example Info("request done", LS_SESSIONS, false, "session_id", id)
func (l Logger) Info(message string, logStream Logstream, isTemplate bool, args ...any) {
	l.print(LL_INFO, message, logStream, callerSkip(isTemplate), args...)
}

func (l Logger) Error(message string, logStream Logstream, isTemplate bool, args ...any) {
	l.print(LL_ERROR, message, logStream, callerSkip(isTemplate), args...)
}

// use only for errors the process can't recover from
func (l Logger) Fatal(message string, logStream Logstream, isTemplate bool, args ...any) {
	l.print(LL_FATAL, message, logStream, callerSkip(isTemplate), args...)
}

func (l Logger) Debug(message string, args ...any) {
	l.print(LL_DEBUG, message, LS_SESSIONS, 2, args...)
}

// templates are one frame deeper than direct calls
func callerSkip(isTemplate bool) int {
	if isTemplate {
		return 3
	}
	return 2
}

func (l Logger) print(ll LogLevel, message string, logStream Logstream, skip int, args ...any) {
	if l.Logger == nil {
		return
	}

	_, file, line, _ := runtime.Caller(skip)
	args = append(args, "stream", logStream.ToString(), "source", file+":"+strconv.Itoa(line))

	switch ll {
	case LL_ERROR:
		l.Logger.Error(message, args...)
	case LL_INFO:
		l.Logger.Info(message, args...)
	case LL_FATAL:
		l.Logger.Error(message, append(args, "fatal", true)...)
	case LL_DEBUG:
		l.Logger.Debug(message, args...)
	}
}

func AnyToStr(t any) string {
	return fmt.Sprintf("%v", t)
}

func GenErrorId() string {
	var errorId string
	uuid, err := uuid.NewRandom()
	if err != nil {
		errorId = NA
	} else {
		errorId = uuid.String()
	}
	return errorId
}
