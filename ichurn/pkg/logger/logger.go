package logger

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is used by all ichurn packages. Args are alternating key value pairs.
type Logger interface {
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Opts configures the default logger.
type Opts struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// JSON switches to json formatted output.
	JSON bool
}

type DefaultLogger struct {
	l *logrus.Logger
}

// NewDefaultLogger creates a logrus backed logger writing to wr at info level.
func NewDefaultLogger(wr io.Writer) Logger {
	res, err := New(wr, Opts{})
	if err != nil {
		panic(err)
	}
	return res
}

func New(wr io.Writer, opts Opts) (Logger, error) {
	l := logrus.New()
	l.SetOutput(wr)
	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	level := logrus.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}
	l.SetLevel(level)
	return &DefaultLogger{l: l}, nil
}

func (s *DefaultLogger) Info(msg string, args ...interface{}) {
	s.entry(args).Info(msg)
}

func (s *DefaultLogger) Debug(msg string, args ...interface{}) {
	s.entry(args).Debug(msg)
}

func (s *DefaultLogger) Warn(msg string, args ...interface{}) {
	s.entry(args).Warn(msg)
}

func (s *DefaultLogger) Error(msg string, args ...interface{}) {
	s.entry(args).Error(msg)
}

func (s *DefaultLogger) entry(args []interface{}) *logrus.Entry {
	fields, err := formatArgs(args)
	if err != nil {
		return s.l.WithFields(logrus.Fields{"logger_err": err.Error(), "args": fmt.Sprint(args...)})
	}
	return s.l.WithFields(fields)
}

func formatArgs(args []interface{}) (logrus.Fields, error) {
	if len(args)%2 != 0 {
		return nil, errors.New("len of args not even")
	}
	res := logrus.Fields{}
	for i := 0; i < len(args); i += 2 {
		k, ok := args[i].(string)
		if !ok {
			return nil, errors.New("key arg passes in not a string")
		}
		res[k] = args[i+1]
	}
	return res, nil
}

type nop struct{}

// NewNop returns a logger that drops everything. Used in tests.
func NewNop() Logger {
	return nop{}
}

func (nop) Info(string, ...interface{})  {}
func (nop) Debug(string, ...interface{}) {}
func (nop) Warn(string, ...interface{})  {}
func (nop) Error(string, ...interface{}) {}
