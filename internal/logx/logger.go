package logx

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level  string // debug | info | warn | error
	Format string // text | json
	File   string // kosong = stdout saja
}

// New builds the process logger. When File is set, output goes to stdout and
// to a size-rotated file.
func New(opts Options) (*logrus.Logger, error) {
	l := logrus.New()

	lvl := opts.Level
	if lvl == "" {
		lvl = "info"
	}
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	l.SetLevel(level)

	switch opts.Format {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("log format must be text or json, got %q", opts.Format)
	}

	var out io.Writer = os.Stdout
	if opts.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     28, // hari
			Compress:   true,
		})
	}
	l.SetOutput(out)
	return l, nil
}

// Discard is a logger for tests and tools that should stay quiet.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
