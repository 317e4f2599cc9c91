// Package logging builds the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

// Settings controls where and at which level the logger writes
type Settings struct {
	Level      string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a JSON logger. With a file path set, output goes to a rotated file instead of stdout.
func New(s Settings) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(output(s))

	logLevel, err := logrus.ParseLevel(s.Level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	return logger
}

func output(s Settings) io.Writer {
	if s.FilePath == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   s.FilePath,
		MaxSize:    s.MaxSizeMB,
		MaxBackups: s.MaxBackups,
		MaxAge:     s.MaxAgeDays,
		Compress:   true,
	}
}
