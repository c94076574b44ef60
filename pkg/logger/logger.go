// Package logger builds the zerolog logger used across the tasklight client.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const permission = 0664

// Build collects logger options before Make assembles the logger.
type Build struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

// Log holds the assembled logger and, when logging to a file, the open file.
type Log struct {
	writer  io.Writer
	LogFile *os.File
	Logger  zerolog.Logger
}

// New starts a logger build writing to stderr at warn level.
func New() *Build {
	return &Build{writer: os.Stderr, level: zerolog.WarnLevel}
}

// FromPath directs log output to the file at path, appending.
func (build *Build) FromPath(path string) *Build {
	build.path = path
	return build
}

// FromBuffer directs log output to w.
func (build *Build) FromBuffer(w io.Writer) *Build {
	build.writer = w
	return build
}

// WithLevel sets the minimum level.
func (build *Build) WithLevel(level zerolog.Level) *Build {
	build.level = level
	return build
}

// Make assembles the logger.
func (build *Build) Make() (logData *Log, err error) {
	logData = new(Log)
	logData.writer = build.writer
	if build.path != "" {
		logData.LogFile, err = os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		logData.writer = zerolog.SyncWriter(logData.LogFile)
	}
	logData.Logger = zerolog.New(logData.writer).Level(build.level).With().Timestamp().Logger()
	return
}
