// Package logger initializes the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Conf holds the settings for internal logging.
type Conf struct {
	Level  string
	Dir    string
	StdErr bool
}

// Init configures the global logrus logger from the passed Conf.
func Init(conf Conf) {
	level, err := log.ParseLevel(conf.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(
		&log.TextFormatter{
			FullTimestamp: true,
		},
	)

	var outputs []io.Writer
	if conf.StdErr || conf.Dir == "" {
		outputs = append(outputs, os.Stderr)
	}
	if conf.Dir != "" {
		f, err := os.OpenFile(
			filepath.Join(conf.Dir, "opalforge.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644,
		)
		if err != nil {
			log.WithError(err).Error("could not open log file, logging to stderr only")
			outputs = []io.Writer{os.Stderr}
		} else {
			outputs = append(outputs, f)
		}
	}
	log.SetOutput(io.MultiWriter(outputs...))
}
