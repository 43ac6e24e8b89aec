package config

import (
	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/fileutils"
)

// loggingConf holds all logging-related configuration under the `logging` key.
//
// YAML example:
//
//	logging:
//	  internal:
//	    dir: /var/log/opalforge
//	    stderr: false
//	    level: INFO
type loggingConf struct {
	Internal internalLoggerConf `yaml:"internal"`
}

// internalLoggerConf configures application-internal logging.
// Level accepts standard log levels (e.g. DEBUG, INFO, WARN, ERROR).
type internalLoggerConf struct {
	Dir    string `yaml:"dir"`
	StdErr bool   `yaml:"stderr"`
	Level  string `yaml:"level"`
}

func (log *loggingConf) validate() error {
	if dir := log.Internal.Dir; dir != "" && !fileutils.FileExists(dir) {
		return errors.Errorf("logging directory '%s' does not exist", dir)
	}
	return nil
}

var defaultLoggingConf = loggingConf{
	Internal: internalLoggerConf{
		Level:  "INFO",
		StdErr: true,
	},
}
