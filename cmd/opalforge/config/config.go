package config

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/opalforge/opalforge"
)

// Config holds the complete service configuration read from the yaml config
// file.
type Config struct {
	Server   opalforge.ServerConf `yaml:"server"`
	Service  serviceConf          `yaml:"service"`
	Storage  storageConf          `yaml:"storage"`
	Caching  cachingConf          `yaml:"caching"`
	Renderer rendererConf         `yaml:"renderer"`
	Logging  loggingConf          `yaml:"logging"`
}

var conf *Config

// Get returns the loaded Config
func Get() *Config {
	return conf
}

var possibleConfigLocations = []string{
	".",
	"config",
	"/etc/opalforge",
}

const configFileName = "config.yaml"

// Load reads the config file, applies defaults, and validates the result.
// An empty file argument searches the default locations. Any failure is
// fatal: the service cannot run without valid configuration.
func Load(file string) {
	if file == "" {
		for _, dir := range possibleConfigLocations {
			candidate := filepath.Join(dir, configFileName)
			if _, err := os.Stat(candidate); err == nil {
				file = candidate
				break
			}
		}
	}
	if file == "" {
		log.Fatal("could not find config file in any of the default locations")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		log.WithError(err).Fatal("could not read config file")
	}

	c := &Config{
		Server:   defaultServerConf,
		Service:  defaultServiceConf,
		Storage:  defaultStorageConf,
		Caching:  defaultCachingConf,
		Renderer: defaultRendererConf,
		Logging:  defaultLoggingConf,
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		log.WithError(err).Fatal("could not parse config file")
	}
	if err = c.validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	conf = c
}

func (c *Config) validate() error {
	if err := c.Service.validate(); err != nil {
		return err
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}
	if err := c.Renderer.validate(); err != nil {
		return err
	}
	return c.Logging.validate()
}

var defaultServerConf = opalforge.ServerConf{
	Port: 8080,
}
