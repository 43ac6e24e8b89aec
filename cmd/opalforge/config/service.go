package config

import (
	"net/url"

	"github.com/pkg/errors"
)

// serviceConf holds service identity settings.
type serviceConf struct {
	// Name identifies the service in health responses.
	Name string `yaml:"name"`
	// BaseURL is the public base URL of this deployment; it is used to build
	// the canonical verification URLs encoded into QR codes.
	BaseURL string `yaml:"base_url"`
}

func (c *serviceConf) validate() error {
	if c.BaseURL == "" {
		return errors.New("error in service conf: base_url must be specified")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return errors.Wrap(err, "error in service conf: base_url is not a valid url")
	}
	return nil
}

var defaultServiceConf = serviceConf{
	Name: "opalforge",
}
