package config

import (
	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/duration"
)

// Renderer variants
const (
	RendererVariantLocal  = "local"
	RendererVariantRemote = "remote"
)

// rendererConf selects the document rendering strategy. The two variants
// have independent output contracts and are never merged.
type rendererConf struct {
	Variant string             `yaml:"variant"`
	Remote  remoteRendererConf `yaml:"remote"`
}

type remoteRendererConf struct {
	// URL is the HTML-to-PDF conversion API endpoint.
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	// Timeout bounds a single conversion request.
	Timeout duration.DurationOption `yaml:"timeout"`
}

func (c *rendererConf) validate() error {
	switch c.Variant {
	case RendererVariantLocal:
		return nil
	case RendererVariantRemote:
		if c.Remote.URL == "" {
			return errors.New("error in renderer conf: remote.url must be specified for the remote variant")
		}
		return nil
	default:
		return errors.Errorf("error in renderer conf: unknown variant '%s'", c.Variant)
	}
}

var defaultRendererConf = rendererConf{
	Variant: RendererVariantLocal,
}
