package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opalforge/opalforge"
	"github.com/opalforge/opalforge/cache"
	"github.com/opalforge/opalforge/cmd/opalforge/config"
	"github.com/opalforge/opalforge/internal/logger"
	"github.com/opalforge/opalforge/internal/version"
	"github.com/opalforge/opalforge/renderer"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "opalforge",
	Short: "opalforge issues, verifies, and renders authenticity certificates",
	RunE:  serveRunE,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the opalforge server",
	RunE:  serveRunE,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the opalforge version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.VERSION)
	},
}

func serveRunE(cmd *cobra.Command, args []string) error {
	config.Load(configFile)
	c := config.Get()
	logger.Init(
		logger.Conf{
			Level:  c.Logging.Internal.Level,
			Dir:    c.Logging.Internal.Dir,
			StdErr: c.Logging.Internal.StdErr,
		},
	)
	log.Info("Loaded Config")

	if !c.Caching.Disabled && c.Caching.RedisAddr != "" {
		if err := cache.UseRedisCache(
			&redis.Options{
				Addr:     c.Caching.RedisAddr,
				Username: c.Caching.Username,
				Password: c.Caching.Password,
				DB:       c.Caching.RedisDB,
			},
		); err != nil {
			log.WithError(err).Fatal("could not init redis cache")
		}
		log.Info("Loaded Redis Cache")
	}

	backs, err := config.LoadStorageBackends(c.Storage)
	if err != nil {
		log.Fatal(err)
	}

	qr := renderer.NewQREncoder()
	var rend renderer.Renderer
	switch c.Renderer.Variant {
	case config.RendererVariantRemote:
		rend = renderer.NewRemoteRenderer(
			c.Renderer.Remote.URL,
			c.Renderer.Remote.APIKey,
			c.Renderer.Remote.Timeout.Duration(),
			qr,
		)
		log.Info("Using remote document renderer")
	default:
		rend = renderer.NewLocalRenderer(qr)
		log.Info("Using local document renderer")
	}

	svc, err := opalforge.NewService(
		c.Server,
		opalforge.Conf{
			Name:           c.Service.Name,
			BaseURL:        c.Service.BaseURL,
			CertificateTTL: c.Caching.CertificateTTL.Duration(),
			PDFTTL:         c.Caching.PDFTTL.Duration(),
		},
		backs,
		rend,
		qr,
	)
	if err != nil {
		log.Fatal(err)
	}
	log.Info("Initialized Service")

	svc.Start()
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "the config file to use")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
