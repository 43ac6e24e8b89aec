// Package opalforge implements the OpalForge authenticity certificate
// service: issuing, verifying, and rendering short-lived certificates bound
// to a confidence score.
package opalforge

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"github.com/opalforge/opalforge/renderer"
	"github.com/opalforge/opalforge/storage/model"
)

// Conf holds the service-level settings of a Service.
type Conf struct {
	// Name identifies the service in health responses.
	Name string
	// BaseURL is the public base URL used to build canonical verification URLs.
	BaseURL string
	// CertificateTTL is the cache expiry for certificate projections.
	CertificateTTL time.Duration
	// PDFTTL is the cache expiry for rendered documents.
	PDFTTL time.Duration
}

// Service is the OpalForge certificate service: a request router over the
// certificate repository and the document renderer.
type Service struct {
	server     *fiber.App
	serverConf ServerConf
	conf       Conf
	repo       *CertificateRepository
	renderer   renderer.Renderer
	qr         renderer.QREncoder
	kv         model.KeyValueStore
}

// FiberServerConfig is the fiber.Config that is used to init the http fiber.App
var FiberServerConfig = fiber.Config{
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   20 * time.Second,
	IdleTimeout:    150 * time.Second,
	ReadBufferSize: 8192,
	ErrorHandler:   handleError,
	Network:        "tcp",
}

// NewService creates a new Service
func NewService(
	serverConf ServerConf,
	conf Conf,
	storages model.Backends,
	rend renderer.Renderer,
	qr renderer.QREncoder,
) (*Service, error) {
	if conf.BaseURL == "" {
		return nil, fmt.Errorf("service base url must be set")
	}
	if conf.Name == "" {
		conf.Name = "opalforge"
	}
	if conf.PDFTTL <= 0 {
		conf.PDFTTL = DefaultPDFCacheTTL
	}
	if tps := serverConf.TrustedProxies; len(tps) > 0 {
		FiberServerConfig.TrustedProxies = serverConf.TrustedProxies
		FiberServerConfig.EnableTrustedProxyCheck = true
	}
	FiberServerConfig.ProxyHeader = serverConf.ForwardedIPHeader
	server := fiber.New(FiberServerConfig)
	server.Use(recover.New())
	server.Use(compress.New())
	server.Use(logger.New())
	server.Use(requestid.New())
	server.Use(cors.New())

	s := &Service{
		server:     server,
		serverConf: serverConf,
		conf:       conf,
		repo:       NewCertificateRepository(storages.Certificates, conf.CertificateTTL),
		renderer:   rend,
		qr:         qr,
		kv:         storages.KV,
	}

	server.Post("/certificate", s.handleCreateCertificate)
	server.Head("/certificate/:certID", s.handleCertificateExists)
	server.Get("/certificate/:certID/pdf", s.handleCertificatePDF)
	server.Get("/certificate/:certID", s.handleVerifyCertificate)
	server.Get("/qr/:certID", s.handleQRImage)
	server.Get("/health", s.handleHealth)
	server.Get("/", s.handleHealth)
	server.Post("/", s.handleEcho)
	server.Options(
		"/*", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		},
	)

	return s, nil
}

// Repository returns the service's CertificateRepository.
func (s *Service) Repository() *CertificateRepository {
	return s.repo
}

// verificationURL builds the canonical verification URL for a certId.
func (s *Service) verificationURL(certID string) string {
	u, err := url.JoinPath(s.conf.BaseURL, "certificate", certID)
	if err != nil {
		// BaseURL is validated at construction; fall back to simple concatenation.
		return strings.TrimSuffix(s.conf.BaseURL, "/") + "/certificate/" + certID
	}
	return u
}

// HttpHandlerFunc returns an http.HandlerFunc serving all endpoints
func (s *Service) HttpHandlerFunc() http.HandlerFunc {
	return adaptor.FiberApp(s.server)
}

// Listen starts an http server at the specific address serving all endpoints
func (s *Service) Listen(addr string) error {
	return s.server.Listen(addr)
}

// Test passes the request to the underlying fiber.App for testing.
func (s *Service) Test(req *http.Request, timeoutMS ...int) (*http.Response, error) {
	return s.server.Test(req, timeoutMS...)
}

// Start runs the service with the configured server settings, blocking until
// the server exits.
func (s *Service) Start() {
	conf := s.serverConf
	if !conf.TLS.Enabled {
		log.WithField("port", conf.Port).Info("TLS is disabled, starting http server")
		log.WithError(s.server.Listen(fmt.Sprintf("%s:%d", conf.IPListen, conf.Port))).Fatal()
	}
	// TLS enabled
	if conf.TLS.RedirectHTTP {
		httpServer := fiber.New(FiberServerConfig)
		httpServer.All(
			"*", func(ctx *fiber.Ctx) error {
				//goland:noinspection HttpUrlsUsage
				return ctx.Redirect(
					strings.Replace(ctx.Request().URI().String(), "http://", "https://", 1),
					fiber.StatusPermanentRedirect,
				)
			},
		)
		log.Info("TLS and http redirect enabled, starting redirect server on port 80")
		go func() {
			log.WithError(httpServer.Listen(":80")).Fatal()
		}()
	}
	log.Info("TLS enabled, starting https server on port 443")
	log.WithError(s.server.ListenTLS(":443", conf.TLS.Cert, conf.TLS.Key)).Fatal()
}
