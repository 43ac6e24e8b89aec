package opalforge

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/opalforge/opalforge/cache"
	"github.com/opalforge/opalforge/renderer"
	"github.com/opalforge/opalforge/storage/model"
)

func (s *Service) handleCertificatePDF(c *fiber.Ctx) error {
	certID := c.Params("certID")
	item, err := s.repo.Verify(certID)
	if err != nil {
		var notFoundError model.NotFoundError
		if errors.As(err, &notFoundError) {
			return c.Status(fiber.StatusNotFound).JSON(errorNotFound(notFoundError.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorServerError(err.Error()))
	}

	data := renderer.Data{
		CertID:     item.CertID,
		QRPayload:  item.QRPayload,
		Confidence: item.Confidence,
	}
	overridden := false
	if qrData := c.Query("qrData"); qrData != "" {
		data.QRPayload = qrData
		overridden = true
	}
	if confQuery := c.Query("confidence"); confQuery != "" {
		conf, err := strconv.ParseFloat(confQuery, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorInvalidRequest("confidence must be a number"))
		}
		data.Confidence = conf
		overridden = true
	}

	// The PDF cache is keyed per certId only, so renders with query overrides
	// bypass it entirely.
	pdfKey := cache.Key(cache.KeyPDF, certID)
	if !overridden {
		var cached []byte
		if set, err := cache.Get(pdfKey, &cached); err == nil && set {
			return s.sendPDF(c, certID, cached)
		}
	}

	document, err := s.renderer.Render(c.UserContext(), data)
	if err != nil {
		log.WithError(err).WithField("certId", certID).Error("document rendering failed")
		return c.Status(fiber.StatusInternalServerError).JSON(errorServerError(err.Error()))
	}

	if !overridden {
		if err = cache.Set(pdfKey, document, s.conf.PDFTTL); err != nil {
			log.WithError(err).WithField("certId", certID).Warn("could not cache rendered document")
		}
	}
	return s.sendPDF(c, certID, document)
}

func (s *Service) sendPDF(c *fiber.Ctx, certID string, document []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", s.renderer.Filename(certID)))
	return c.Send(document)
}

func (s *Service) handleQRImage(c *fiber.Ctx) error {
	certID := c.Params("certID")
	png, err := s.qr.Encode(s.verificationURL(certID), renderer.QRImageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorServerError(err.Error()))
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(png)
}
