package opalforge

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/opalforge/opalforge/storage/model"
)

type createCertificateRequest struct {
	CertID string `json:"certId"`
	// Confidence is a pointer so a missing field can be told apart from 0;
	// it is strictly required and never defaulted.
	Confidence *float64 `json:"confidence"`
	Timestamp  string   `json:"timestamp"`
	QRPayload  string   `json:"qrPayload"`
}

func (s *Service) handleCreateCertificate(c *fiber.Ctx) error {
	var req createCertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorInvalidRequest("invalid JSON body"))
	}
	if req.CertID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorInvalidRequest("certId is required"))
	}
	if req.Confidence == nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorInvalidRequest("confidence is required"))
	}

	add := model.AddCertificate{
		CertID:     req.CertID,
		Confidence: *req.Confidence,
		Timestamp:  req.Timestamp,
		QRPayload:  req.QRPayload,
	}
	if add.Timestamp == "" {
		add.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if add.QRPayload == "" {
		add.QRPayload = s.verificationURL(add.CertID)
	}

	item, err := s.repo.Create(add)
	if err != nil {
		var alreadyExistsError model.AlreadyExistsError
		if errors.As(err, &alreadyExistsError) {
			return c.Status(fiber.StatusConflict).JSON(errorConflict(alreadyExistsError.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorServerError(err.Error()))
	}
	return c.Status(fiber.StatusCreated).JSON(
		fiber.Map{
			"success": true,
			"certId":  item.CertID,
		},
	)
}

func (s *Service) handleVerifyCertificate(c *fiber.Ctx) error {
	item, err := s.repo.Verify(c.Params("certID"))
	if err != nil {
		var notFoundError model.NotFoundError
		if errors.As(err, &notFoundError) {
			return c.Status(fiber.StatusNotFound).JSON(errorNotFound(notFoundError.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorServerError(err.Error()))
	}
	return c.JSON(item)
}

func (s *Service) handleCertificateExists(c *fiber.Ctx) error {
	set, err := s.repo.Exists(c.Params("certID"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).Send(nil)
	}
	if !set {
		return c.Status(fiber.StatusNotFound).Send(nil)
	}
	return c.Status(fiber.StatusOK).Send(nil)
}
