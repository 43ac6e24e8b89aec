package opalforge

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/opalforge/opalforge/storage/model"
)

func (s *Service) handleHealth(c *fiber.Ctx) error {
	return c.JSON(
		fiber.Map{
			"status":    "ok",
			"service":   s.conf.Name,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	)
}

// lastRequester is persisted to the key-value store instead of process-global
// state, so it survives restarts and is shared across instances.
type lastRequester struct {
	IP         string          `json:"ip"`
	UserAgent  string          `json:"user_agent"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt string          `json:"received_at"`
}

// handleEcho accepts an arbitrary JSON document, records the requester, and
// echoes the document back.
func (s *Service) handleEcho(c *fiber.Ctx) error {
	body := c.Body()
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorInvalidRequest("invalid JSON body"))
	}

	if s.kv != nil {
		rec := lastRequester{
			IP:         c.IP(),
			UserAgent:  c.Get(fiber.HeaderUserAgent),
			Payload:    json.RawMessage(body),
			ReceivedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.kv.SetAny(model.KeyValueScopeService, model.KeyValueKeyLastRequester, rec); err != nil {
			log.WithError(err).Warn("could not persist last requester")
		}
	}
	return c.JSON(payload)
}
