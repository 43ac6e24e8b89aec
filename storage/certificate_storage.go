package storage

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/opalforge/opalforge/storage/model"
)

// CertificateStorage provides access to Certificate records.
// It implements model.CertificateStore.
type CertificateStorage struct {
	db *gorm.DB
}

// Create stores a new certificate with status active. A uniqueness violation
// on cert_id is remapped to a model.AlreadyExistsError so callers can
// distinguish a duplicate from a generic storage failure.
func (s *CertificateStorage) Create(req model.AddCertificate) (*model.Certificate, error) {
	item := &model.Certificate{
		CertID:     req.CertID,
		Confidence: req.Confidence,
		Timestamp:  req.Timestamp,
		QRPayload:  req.QRPayload,
		Status:     model.StatusActive,
	}
	if err := s.db.Create(item).Error; err != nil {
		// Check unique/constraint violations
		if isUniqueConstraintError(err) {
			return nil, model.AlreadyExistsErrorFmt("certificate %s already exists", req.CertID)
		}
		return nil, errors.Wrap(err, "certificates: create failed")
	}
	return item, nil
}

// ByCertID retrieves a certificate by its cert_id. Returns (nil, nil) when no
// row exists.
func (s *CertificateStorage) ByCertID(certID string) (*model.Certificate, error) {
	var item model.Certificate
	if err := s.db.Where("cert_id = ?", certID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "certificates: get failed")
	}
	return &item, nil
}

// Exists reports whether a certificate with the passed cert_id is stored.
func (s *CertificateStorage) Exists(certID string) (bool, error) {
	var count int64
	if err := s.db.Model(&model.Certificate{}).
		Where("cert_id = ?", certID).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "certificates: exists check failed")
	}
	return count > 0, nil
}

// ByStatus returns all certificates with the passed status.
func (s *CertificateStorage) ByStatus(status model.Status) ([]model.Certificate, error) {
	var items []model.Certificate
	if err := s.db.Where("status = ?", status).Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "certificates: list failed")
	}
	return items, nil
}

// isUniqueConstraintError performs a cheap check across supported drivers.
func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	// sqlite | mysql | postgres common markers
	if
	// SQLite
	(containsAny(msg, "UNIQUE constraint failed", "constraint failed")) ||
		// MySQL
		(containsAny(msg, "Duplicate entry", "Error 1062")) ||
		// Postgres
		(containsAny(msg, "duplicate key value", "violates unique constraint")) {
		return true
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
