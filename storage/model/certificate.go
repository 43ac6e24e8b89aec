package model

import (
	"time"
)

// Certificate is the durable record of an issued authenticity certificate.
// CertID and Timestamp are immutable once written; the cache only ever holds
// projections of these rows.
type Certificate struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// CertID is the caller-supplied identifier, unique across all certificates.
	CertID string `gorm:"uniqueIndex" json:"certId"`

	// Confidence is the authentication confidence score in percent (0-100).
	Confidence float64 `json:"confidence"`

	// Timestamp is the ISO 8601 issuance instant.
	Timestamp string `gorm:"index" json:"timestamp"`

	// QRPayload is the verification URL or token encoded into the QR image.
	QRPayload string `json:"qrPayload,omitempty"`

	Status Status `gorm:"index" json:"status"`
}

// TableName implements the gorm.Tabler interface
func (Certificate) TableName() string {
	return "certificates"
}

// AddCertificate is the request type for creating a Certificate.
// Timestamp and QRPayload are optional; defaults are applied at the API
// boundary before the record reaches storage.
type AddCertificate struct {
	CertID     string  `json:"certId"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp,omitempty"`
	QRPayload  string  `json:"qrPayload,omitempty"`
}

// CertificateStore is the abstraction used by the repository and handlers.
type CertificateStore interface {
	Create(req AddCertificate) (*Certificate, error)
	ByCertID(certID string) (*Certificate, error)
	Exists(certID string) (bool, error)
}
