// Package renderer turns certificate data into printable PDF documents with
// an embedded verification QR code. Two strategies exist: LocalRenderer draws
// the document procedurally, RemoteRenderer submits an HTML template to an
// external conversion API. They are selected by deployment configuration and
// keep independent output contracts (including filenames).
package renderer

import (
	"context"
	"fmt"
)

// Data holds the certificate fields visible on the rendered document.
type Data struct {
	CertID     string
	QRPayload  string
	Confidence float64
}

// Renderer produces a PDF document for the passed certificate data.
type Renderer interface {
	Render(ctx context.Context, data Data) ([]byte, error)
	// Filename returns the download filename for a rendered document.
	// The two renderer variants use different conventions; consumers must not
	// treat them as interchangeable.
	Filename(certID string) string
}

// Tier is the confidence color band a score falls into.
type Tier int

// Constants for Tier
const (
	TierPass Tier = iota
	TierCaution
	TierFail
)

// TierFor returns the color band for a confidence score. Boundary values
// belong to the higher band: exactly 85 is pass, exactly 50 is caution.
func TierFor(confidence float64) Tier {
	switch {
	case confidence >= 85:
		return TierPass
	case confidence >= 50:
		return TierCaution
	default:
		return TierFail
	}
}

// Label returns the text printed next to the score.
func (t Tier) Label() string {
	switch t {
	case TierPass:
		return "PASS"
	case TierCaution:
		return "CAUTION"
	default:
		return "FAIL"
	}
}

// RGB returns the band color for procedural drawing.
func (t Tier) RGB() (r, g, b int) {
	switch t {
	case TierPass:
		return 46, 125, 50
	case TierCaution:
		return 249, 168, 37
	default:
		return 198, 40, 40
	}
}

// Hex returns the band color as a CSS hex string.
func (t Tier) Hex() string {
	switch t {
	case TierPass:
		return "#2e7d32"
	case TierCaution:
		return "#f9a825"
	default:
		return "#c62828"
	}
}

// FormatScore formats a confidence score for display: one decimal place with
// a trailing percent sign.
func FormatScore(confidence float64) string {
	return fmt.Sprintf("%.1f%%", confidence)
}
