package renderer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

// Fixed page layout in millimeters on a landscape A4 page (297x210).
// Positions are content-independent so two renders of the same data are
// byte-comparable apart from the issue date and PDF metadata.
const (
	pageWidth  = 297.0
	pageHeight = 210.0

	borderMargin = 10.0

	titleY   = 38.0
	certIDY  = 82.0
	scoreY   = 108.0
	dateY    = 140.0
	qrX      = 232.0
	qrY      = 138.0
	qrSizeMM = 48.0
)

const issueDateLayout = "January 2, 2006"

// LocalRenderer draws the certificate document procedurally and embeds the
// QR raster directly. It has no network dependency besides QR encoding.
type LocalRenderer struct {
	QR QREncoder

	// Now returns the issue date printed on the document; defaults to
	// time.Now. Overridable for deterministic output.
	Now func() time.Time
}

// NewLocalRenderer creates a LocalRenderer using the passed QREncoder.
func NewLocalRenderer(qr QREncoder) *LocalRenderer {
	return &LocalRenderer{
		QR:  qr,
		Now: time.Now,
	}
}

// Filename implements the Renderer interface
func (r *LocalRenderer) Filename(certID string) string {
	return fmt.Sprintf("OpalForge_%s.pdf", certID)
}

// Render implements the Renderer interface
func (r *LocalRenderer) Render(_ context.Context, data Data) ([]byte, error) {
	qrPNG, err := r.QR.Encode(data.QRPayload, QRImageSize)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	tier := TierFor(data.Confidence)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("OpalForge Authenticity Certificate", false)
	pdf.AddPage()

	// Double border frame
	pdf.SetDrawColor(33, 33, 33)
	pdf.SetLineWidth(1.2)
	pdf.Rect(borderMargin, borderMargin, pageWidth-2*borderMargin, pageHeight-2*borderMargin, "D")
	pdf.SetLineWidth(0.3)
	pdf.Rect(borderMargin+3, borderMargin+3, pageWidth-2*borderMargin-6, pageHeight-2*borderMargin-6, "D")

	pdf.SetTextColor(33, 33, 33)
	pdf.SetFont("Helvetica", "B", 32)
	pdf.SetXY(0, titleY)
	pdf.CellFormat(pageWidth, 14, "Certificate of Authenticity", "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 13)
	pdf.SetXY(0, titleY+16)
	pdf.CellFormat(pageWidth, 8, "OpalForge Verification Record", "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetXY(0, certIDY)
	pdf.CellFormat(pageWidth, 7, "Certificate ID", "", 0, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(0, certIDY+8)
	pdf.CellFormat(pageWidth, 10, data.CertID, "", 0, "C", false, 0, "")

	red, green, blue := tier.RGB()
	pdf.SetTextColor(red, green, blue)
	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetXY(0, scoreY)
	pdf.CellFormat(pageWidth, 12, FormatScore(data.Confidence), "", 0, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(0, scoreY+13)
	pdf.CellFormat(pageWidth, 7, tier.Label(), "", 0, "C", false, 0, "")

	pdf.SetTextColor(97, 97, 97)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetXY(0, dateY)
	pdf.CellFormat(pageWidth, 7, "Issued "+now().Format(issueDateLayout), "", 0, "C", false, 0, "")

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", qrX, qrY, qrSizeMM, qrSizeMM, false, opts, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(qrX, qrY+qrSizeMM+1)
	pdf.CellFormat(qrSizeMM, 4, "Scan to verify", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "renderer: pdf generation failed")
	}
	return buf.Bytes(), nil
}
