package renderer

import (
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// QRImageSize is the pixel edge length of generated QR rasters.
const QRImageSize = 512

// QREncoder is the capability of encoding a payload string into a raster
// image. Encoding parameters are fixed and never depend on certificate
// content.
type QREncoder interface {
	Encode(payload string, size int) ([]byte, error)
}

type qrEncoder struct{}

// NewQREncoder returns the default QREncoder producing PNG images with
// medium error correction, black on white, default quiet zone.
func NewQREncoder() QREncoder {
	return qrEncoder{}
}

func (qrEncoder) Encode(payload string, size int) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(err, "qr: encoding failed")
	}
	return png, nil
}
