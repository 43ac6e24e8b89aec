package renderer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// RemoteRenderError carries the upstream conversion API failure verbatim so
// callers can report the remote status and body.
type RemoteRenderError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *RemoteRenderError) Error() string {
	return fmt.Sprintf("remote renderer: conversion API returned %d: %s", e.StatusCode, e.Body)
}

// RemoteRenderer fills an HTML template with the certificate fields and
// submits it to an external HTML-to-PDF conversion API. It introduces a
// network dependency; conversion failures are surfaced as RemoteRenderError.
type RemoteRenderer struct {
	client *resty.Client
	qr     QREncoder
	tmpl   *template.Template

	// Now returns the issue date printed on the document; defaults to time.Now.
	Now func() time.Time
}

// NewRemoteRenderer creates a RemoteRenderer posting to the passed conversion
// API url. An empty apiKey disables the Authorization header.
func NewRemoteRenderer(url, apiKey string, timeout time.Duration, qr QREncoder) *RemoteRenderer {
	client := resty.New().
		SetBaseURL(url).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return &RemoteRenderer{
		client: client,
		qr:     qr,
		tmpl:   template.Must(template.New("certificate").Parse(certificateHTML)),
		Now:    time.Now,
	}
}

// Filename implements the Renderer interface
func (r *RemoteRenderer) Filename(certID string) string {
	return fmt.Sprintf("OpalForge_Cert_%s.pdf", certID)
}

type htmlTemplateData struct {
	CertID    string
	Score     string
	TierLabel string
	TierColor string
	IssueDate string
	QRDataURI template.URL
}

// Render implements the Renderer interface
func (r *RemoteRenderer) Render(ctx context.Context, data Data) ([]byte, error) {
	qrPNG, err := r.qr.Encode(data.QRPayload, QRImageSize)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	tier := TierFor(data.Confidence)
	var html bytes.Buffer
	if err = r.tmpl.Execute(
		&html, htmlTemplateData{
			CertID:    data.CertID,
			Score:     FormatScore(data.Confidence),
			TierLabel: tier.Label(),
			TierColor: tier.Hex(),
			IssueDate: now().Format(issueDateLayout),
			QRDataURI: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG)),
		},
	); err != nil {
		return nil, errors.Wrap(err, "remote renderer: template execution failed")
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(
			map[string]any{
				"html": html.String(),
				"options": map[string]any{
					"format":    "A4",
					"landscape": true,
				},
			},
		).
		Post("")
	if err != nil {
		return nil, errors.Wrap(err, "remote renderer: conversion request failed")
	}
	if resp.IsError() {
		return nil, &RemoteRenderError{
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}
	return resp.Body(), nil
}

const certificateHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  @page { size: A4 landscape; margin: 0; }
  body { font-family: Helvetica, Arial, sans-serif; color: #212121; margin: 0; }
  .frame { border: 4px double #212121; margin: 10mm; height: 182mm; position: relative; text-align: center; }
  h1 { font-size: 40px; margin-top: 28mm; margin-bottom: 4mm; }
  .subtitle { font-size: 16px; color: #616161; }
  .label { font-size: 14px; margin-top: 18mm; }
  .cert-id { font-size: 24px; font-weight: bold; }
  .score { font-size: 36px; font-weight: bold; color: {{.TierColor}}; margin-top: 10mm; }
  .tier { font-size: 16px; font-weight: bold; color: {{.TierColor}}; }
  .date { font-size: 14px; color: #616161; margin-top: 12mm; }
  .qr { position: absolute; right: 12mm; bottom: 12mm; width: 48mm; }
  .qr img { width: 48mm; height: 48mm; }
  .qr div { font-size: 10px; }
</style>
</head>
<body>
<div class="frame">
  <h1>Certificate of Authenticity</h1>
  <div class="subtitle">OpalForge Verification Record</div>
  <div class="label">Certificate ID</div>
  <div class="cert-id">{{.CertID}}</div>
  <div class="score">{{.Score}}</div>
  <div class="tier">{{.TierLabel}}</div>
  <div class="date">Issued {{.IssueDate}}</div>
  <div class="qr"><img src="{{.QRDataURI}}" alt="QR"><div>Scan to verify</div></div>
</div>
</body>
</html>`
