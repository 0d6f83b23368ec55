package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
)

// RenderResult contains a rendered buffer encoded as base64 PNG.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes buf as PNG bytes.
func EncodePNG(buf *Buffer) ([]byte, error) {
	var out bytes.Buffer
	if err := png.Encode(&out, buf.NRGBA()); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return out.Bytes(), nil
}

// NewRenderResult encodes buf for transport.
func NewRenderResult(buf *Buffer) (*RenderResult, error) {
	data, err := EncodePNG(buf)
	if err != nil {
		return nil, err
	}
	return &RenderResult{
		Width:       buf.Width,
		Height:      buf.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}

// DataURL returns the result as a data: URL, the form the card document
// stores photos in.
func (r *RenderResult) DataURL() string {
	return "data:" + r.MimeType + ";base64," + r.ImageBase64
}
