//go:build !ocr

package ocr

import "image"

// PageSegMode represents page segmentation modes for OCR.
type PageSegMode int

// Segmentation modes used for table cells (matching the OCR-enabled
// implementation).
const (
	PSM_AUTO         PageSegMode = 3  // Fully automatic
	PSM_SINGLE_BLOCK PageSegMode = 6  // Single uniform block of text
	PSM_SINGLE_LINE  PageSegMode = 7  // Single text line
	PSM_SINGLE_WORD  PageSegMode = 8  // Single word
	PSM_SPARSE_TEXT  PageSegMode = 11 // Find as much text as possible
)

// Client is a stub OCR client that returns errors for all operations.
type Client struct{}

// New returns an error indicating OCR support is not enabled.
// To enable OCR, rebuild with: go build -tags ocr
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub client.
// It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// Recognize returns an error indicating OCR support is not enabled.
func (c *Client) Recognize(img image.Image) (string, error) {
	return "", ErrOCRNotEnabled
}

// RecognizeImage returns an error indicating OCR support is not enabled.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// SetLanguage returns an error indicating OCR support is not enabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// SetPageSegMode returns an error indicating OCR support is not enabled.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return ErrOCRNotEnabled
}
