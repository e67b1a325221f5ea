//go:build ocr

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// PageSegMode controls how Tesseract analyzes the layout of an image.
type PageSegMode = gosseract.PageSegMode

// Segmentation modes used for table cells.
const (
	PSM_AUTO         = gosseract.PSM_AUTO
	PSM_SINGLE_BLOCK = gosseract.PSM_SINGLE_BLOCK
	PSM_SINGLE_LINE  = gosseract.PSM_SINGLE_LINE
	PSM_SINGLE_WORD  = gosseract.PSM_SINGLE_WORD
	PSM_SPARSE_TEXT  = gosseract.PSM_SPARSE_TEXT
)

// Client wraps Tesseract for OCR operations. Calls are serialized, so one
// Client may be shared by pages processed in parallel.
type Client struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a new OCR client. Cells are usually one block of text, so the
// client starts in single-block mode.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	client := gosseract.NewClient()
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set segmentation mode: %w", err)
	}
	return &Client{client: client}, nil
}

// Close releases OCR resources. Later calls are no-ops, and a closed
// client fails every operation with ErrClosed.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// Recognize performs OCR on a cell image.
func (c *Client) Recognize(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return c.RecognizeImage(buf.Bytes())
}

// RecognizeImage performs OCR on image data (PNG, TIFF, JPEG, etc.).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return "", ErrClosed
	}
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
func (c *Client) SetLanguage(lang string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return ErrClosed
	}
	return c.client.SetLanguage(lang)
}

// SetPageSegMode sets the page segmentation mode.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return ErrClosed
	}
	return c.client.SetPageSegMode(mode)
}
