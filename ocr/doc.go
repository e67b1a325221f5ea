// Package ocr recognizes text in cell images for the bitmap extractor.
//
// It wraps the Tesseract OCR engine via gosseract and is only compiled in
// with the "ocr" build tag:
//
//	go build -tags ocr
//
// Tesseract must be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// Without the tag every operation returns [ErrOCRNotEnabled].
package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// ErrClosed is returned when a closed Client is used.
var ErrClosed = errors.New("OCR client is closed")
