package tabextract

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Options holds configuration for table extraction.
type Options struct {
	// Method is the name of the extraction method ("Vector", "Basic",
	// "Compound" or "Bitmap")
	Method string `validate:"required,oneof=Vector Basic Compound Bitmap"`

	// GuessArea extracts detected table regions instead of whole pages
	GuessArea bool

	// Concurrency is the number of pages processed at once
	Concurrency int `validate:"min=1,max=64"`

	// BitmapScale is pixels per point for the Bitmap method
	BitmapScale float64 `validate:"gt=0,lte=8"`

	// Pages restricts extraction to these page numbers; empty means all
	Pages []int `validate:"dive,min=1"`
}

// DefaultOptions returns the default extraction options.
func DefaultOptions() Options {
	return Options{
		Method:      "Vector",
		GuessArea:   false,
		Concurrency: 4,
		BitmapScale: 2,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the options against their constraints.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// clone creates a deep copy of Options.
func (o Options) clone() Options {
	newOpts := o
	if o.Pages != nil {
		newOpts.Pages = append([]int(nil), o.Pages...)
	}
	return newOpts
}
