// Package badge renders a user's code as a printable Code 128 barcode.
package badge

import (
	"errors"
	"fmt"
	"image/png"
	"io"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

const (
	// ModuleWidth is the width in pixels of the narrowest bar.
	ModuleWidth = 2
	Height      = 60
)

var ErrEmptyCode = errors.New("badge: empty code")

// Encode returns the barcode for code, scaled to ModuleWidth and Height.
func Encode(code string) (barcode.Barcode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}

	bc, err := code128.Encode(code)
	if err != nil {
		return nil, fmt.Errorf("badge: encode %q: %w", code, err)
	}
	scaled, err := barcode.Scale(bc, bc.Bounds().Dx()*ModuleWidth, Height)
	if err != nil {
		return nil, fmt.Errorf("badge: scale: %w", err)
	}
	return scaled, nil
}

// WritePNG encodes code and writes it to w as a PNG.
func WritePNG(w io.Writer, code string) error {
	bc, err := Encode(code)
	if err != nil {
		return err
	}
	if err := png.Encode(w, bc); err != nil {
		return fmt.Errorf("badge: png: %w", err)
	}
	return nil
}
