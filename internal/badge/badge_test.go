package badge

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
)

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, "A1B2C3"); err != nil {
		t.Fatalf("write: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dy() != Height {
		t.Errorf("expected height %d, got %d", Height, b.Dy())
	}
	if b.Dx() == 0 || b.Dx()%ModuleWidth != 0 {
		t.Errorf("width %d is not a multiple of the module width", b.Dx())
	}
}

func TestEncode_ContentRoundTrips(t *testing.T) {
	bc, err := Encode("  STF001 ")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if bc.Content() != "STF001" {
		t.Errorf("expected trimmed content, got %q", bc.Content())
	}
}

func TestEncode_Empty(t *testing.T) {
	if _, err := Encode(" "); !errors.Is(err, ErrEmptyCode) {
		t.Errorf("expected ErrEmptyCode, got %v", err)
	}
}
