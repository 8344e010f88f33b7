package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodeSolidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPostprocessContainOnWhite(t *testing.T) {
	src := encodeSolidPNG(t, 100, 50, testRed)
	out, err := Postprocess(src, PostprocessOptions{Width: 200, Height: 200, Format: FormatPNG})
	if err != nil {
		t.Fatalf("postprocess: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 200 {
		t.Fatalf("unexpected size: %dx%d", b.Dx(), b.Dy())
	}
	if !near(img.At(100, 10), white, 2) || !near(img.At(100, 190), white, 2) {
		t.Fatalf("expected white letterbox, got %v / %v", img.At(100, 10), img.At(100, 190))
	}
	if !near(img.At(100, 100), testRed, 3) {
		t.Fatalf("expected scaled content, got %v", img.At(100, 100))
	}
}

func TestPostprocessDefaults(t *testing.T) {
	out, err := Postprocess(encodeSolidPNG(t, 40, 40, testRed), PostprocessOptions{})
	if err != nil {
		t.Fatalf("postprocess: %v", err)
	}
	img := decodeJPEG(t, out)
	if b := img.Bounds(); b.Dx() != CanvasSize || b.Dy() != CanvasSize {
		t.Fatalf("unexpected default size: %dx%d", b.Dx(), b.Dy())
	}
}

func TestPostprocessRejectsGarbage(t *testing.T) {
	_, err := Postprocess([]byte("definitely not an image"), PostprocessOptions{})
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodingError, got %v", err)
	}
}

func TestPostprocessRejectsHugeTarget(t *testing.T) {
	_, err := Postprocess(encodeSolidPNG(t, 4, 4, testRed), PostprocessOptions{Width: MaxDimension + 1})
	var encErr *EncodingError
	if !errors.As(err, &encErr) || encErr.Op != "resize" {
		t.Fatalf("expected resize EncodingError, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJPEG, "JPG": FormatJPEG, "jpeg": FormatJPEG, "png": FormatPNG} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("tiff"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
