package imaging

import (
	"fmt"
	"strings"
)

// Format is the encoding of an artifact.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// ParseFormat accepts "jpeg", "jpg", "png" in any case; empty means JPEG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", ErrInvalidRequest, s)
	}
}

// Ext is the filename extension without the dot.
func (f Format) Ext() string {
	if f == FormatPNG {
		return "png"
	}
	return "jpg"
}

func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/jpeg"
}

// PostprocessOptions describe the normalized output.
type PostprocessOptions struct {
	Width   int
	Height  int
	Quality int
	Format  Format
}

func (o PostprocessOptions) withDefaults() PostprocessOptions {
	if o.Width <= 0 {
		o.Width = CanvasSize
	}
	if o.Height <= 0 {
		o.Height = CanvasSize
	}
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	if o.Format == "" {
		o.Format = FormatJPEG
	}
	return o
}

// Postprocess decodes data, fits it inside Width×Height keeping the aspect
// ratio, pads the remainder with white and re-encodes it. Failures are
// returned as *EncodingError.
func Postprocess(data []byte, opts PostprocessOptions) ([]byte, error) {
	opts = opts.withDefaults()
	if opts.Width > MaxDimension || opts.Height > MaxDimension {
		return nil, &EncodingError{Op: "resize", Err: fmt.Errorf("target %dx%d exceeds %d", opts.Width, opts.Height, MaxDimension)}
	}
	return postprocess(data, opts)
}
