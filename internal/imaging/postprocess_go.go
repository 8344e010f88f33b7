//go:build !imagick

package imaging

import (
	"bytes"
	"image"
	"image/color"

	imgproc "github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	// extra source formats accepted by Postprocess
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

func postprocess(data []byte, opts PostprocessOptions) ([]byte, error) {
	src, err := imgproc.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &EncodingError{Op: "decode", Err: err}
	}

	b := src.Bounds()
	fit := containRect(b.Dx(), b.Dy(), opts.Width, opts.Height)
	scaled := imgproc.Resize(src, fit.Dx(), fit.Dy(), imgproc.Lanczos)

	dst := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, fit, scaled, image.Point{}, draw.Over)

	var buf bytes.Buffer
	if err := imgproc.Encode(&buf, dst, opts.Format.imagingFormat(), imgproc.JPEGQuality(opts.Quality)); err != nil {
		return nil, &EncodingError{Op: "encode", Err: err}
	}
	return buf.Bytes(), nil
}

func (f Format) imagingFormat() imgproc.Format {
	if f == FormatPNG {
		return imgproc.PNG
	}
	return imgproc.JPEG
}
