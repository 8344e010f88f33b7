//go:build imagick

package imaging

import (
	"bytes"

	"github.com/gographics/imagick/imagick"
)

func postprocess(data []byte, opts PostprocessOptions) ([]byte, error) {
	imagick.Initialize()
	defer imagick.Terminate()

	mw := imagick.NewMagickWand()
	defer mw.Destroy()

	if err := mw.ReadImageBlob(data); err != nil {
		return nil, &EncodingError{Op: "decode", Err: err}
	}

	fit := containRect(int(mw.GetImageWidth()), int(mw.GetImageHeight()), opts.Width, opts.Height)
	if err := mw.ThumbnailImage(uint(fit.Dx()), uint(fit.Dy())); err != nil {
		return nil, &EncodingError{Op: "resize", Err: err}
	}

	bg := imagick.NewPixelWand()
	defer bg.Destroy()
	bg.SetColor("#ffffff")
	if err := mw.SetImageBackgroundColor(bg); err != nil {
		return nil, &EncodingError{Op: "pad", Err: err}
	}
	if err := mw.ExtentImage(uint(opts.Width), uint(opts.Height), -fit.Min.X, -fit.Min.Y); err != nil {
		return nil, &EncodingError{Op: "pad", Err: err}
	}

	if err := mw.SetImageFormat(string(opts.Format)); err != nil {
		return nil, &EncodingError{Op: "encode", Err: err}
	}
	if err := mw.SetImageCompressionQuality(uint(opts.Quality)); err != nil {
		return nil, &EncodingError{Op: "encode", Err: err}
	}

	blob := mw.GetImageBlob()
	return bytes.Clone(blob), nil
}
