package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	imgproc "github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-imagery/internal/catalog"
)

const (
	// DefaultQuality is the output quality when a request leaves it unset.
	DefaultQuality = 90
	// canvasQuality is the quality of the intermediate canvas encoding.
	canvasQuality = 90

	filenamePrefix = "accurate"
)

// Request describes one placeholder to synthesize. ProductName is carried
// into the artifact metadata and logs; it does not influence the pixels.
type Request struct {
	ProductName string
	Category    string
	Width       int
	Height      int
	Quality     int
	Format      Format
	// Seed makes the random passes reproducible when non-zero.
	Seed int64
}

// Artifact is an encoded placeholder image. The caller owns it.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
	ProductName string
	Category    string
	// Template is the category whose rasterizer actually ran.
	Template string
	Color    string
	Seed     int64
	// Postprocessed is false when normalization failed and Data holds the
	// raw canvas encoding.
	Postprocessed bool
}

// Synthesizer renders placeholder product images. It holds no per-call
// state and is safe for concurrent use.
type Synthesizer struct {
	logger      *zap.Logger
	newRand     func(seed int64) catalog.Rand
	newSeed     func() int64
	newID       func() string
	postprocess func([]byte, PostprocessOptions) ([]byte, error)
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Synthesizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRandSource replaces the per-call random source constructor. The
// function is called once per Synthesize with the effective seed.
func WithRandSource(fn func(seed int64) catalog.Rand) Option {
	return func(s *Synthesizer) { s.newRand = fn }
}

// WithIDGenerator replaces the unique part of generated filenames.
func WithIDGenerator(fn func() string) Option {
	return func(s *Synthesizer) { s.newID = fn }
}

// WithPostprocessor replaces the resize/encode step.
func WithPostprocessor(fn func([]byte, PostprocessOptions) ([]byte, error)) Option {
	return func(s *Synthesizer) { s.postprocess = fn }
}

// New returns a Synthesizer with math/rand sources, uuid filenames and the
// build's Postprocess backend.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		logger: zap.NewNop(),
		newRand: func(seed int64) catalog.Rand {
			return rand.New(rand.NewSource(seed))
		},
		newSeed:     func() int64 { return time.Now().UnixNano() },
		newID:       uuid.NewString,
		postprocess: Postprocess,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize renders req.Category onto an 800×800 canvas and normalizes it to
// the requested size. Unknown categories render with the default template.
// Rendering and canvas encoding failures are returned as *SynthesisError; a
// post-processing failure is logged and the raw canvas encoding is returned.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	tmpl, known := catalog.Lookup(req.Category)
	label := req.Category
	if label == "" {
		label = tmpl.Category.String()
	}
	if !known {
		s.logger.Debug("unknown category, using default template",
			zap.String("category", req.Category),
			zap.Stringer("template", tmpl.Category))
	}

	seed := req.Seed
	if seed == 0 {
		seed = s.newSeed()
	}
	rng := s.newRand(seed)

	canvas, primary, err := render(tmpl.Category, tmpl, rng)
	if err != nil {
		return nil, &SynthesisError{Category: label, Op: "render", Err: err}
	}

	var raw bytes.Buffer
	if err := imgproc.Encode(&raw, canvas.Image(), imgproc.JPEG, imgproc.JPEGQuality(canvasQuality)); err != nil {
		return nil, &SynthesisError{Category: label, Op: "encode", Err: err}
	}

	opts := PostprocessOptions{
		Width:   req.Width,
		Height:  req.Height,
		Quality: req.Quality,
		Format:  req.Format,
	}.withDefaults()

	artifact := &Artifact{
		ProductName: req.ProductName,
		Category:    label,
		Template:    tmpl.Category.String(),
		Color:       primary.Name,
		Seed:        seed,
	}

	data, err := s.postprocess(raw.Bytes(), opts)
	if err != nil {
		var encErr *EncodingError
		if !errors.As(err, &encErr) {
			err = &EncodingError{Op: "postprocess", Err: err}
		}
		s.logger.Warn("postprocess failed, returning canvas encoding",
			zap.String("product", trimText(req.ProductName, 48)),
			zap.String("category", label),
			zap.Error(err))
		artifact.Data = raw.Bytes()
		artifact.Width, artifact.Height = CanvasSize, CanvasSize
		opts.Format = FormatJPEG
	} else {
		artifact.Data = data
		artifact.Width, artifact.Height = opts.Width, opts.Height
		artifact.Postprocessed = true
	}

	artifact.ContentType = opts.Format.ContentType()
	artifact.Filename = fmt.Sprintf("%s-%s-%s.%s", filenamePrefix, catalog.Slug(label), s.newID(), opts.Format.Ext())

	s.logger.Debug("synthesized placeholder",
		zap.String("product", trimText(req.ProductName, 48)),
		zap.String("category", label),
		zap.String("color", primary.Name),
		zap.String("file", artifact.Filename),
		zap.Int("bytes", len(artifact.Data)))
	return artifact, nil
}

func validate(req Request) error {
	if req.Width < 0 || req.Height < 0 || req.Width > MaxDimension || req.Height > MaxDimension {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidRequest, req.Width, req.Height)
	}
	if req.Quality < 0 || req.Quality > 100 {
		return fmt.Errorf("%w: quality %d", ErrInvalidRequest, req.Quality)
	}
	if req.Format != "" && req.Format != FormatJPEG && req.Format != FormatPNG {
		return fmt.Errorf("%w: format %q", ErrInvalidRequest, req.Format)
	}
	return nil
}
