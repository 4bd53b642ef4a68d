// Package transcode re-encodes source images into a bounded-size payload.
package transcode

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/maraichr/imagesync/pkg/outcome"
)

const (
	DefaultMaxBytes      = 1 << 20
	DefaultQuality       = 85
	DefaultMaxIterations = 16
)

// Options configures a Transcoder. Zero values take the defaults.
type Options struct {
	MaxBytes      int64
	Format        Format
	Quality       int
	MaxIterations int
}

// Payload is an encoded image ready for upload. It is never retained past
// the record that produced it.
type Payload struct {
	Data       []byte
	Format     Format
	Width      int
	Height     int
	Iterations int
}

// Len returns the encoded size in bytes.
func (p *Payload) Len() int { return len(p.Data) }

// Transcoder decodes, re-encodes and downsamples images until the encoded
// size is at or under MaxBytes.
type Transcoder struct {
	opts Options
}

func New(opts Options) *Transcoder {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Format == "" {
		opts.Format = FormatWebP
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultQuality
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	return &Transcoder{opts: opts}
}

// Format returns the output format.
func (t *Transcoder) Format() Format { return t.opts.Format }

// Transcode encodes data at the configured format and quality, halving both
// dimensions (integer floor, Lanczos resampling) while the output exceeds
// the ceiling. It never returns a payload larger than the ceiling.
func (t *Transcoder) Transcode(data []byte) (*Payload, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, outcome.DecodeFailed(err)
	}

	out, err := encode(img, t.opts.Format, t.opts.Quality)
	if err != nil {
		return nil, outcome.EncodeFailed(err)
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	iterations := 0

	for int64(len(out)) > t.opts.MaxBytes {
		if iterations >= t.opts.MaxIterations {
			return nil, outcome.SizeUnsatisfiable(width, height, len(out), t.opts.MaxBytes)
		}
		width, height = width/2, height/2
		if width == 0 || height == 0 {
			return nil, outcome.SizeUnsatisfiable(width, height, len(out), t.opts.MaxBytes)
		}
		iterations++

		resized := imaging.Resize(img, width, height, imaging.Lanczos)
		out, err = encode(resized, t.opts.Format, t.opts.Quality)
		if err != nil {
			return nil, outcome.EncodeFailed(err)
		}
	}

	return &Payload{
		Data:       out,
		Format:     t.opts.Format,
		Width:      width,
		Height:     height,
		Iterations: iterations,
	}, nil
}

// Passthrough wraps raw bytes without decoding, tagged with the format
// implied by ext. Bytes over the ceiling are rejected.
func (t *Transcoder) Passthrough(data []byte, ext string) (*Payload, error) {
	if int64(len(data)) > t.opts.MaxBytes {
		return nil, outcome.PayloadTooLarge(len(data), t.opts.MaxBytes)
	}
	return &Payload{Data: data, Format: FormatForExtension(ext)}, nil
}
