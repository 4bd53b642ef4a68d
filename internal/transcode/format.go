package transcode

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
)

// Format is an output encoding.
type Format string

const (
	FormatWebP Format = "webp"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// ParseFormat accepts the names used in configuration.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "webp":
		return FormatWebP, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported target format %q", s)
}

// FormatForExtension maps a resolved URL extension to a format tag for
// payloads that are uploaded without re-encoding.
func FormatForExtension(ext string) Format {
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return Format(strings.TrimPrefix(strings.ToLower(ext), "."))
}

// Extension returns the file extension used in object keys.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case "":
		return ""
	}
	return "." + string(f)
}

// ContentType returns the MIME type for uploads.
func (f Format) ContentType() string {
	switch f {
	case FormatWebP:
		return "image/webp"
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case "gif":
		return "image/gif"
	}
	return "application/octet-stream"
}

func encode(img image.Image, f Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatWebP:
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)})
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	default:
		err = fmt.Errorf("unsupported target format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
