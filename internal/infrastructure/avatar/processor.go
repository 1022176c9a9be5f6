// Package avatar turns uploaded profile pictures into small lossless WEBP
// data URLs.
package avatar

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	Size        = 100
	MaxInput    = 5 << 20
	MaxSide     = 8192
	dataURLHead = "data:image/webp;base64,"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image too large")
	ErrDecode            = errors.New("image could not be decoded")
)

var accepted = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

type Processor struct {
	size     int
	maxInput int64
	maxSide  int
}

func New() *Processor { return &Processor{size: Size, maxInput: MaxInput, maxSide: MaxSide} }

// Process validates, cover-crops and re-encodes r. PDF and SVG uploads are
// rejected before decoding, and so is anything wider or taller than MaxSide
// pixels, since a small compressed file can still decode to gigabytes.
func (p *Processor) Process(r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, p.maxInput+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(raw)) > p.maxInput {
		return "", ErrTooLarge
	}

	mt := mimetype.Detect(raw)
	if !mimetype.EqualsAny(mt.String(), accepted...) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width > p.maxSide || cfg.Height > p.maxSide {
		return "", fmt.Errorf("%w: %dx%d pixels", ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var buf bytes.Buffer
	if err = nativewebp.Encode(&buf, coverCrop(src, p.size), nil); err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}

	return dataURLHead + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// coverCrop takes the centred square of src and scales it to size x size.
func coverCrop(src image.Image, size int) *image.NRGBA {
	b := src.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}
