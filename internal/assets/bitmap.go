package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// Bitmap is a decoded RGBA8 image. Rows are stored bottom-to-top so that
// texture coordinate v=0 addresses the bottom row, matching the UV winding
// of sprite quads.
type Bitmap struct {
	Width  int
	Height int
	Pixels []byte
}

// Free drops the pixel buffer. Width and Height stay valid.
func (b *Bitmap) Free() {
	b.Pixels = nil
}

// Decoder turns raw file bytes into a bitmap.
type Decoder interface {
	Decode(data []byte) (*Bitmap, error)
}

// ImageDecoder decodes any registered image format (BMP and PNG are
// registered by this package).
type ImageDecoder struct {
	// TopDown keeps the source row order instead of flipping to bottom-to-top.
	TopDown bool
}

func (d ImageDecoder) Decode(data []byte) (*Bitmap, error) {
	rgba, err := decodeRGBA(data)
	if err != nil {
		return nil, err
	}
	size := rgba.Rect.Size()
	if size.X == 0 || size.Y == 0 {
		return nil, ErrEmptyBitmap
	}
	bm := &Bitmap{Width: size.X, Height: size.Y, Pixels: rgba.Pix}
	if !d.TopDown {
		flipRows(bm.Pixels, bm.Width*4, bm.Height)
	}
	return bm, nil
}

func decodeRGBA(data []byte) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}

func flipRows(pix []byte, stride, rows int) {
	tmp := make([]byte, stride)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
