package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

// twoRows is a 3x2 image with a red top row and a blue bottom row.
func twoRows() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for x := 0; x < 3; x++ {
		img.Set(x, 0, red)
		img.Set(x, 1, blue)
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func pixel(bm *Bitmap, x, y int) color.RGBA {
	i := (y*bm.Width + x) * 4
	p := bm.Pixels[i : i+4]
	return color.RGBA{p[0], p[1], p[2], p[3]}
}

func TestDecodeFlipsRows(t *testing.T) {
	bm, err := ImageDecoder{}.Decode(encodePNG(t, twoRows()))
	if err != nil {
		t.Fatal(err)
	}
	if bm.Width != 3 || bm.Height != 2 || len(bm.Pixels) != 3*2*4 {
		t.Fatalf("bitmap %dx%d with %d bytes", bm.Width, bm.Height, len(bm.Pixels))
	}
	if pixel(bm, 0, 0) != blue || pixel(bm, 2, 1) != red {
		t.Errorf("rows not bottom-to-top: first %v last %v", pixel(bm, 0, 0), pixel(bm, 2, 1))
	}
}

func TestDecodeTopDown(t *testing.T) {
	bm, err := ImageDecoder{TopDown: true}.Decode(encodePNG(t, twoRows()))
	if err != nil {
		t.Fatal(err)
	}
	if pixel(bm, 0, 0) != red {
		t.Errorf("first pixel = %v, want red", pixel(bm, 0, 0))
	}
}

func TestDecodeBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, twoRows()); err != nil {
		t.Fatal(err)
	}
	bm, err := ImageDecoder{}.Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if bm.Width != 3 || pixel(bm, 1, 0) != blue || pixel(bm, 1, 1) != red {
		t.Errorf("bmp decoded to %dx%d %v/%v", bm.Width, bm.Height, pixel(bm, 1, 0), pixel(bm, 1, 1))
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := (ImageDecoder{}).Decode([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestBitmapFree(t *testing.T) {
	bm := &Bitmap{Width: 2, Height: 2, Pixels: make([]byte, 16)}
	bm.Free()
	if bm.Pixels != nil || bm.Width != 2 {
		t.Errorf("after free: %+v", bm)
	}
}

func TestFlipRowsOdd(t *testing.T) {
	pix := []byte{1, 2, 3}
	flipRows(pix, 1, 3)
	if !bytes.Equal(pix, []byte{3, 2, 1}) {
		t.Errorf("flip = %v", pix)
	}
}
