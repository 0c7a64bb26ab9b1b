package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"path/filepath"

	"github.com/fzipp/bmfont"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Printable ASCII range covered by a Font.
const (
	FirstGlyph = 32
	LastGlyph  = 126
	GlyphCount = LastGlyph - FirstGlyph + 1
)

// Font is a list of glyph bitmaps, one per printable ASCII character.
// The font owns every glyph's pixels (they live in its arena); textures
// built from a glyph borrow them and must not outlive the font.
type Font struct {
	arena  *Arena
	glyphs []Bitmap
}

// Glyph returns the bitmap for ch. Characters below or outside the covered
// range map to the first glyph (space).
func (f *Font) Glyph(ch rune) Bitmap {
	index := int(ch) - FirstGlyph
	if index > 0 && index < len(f.glyphs) {
		return f.glyphs[index]
	}
	return f.glyphs[0]
}

func (f *Font) Len() int { return len(f.glyphs) }

// newGlyph carves a w*h RGBA glyph out of the arena. Empty glyphs get a
// single transparent pixel so every glyph can back a texture.
func (f *Font) newGlyph(w, h int) (*image.RGBA, error) {
	w, h = max(w, 1), max(h, 1)
	pix, _, err := f.arena.Alloc(w * h * 4)
	if err != nil {
		return nil, err
	}
	return &image.RGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, nil
}

func (f *Font) appendGlyph(img *image.RGBA) {
	size := img.Rect.Size()
	flipRows(img.Pix, img.Stride, size.Y)
	f.glyphs = append(f.glyphs, Bitmap{Width: size.X, Height: size.Y, Pixels: img.Pix})
}

// LoadTrueTypeFont rasterises the printable ASCII range of a TrueType or
// OpenType font at the given pixel size. A nil ttf selects Go Regular.
func LoadTrueTypeFont(ttf []byte, pixels float64, arena *Arena) (*Font, error) {
	if ttf == nil {
		ttf = goregular.TTF
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: pixels, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	defer func() { _ = face.Close() }()

	ascent := face.Metrics().Ascent
	out := &Font{arena: arena, glyphs: make([]Bitmap, 0, GlyphCount)}
	for r := rune(FirstGlyph); r <= LastGlyph; r++ {
		dr, mask, maskp, _, ok := face.Glyph(fixed.Point26_6{Y: ascent}, r)
		if !ok || mask == nil {
			dr = image.Rectangle{}
		}
		img, err := out.newGlyph(dr.Dx(), dr.Dy())
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", r, err)
		}
		if !dr.Empty() {
			draw.DrawMask(img, img.Rect, image.White, image.Point{}, mask, maskp, draw.Src)
		}
		out.appendGlyph(img)
	}
	return out, nil
}

// LoadBitmapFont builds glyphs from an AngelCode BMFont descriptor and its
// page images. The descriptor and page files, resolved relative to the
// descriptor, are all read through r.
func LoadBitmapFont(path string, r FileReader, arena *Arena) (*Font, error) {
	data, err := r.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	bf, err := bmfont.Read(bytes.NewReader(data), func(name string) (io.ReadCloser, error) {
		page, err := r.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		return &pageReader{Reader: bytes.NewReader(page), r: r, data: page}, nil
	})
	r.FreeFile(data)
	if err != nil {
		return nil, fmt.Errorf("load bitmap font %s: %w", path, err)
	}

	out := &Font{arena: arena, glyphs: make([]Bitmap, 0, GlyphCount)}
	for ch := rune(FirstGlyph); ch <= LastGlyph; ch++ {
		c, ok := bf.Descriptor.Chars[ch]
		page := bf.PageSheets[c.Page]
		if !ok || page == nil {
			c = bmfont.Char{}
		}
		img, err := out.newGlyph(c.Width, c.Height)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", ch, err)
		}
		if c.Width > 0 && c.Height > 0 {
			draw.Draw(img, img.Rect, page, c.Pos(), draw.Src)
		}
		out.appendGlyph(img)
	}
	return out, nil
}

// pageReader hands a page file back to its FileReader once bmfont has
// decoded it.
type pageReader struct {
	*bytes.Reader
	r    FileReader
	data []byte
}

func (p *pageReader) Close() error {
	p.r.FreeFile(p.data)
	return nil
}
