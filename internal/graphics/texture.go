package graphics

import (
	"fmt"

	"maccis/internal/assets"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Texture is a GPU RGBA8 2D texture bound to a fixed texture unit. Bitmap
// is the CPU copy; it is nil when the pixels were released after upload.
type Texture struct {
	gl     GL
	ID     uint32
	Slot   uint32
	Width  int
	Height int
	Bitmap *assets.Bitmap
}

// CreateTexture reads and decodes the image at path and uploads it. The
// file bytes and the decoded pixels are released once on the GPU.
func CreateTexture(gl GL, r assets.FileReader, dec assets.Decoder, path string, slot uint32) (*Texture, error) {
	data, err := r.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file: %w", err)
	}
	bm, err := dec.Decode(data)
	r.FreeFile(data)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}

	tex, err := upload(gl, bm, slot)
	if err != nil {
		return nil, err
	}
	bm.Free()
	tex.Bitmap = nil
	return tex, nil
}

// BuildTextureFromBitmap uploads a bitmap owned by a longer-lived asset,
// such as a font glyph. The bitmap is referenced, never freed.
func BuildTextureFromBitmap(gl GL, bm *assets.Bitmap, slot uint32) (*Texture, error) {
	return upload(gl, bm, slot)
}

func upload(gl GL, bm *assets.Bitmap, slot uint32) (*Texture, error) {
	if bm == nil || len(bm.Pixels) < bm.Width*bm.Height*4 || bm.Width == 0 || bm.Height == 0 {
		return nil, assets.ErrEmptyBitmap
	}
	t := &Texture{gl: gl, Slot: slot, Width: bm.Width, Height: bm.Height, Bitmap: bm}
	if t.ID = gl.GenTexture(); t.ID == 0 {
		return nil, fmt.Errorf("%w: texture", ErrResourceCreate)
	}
	gl.BindTexture(Texture2D, t.ID)
	gl.TexParameteri(Texture2D, TextureMinFilter, Linear)
	gl.TexParameteri(Texture2D, TextureMagFilter, Linear)
	gl.TexParameteri(Texture2D, TextureWrapS, ClampToEdge)
	gl.TexParameteri(Texture2D, TextureWrapT, ClampToEdge)
	gl.TexImage2D(Texture2D, 0, RGBA8, int32(bm.Width), int32(bm.Height), RGBA, UnsignedByte, bm.Pixels)
	gl.BindTexture(Texture2D, 0)
	return t, nil
}

// Bind activates the texture's unit and binds it there.
func (t *Texture) Bind() {
	t.gl.ActiveTexture(Texture0 + t.Slot)
	t.gl.BindTexture(Texture2D, t.ID)
}

func (t *Texture) Unbind() {
	t.gl.ActiveTexture(Texture0 + t.Slot)
	t.gl.BindTexture(Texture2D, 0)
}

// Delete releases the GPU texture. A borrowed bitmap is left untouched.
func (t *Texture) Delete() {
	if t.ID != 0 {
		t.gl.DeleteTexture(t.ID)
		t.ID = 0
	}
}

// TextureCache memoises CreateTexture by path. Least recently used entries
// beyond the size limit are evicted and their GPU textures deleted.
//
// The cache owns every texture it returns. A caller holding a *Texture past
// its eviction is left with ID 0, which binds nothing, so size the cache to
// cover every texture in use at once. Evictions outside Purge log a warning.
type TextureCache struct {
	gl      GL
	r       assets.FileReader
	dec     assets.Decoder
	lg      *log.Logger
	cache   *lru.Cache[string, *Texture]
	purging bool
}

func NewTextureCache(gl GL, r assets.FileReader, dec assets.Decoder, size int, lg *log.Logger) (*TextureCache, error) {
	if lg == nil {
		lg = log.Default()
	}
	tc := &TextureCache{gl: gl, r: r, dec: dec, lg: lg}
	c, err := lru.NewWithEvict(size, func(path string, t *Texture) {
		if tc.purging {
			tc.lg.Debug("deleting texture", "path", path, "id", t.ID)
		} else {
			tc.lg.Warn("evicting texture, holders now bind nothing", "path", path, "id", t.ID, "size", size)
		}
		t.Delete()
	})
	if err != nil {
		return nil, err
	}
	tc.cache = c
	return tc, nil
}

// Get returns the cached texture for path, loading it into slot on a miss.
// A hit keeps the slot the texture was first created with.
func (tc *TextureCache) Get(path string, slot uint32) (*Texture, error) {
	if t, ok := tc.cache.Get(path); ok {
		return t, nil
	}
	t, err := CreateTexture(tc.gl, tc.r, tc.dec, path, slot)
	if err != nil {
		return nil, err
	}
	tc.lg.Info("loaded texture", "path", path, "id", t.ID, "width", t.Width, "height", t.Height)
	tc.cache.Add(path, t)
	return t, nil
}

func (tc *TextureCache) Len() int { return tc.cache.Len() }

// Purge deletes every cached texture.
func (tc *TextureCache) Purge() {
	tc.purging = true
	tc.cache.Purge()
	tc.purging = false
}
