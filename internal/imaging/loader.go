package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Photo is a decoded source photo together with facts about the file it came from.
type Photo struct {
	// Buffer holds the decoded pixels. It is shared by every caller of
	// ImageCache.Load and must be treated as read-only.
	Buffer *Buffer

	// Format is the decoder name reported by image.Decode ("png", "jpeg", ...).
	Format string

	// ColorDepth is "8-bit" or "16-bit" for the decoded color model.
	ColorDepth string

	// HasAlpha reports whether the decoded color model carries alpha.
	HasAlpha bool
}

// Decode reads an image from r and converts it into a Photo.
func Decode(r io.Reader) (*Photo, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	case *image.Paletted:
		hasAlpha = true
	}

	return &Photo{
		Buffer:     FromImage(img),
		Format:     format,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
	}, nil
}

// ImageCache provides thread-safe caching of decoded photos to avoid
// redundant disk reads and conversions.
//
// Photos are keyed by the exact path string passed to Load. Cached buffers are
// shared; the renderer only reads them.
//
// # Memory Management
//
// Cached photos remain in memory until explicitly removed via Evict() or Clear().
type ImageCache struct {
	mu     sync.RWMutex
	photos map[string]*Photo
}

// NewImageCache creates and initializes a new empty photo cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		photos: make(map[string]*Photo),
	}
}

// Load retrieves a photo from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, GIF and WebP.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a supported image
func (c *ImageCache) Load(path string) (*Photo, error) {
	c.mu.RLock()
	if p, ok := c.photos[path]; ok {
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if cached, ok := c.photos[path]; ok {
		p = cached
	} else {
		c.photos[path] = p
	}
	c.mu.Unlock()

	return p, nil
}

// Clear removes all photos from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.photos = make(map[string]*Photo)
	c.mu.Unlock()
}

// Evict removes a specific photo from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.photos, path)
	c.mu.Unlock()
}

// FitSize returns the size natural is displayed at when scaled uniformly to
// fit inside viewport without upscaling. A zero viewport means no constraint.
func FitSize(natural, viewport Size) Size {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		return natural
	}
	scale := min(viewport.Width/natural.Width, viewport.Height/natural.Height, 1)
	return Size{Width: natural.Width * scale, Height: natural.Height * scale}
}

// PhotoInfo contains metadata about a loaded photo and how it is displayed.
type PhotoInfo struct {
	// Width and Height are the natural pixel dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Displayed is the size the photo occupies in the editor viewport.
	Displayed Size `json:"displayed"`

	Format        string `json:"format"`
	ColorDepth    string `json:"color_depth"`
	HasAlpha      bool   `json:"has_alpha"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// LoadPhotoInfo loads a photo through the cache and describes it.
//
// Parameters:
//   - cache: The cache to load through. Must not be nil.
//   - path: Path to the image file.
//   - viewport: Editor viewport used to compute the displayed size.
func LoadPhotoInfo(cache *ImageCache, path string, viewport Size) (*PhotoInfo, error) {
	p, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &PhotoInfo{
		Width:         p.Buffer.Width,
		Height:        p.Buffer.Height,
		Displayed:     FitSize(SizeOf(p.Buffer.Bounds()), viewport),
		Format:        p.Format,
		ColorDepth:    p.ColorDepth,
		HasAlpha:      p.HasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DisplayCopy returns the photo resampled to fit inside viewport, the image
// the editor shows under the crop handles. Photos already smaller than the
// viewport are copied unchanged.
func DisplayCopy(p *Photo, viewport Size) *Buffer {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		return p.Buffer.Clone()
	}
	fitted := imaging.Fit(p.Buffer.NRGBA(), int(viewport.Width), int(viewport.Height), imaging.Lanczos)
	return FromImage(fitted)
}
