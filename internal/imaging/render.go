package imaging

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// DefaultMaxPixels is the output ceiling used when Options.MaxPixels is zero.
const DefaultMaxPixels = 40_000_000

// SurfaceFunc acquires the drawing surface for one render call. It must
// return a zero-origin *image.RGBA64 covering r.
type SurfaceFunc func(r image.Rectangle) (*image.RGBA64, error)

// Options configures a Renderer.
type Options struct {
	// Interpolator resamples the source in the geometric stage.
	// Defaults to draw.CatmullRom.
	Interpolator draw.Interpolator

	// MaxPixels caps OutWidth*OutHeight. Larger requests fail with
	// ErrUnsupportedBufferSize before anything is allocated.
	MaxPixels int

	// NewSurface acquires the geometric stage surface. Defaults to image.NewRGBA64.
	NewSurface SurfaceFunc
}

// PreviewOptions returns options tuned for cheap interactive renders.
func PreviewOptions(maxPixels int) Options {
	return Options{Interpolator: draw.ApproxBiLinear, MaxPixels: maxPixels}
}

// FinalOptions returns options for the high quality export render.
func FinalOptions(maxPixels int) Options {
	return Options{Interpolator: draw.CatmullRom, MaxPixels: maxPixels}
}

// Renderer runs the edit pipeline. A Renderer holds no per-call state and is
// safe for concurrent use.
type Renderer struct {
	interp     draw.Interpolator
	maxPixels  int
	newSurface SurfaceFunc
}

// NewRenderer creates a Renderer, filling unset options with defaults.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		interp:     opts.Interpolator,
		maxPixels:  opts.MaxPixels,
		newSurface: opts.NewSurface,
	}
	if r.interp == nil {
		r.interp = draw.CatmullRom
	}
	if r.maxPixels <= 0 {
		r.maxPixels = DefaultMaxPixels
	}
	if r.newSurface == nil {
		r.newSurface = func(rect image.Rectangle) (*image.RGBA64, error) {
			return image.NewRGBA64(rect), nil
		}
	}
	return r
}

// MaxPixels returns the output ceiling of the renderer.
func (r *Renderer) MaxPixels() int {
	return r.maxPixels
}

// Render crops, transforms and filters source and returns a new buffer.
//
// The region is interpreted against the source's own size, which is what a
// displayed copy scaled uniformly to fit a viewport resolves to. Use
// RenderPlan when the displayed size must be given explicitly.
//
// Render never modifies source. For fixed inputs the output is identical
// across calls.
func (r *Renderer) Render(source *Buffer, region CropRegion, params EditParams, outputScale float64) (*Buffer, error) {
	if source.Empty() {
		return nil, fmt.Errorf("%w: empty source", ErrInvalidRegion)
	}
	natural := SizeOf(source.Bounds())
	if err := params.Validate(); err != nil {
		return nil, err
	}
	plan, err := PlanCrop(natural, natural, region, params.Rotation, params.Zoom, outputScale)
	if err != nil {
		return nil, err
	}
	return r.RenderPlan(source, plan, params)
}

// RenderPlan runs the pipeline for a precomputed crop plan. The plan's
// rotation and zoom take precedence over those in params.
func (r *Renderer) RenderPlan(source *Buffer, plan CropPlan, params EditParams) (*Buffer, error) {
	if source.Empty() {
		return nil, fmt.Errorf("%w: empty source", ErrInvalidRegion)
	}
	w, h := plan.OutWidth, plan.OutHeight
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: crop resolves to %dx%d pixels", ErrInvalidRegion, w, h)
	}
	if int64(w)*int64(h) > int64(r.maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupportedBufferSize, w, h, r.maxPixels)
	}

	surface, err := r.newSurface(image.Rect(0, 0, w, h))
	surface, err = checkSurface(surface, err, w, h)
	if err != nil {
		return nil, err
	}

	out := geometryStage(surface, source, plan, r.interp)
	toneStage(out, params)

	if params.Sharpen > 0 {
		out = Sharpen(out, params.Sharpen)
	}
	if params.Vignette > 0 {
		ApplyVignette(out, params.Vignette)
	}
	return out, nil
}
