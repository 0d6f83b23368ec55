package imaging

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// Slider ranges offered by the editor. Normalize clamps into these.
const (
	MaxZoom  = 3.0
	MaxTone  = 200.0
	MaxBlend = 100.0
)

// regionEpsilon absorbs float noise in fractions computed by UI code.
const regionEpsilon = 1e-9

// CropRegion is a crop rectangle expressed as fractions of the displayed
// image size. Every field lies in [0,1], X+Width <= 1 and Y+Height <= 1.
type CropRegion struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FullFrame returns the region covering the whole image.
func FullFrame() CropRegion {
	return CropRegion{X: 0, Y: 0, Width: 1, Height: 1}
}

// Validate reports ErrInvalidRegion if the region lies outside the unit square
// or has no area.
func (r CropRegion) Validate() error {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || v < -regionEpsilon || v > 1+regionEpsilon {
			return fmt.Errorf("%w: fraction %v outside [0,1]", ErrInvalidRegion, v)
		}
	}
	if r.X+r.Width > 1+regionEpsilon || r.Y+r.Height > 1+regionEpsilon {
		return fmt.Errorf("%w: region (%v,%v %vx%v) extends past the frame",
			ErrInvalidRegion, r.X, r.Y, r.Width, r.Height)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: zero-area region", ErrInvalidRegion)
	}
	return nil
}

// DefaultCropRegion returns the crop the editor starts with: centered, 90% of
// the displayed width and constrained to aspect (width/height). When the
// aspect-derived height does not fit, both sides shrink until the height is
// 90% of the frame instead.
func DefaultCropRegion(displayedWidth, displayedHeight, aspect float64) CropRegion {
	if displayedWidth <= 0 || displayedHeight <= 0 || aspect <= 0 {
		return FullFrame()
	}
	const coverage = 0.9

	w := coverage
	h := w * displayedWidth / aspect / displayedHeight
	if h > coverage {
		h = coverage
		w = h * displayedHeight * aspect / displayedWidth
	}
	return CropRegion{
		X:      (1 - w) / 2,
		Y:      (1 - h) / 2,
		Width:  w,
		Height: h,
	}
}

// EditParams holds the slider values of an editing session.
type EditParams struct {
	// Rotation in degrees, clockwise, in [0,360).
	Rotation float64 `json:"rotation"`
	// Zoom factor, >= 1.
	Zoom float64 `json:"zoom"`
	// Brightness in percent; 100 is neutral.
	Brightness float64 `json:"brightness"`
	// Contrast in percent; 100 is neutral.
	Contrast float64 `json:"contrast"`
	// Sharpen amount in percent, [0,100].
	Sharpen float64 `json:"sharpen"`
	// Vignette strength in percent, [0,100].
	Vignette float64 `json:"vignette"`
}

// DefaultParams returns the neutral parameter set. Rendering with it and a
// full-frame crop reproduces the source.
func DefaultParams() EditParams {
	return EditParams{
		Rotation:   0,
		Zoom:       1,
		Brightness: 100,
		Contrast:   100,
		Sharpen:    0,
		Vignette:   0,
	}
}

// Validate reports ErrInvalidParams for values outside their domain.
func (p EditParams) Validate() error {
	switch {
	case math.IsNaN(p.Rotation) || math.IsInf(p.Rotation, 0) || p.Rotation < 0 || p.Rotation >= 360:
		return fmt.Errorf("%w: rotation %v outside [0,360)", ErrInvalidParams, p.Rotation)
	case math.IsNaN(p.Zoom) || math.IsInf(p.Zoom, 0) || p.Zoom < 1:
		return fmt.Errorf("%w: zoom %v below 1", ErrInvalidParams, p.Zoom)
	case math.IsNaN(p.Brightness) || math.IsInf(p.Brightness, 0) || p.Brightness < 0:
		return fmt.Errorf("%w: brightness %v is negative", ErrInvalidParams, p.Brightness)
	case math.IsNaN(p.Contrast) || math.IsInf(p.Contrast, 0) || p.Contrast < 0:
		return fmt.Errorf("%w: contrast %v is negative", ErrInvalidParams, p.Contrast)
	case math.IsNaN(p.Sharpen) || p.Sharpen < 0 || p.Sharpen > MaxBlend:
		return fmt.Errorf("%w: sharpen %v outside [0,100]", ErrInvalidParams, p.Sharpen)
	case math.IsNaN(p.Vignette) || p.Vignette < 0 || p.Vignette > MaxBlend:
		return fmt.Errorf("%w: vignette %v outside [0,100]", ErrInvalidParams, p.Vignette)
	}
	return nil
}

// Normalize maps arbitrary slider input into the editor ranges: rotation is
// wrapped into [0,360), zoom clamped to [1,MaxZoom], brightness and contrast
// to [0,MaxTone], sharpen and vignette to [0,MaxBlend]. NaN becomes the
// neutral value.
func (p EditParams) Normalize() EditParams {
	def := DefaultParams()
	orDefault := func(v, d float64) float64 {
		if math.IsNaN(v) {
			return d
		}
		return v
	}

	rot := math.Mod(orDefault(p.Rotation, def.Rotation), 360)
	if math.IsInf(p.Rotation, 0) {
		rot = def.Rotation
	}
	if rot < 0 {
		rot += 360
	}
	if rot >= 360 {
		rot = 0
	}

	return EditParams{
		Rotation:   rot,
		Zoom:       lo.Clamp(orDefault(p.Zoom, def.Zoom), 1, MaxZoom),
		Brightness: lo.Clamp(orDefault(p.Brightness, def.Brightness), 0, MaxTone),
		Contrast:   lo.Clamp(orDefault(p.Contrast, def.Contrast), 0, MaxTone),
		Sharpen:    lo.Clamp(orDefault(p.Sharpen, def.Sharpen), 0, MaxBlend),
		Vignette:   lo.Clamp(orDefault(p.Vignette, def.Vignette), 0, MaxBlend),
	}
}

// neutralTone reports whether the tone stage is an identity.
func (p EditParams) neutralTone() bool {
	return p.Brightness == 100 && p.Contrast == 100
}
