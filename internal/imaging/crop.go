package imaging

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/math/f64"
)

// Size is a width and height in (possibly fractional) pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SizeOf returns the size of an integer rectangle.
func SizeOf(r image.Rectangle) Size {
	return Size{Width: float64(r.Dx()), Height: float64(r.Dy())}
}

// Rect is an axis-aligned rectangle in natural source-pixel coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CropPlan describes how a crop maps onto the source photo and the raster
// that must be produced for it.
//
// Clip is the crop window in unrotated natural coordinates. Rotation and zoom
// are applied about the natural image center as part of the draw transform,
// so Clip always selects a window of the rotated canvas rather than a rotated
// rectangle of the source.
type CropPlan struct {
	Natural  Size
	Clip     Rect
	Rotation float64
	Zoom     float64
	Scale    float64

	// OutWidth and OutHeight are the output raster dimensions.
	OutWidth  int
	OutHeight int
}

// PlanCrop maps a crop region given in displayed-image fractions onto the
// natural source coordinates.
//
// Parameters:
//   - natural: intrinsic pixel size of the source.
//   - displayed: size the source is shown at in the viewport.
//   - region: crop in fractions of the displayed size.
//   - rotation: degrees clockwise, applied about the natural center.
//   - zoom: scale factor applied about the natural center.
//   - outputScale: multiplier from crop pixels to output pixels.
//
// The output raster is round(clipWidth*outputScale) × round(clipHeight*outputScale).
// ErrInvalidRegion is returned when the region is malformed or either output
// dimension resolves to zero or less.
func PlanCrop(natural, displayed Size, region CropRegion, rotation, zoom, outputScale float64) (CropPlan, error) {
	if err := region.Validate(); err != nil {
		return CropPlan{}, err
	}
	if natural.Width <= 0 || natural.Height <= 0 {
		return CropPlan{}, fmt.Errorf("%w: empty source %vx%v", ErrInvalidRegion, natural.Width, natural.Height)
	}
	if displayed.Width <= 0 || displayed.Height <= 0 {
		return CropPlan{}, fmt.Errorf("%w: empty display %vx%v", ErrInvalidRegion, displayed.Width, displayed.Height)
	}
	if !(outputScale > 0) || math.IsInf(outputScale, 0) {
		return CropPlan{}, fmt.Errorf("%w: output scale %v", ErrInvalidRegion, outputScale)
	}

	scaleX := natural.Width / displayed.Width
	scaleY := natural.Height / displayed.Height

	clip := Rect{
		X:      region.X * displayed.Width * scaleX,
		Y:      region.Y * displayed.Height * scaleY,
		Width:  region.Width * displayed.Width * scaleX,
		Height: region.Height * displayed.Height * scaleY,
	}

	outW := math.Round(clip.Width * outputScale)
	outH := math.Round(clip.Height * outputScale)
	if outW <= 0 || outH <= 0 {
		return CropPlan{}, fmt.Errorf("%w: crop resolves to %vx%v pixels", ErrInvalidRegion, outW, outH)
	}
	if outW > math.MaxInt32 || outH > math.MaxInt32 {
		return CropPlan{}, fmt.Errorf("%w: crop resolves to %vx%v pixels", ErrUnsupportedBufferSize, outW, outH)
	}

	return CropPlan{
		Natural:   natural,
		Clip:      clip,
		Rotation:  rotation,
		Zoom:      zoom,
		Scale:     outputScale,
		OutWidth:  int(outW),
		OutHeight: int(outH),
	}, nil
}

// Transform returns the source-to-output affine matrix for the plan:
//
//	out = scale * (T(-clip) * T(center) * R(rotation) * S(zoom) * T(-center) * src)
func (p CropPlan) Transform() f64.Aff3 {
	sin, cos := sinCosDegrees(p.Rotation)
	z := p.Zoom
	s := p.Scale
	cx := p.Natural.Width / 2
	cy := p.Natural.Height / 2

	a := z * cos
	b := -z * sin
	d := z * sin
	e := z * cos

	return f64.Aff3{
		s * a, s * b, s * (cx - a*cx - b*cy - p.Clip.X),
		s * d, s * e, s * (cy - d*cx - e*cy - p.Clip.Y),
	}
}

// sinCosDegrees returns exact values for quarter turns so that 90° steps map
// pixel centers onto pixel centers.
func sinCosDegrees(deg float64) (sin, cos float64) {
	switch math.Mod(deg, 360) {
	case 0:
		return 0, 1
	case 90, -270:
		return 1, 0
	case 180, -180:
		return 0, -1
	case 270, -90:
		return -1, 0
	}
	return math.Sincos(deg * math.Pi / 180)
}
