package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/parallel"
	"github.com/samber/lo"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// sharpenKernel is the 3x3 Laplacian sharpen kernel:
//
//	 0 -1  0
//	-1  5 -1
//	 0 -1  0
var sharpenKernel = &convolution.Kernel{
	Matrix: []float64{
		0, -1, 0,
		-1, 5, -1,
		0, -1, 0,
	},
	Width:  3,
	Height: 3,
}

// toneMidpoint is the mid-gray level contrast scales around.
const toneMidpoint = 128.0

// geometryStage runs the geometric stage and returns its output as a
// non-premultiplied buffer of plan.OutWidth × plan.OutHeight. Pixels not
// covered by the transformed source are transparent.
//
// A plan that only shifts the source by whole pixels is copied exactly.
// Anything else is resampled onto surface, which must have the output size;
// its 16 bits per channel keep the colour of translucent pixels.
func geometryStage(surface *image.RGBA64, src *Buffer, plan CropPlan, interp draw.Interpolator) *Buffer {
	m := plan.Transform()
	if dx, dy, ok := pixelShift(m); ok {
		return shiftCopy(src, plan.OutWidth, plan.OutHeight, dx, dy)
	}

	clear(surface.Pix)
	interp.Transform(surface, m, src.NRGBA(), src.Bounds(), draw.Src, nil)

	w, h := surface.Rect.Dx(), surface.Rect.Dy()
	out := NewBuffer(w, h)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				r, g, b, a := unpremultiply(surface.RGBA64At(x, y))
				i := out.Offset(x, y)
				out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = r, g, b, a
			}
		}
	})
	return out
}

// pixelShift reports whether m is a translation by whole pixels.
func pixelShift(m f64.Aff3) (dx, dy int, ok bool) {
	if m[0] != 1 || m[1] != 0 || m[3] != 0 || m[4] != 1 {
		return 0, 0, false
	}
	if m[2] != math.Trunc(m[2]) || m[5] != math.Trunc(m[5]) {
		return 0, 0, false
	}
	return int(m[2]), int(m[5]), true
}

// shiftCopy returns a w×h buffer whose pixel (x,y) is src pixel (x-dx, y-dy).
func shiftCopy(src *Buffer, w, h, dx, dy int) *Buffer {
	out := NewBuffer(w, h)
	x0, x1 := max(0, dx), min(w, src.Width+dx)
	if x0 >= x1 {
		return out
	}
	for y := max(0, dy); y < min(h, src.Height+dy); y++ {
		copy(out.Pix[out.Offset(x0, y):out.Offset(x1, y)], src.Pix[src.Offset(x0-dx, y-dy):src.Offset(x1-dx, y-dy)])
	}
	return out
}

// toneStage applies brightness then contrast to the RGB of buf in place, the
// way a CSS brightness() contrast() chain does: the brightened value is
// clamped to [0,255] before contrast scales it around mid-gray. Alpha and
// transparent pixels are left alone.
func toneStage(buf *Buffer, params EditParams) {
	if params.neutralTone() || buf.Empty() {
		return
	}
	brightness := params.Brightness / 100
	contrast := params.Contrast / 100

	tone := func(v uint8) uint8 {
		lit := lo.Clamp(float64(v)*brightness, 0, 255)
		return clampByte((lit-toneMidpoint)*contrast + toneMidpoint)
	}

	w := buf.Width
	parallel.Line(buf.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := buf.Offset(x, y)
				if buf.Pix[i+3] == 0 {
					continue
				}
				buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = tone(buf.Pix[i]), tone(buf.Pix[i+1]), tone(buf.Pix[i+2])
			}
		}
	})
}

// Sharpen convolves src with the 3x3 sharpen kernel and blends the result
// with the original:
//
//	out = amount*convolved + (1-amount)*original,  amount = pct/100
//
// Kernel taps that fall outside the buffer contribute zero; they are not
// clamped or mirrored, so borders darken slightly. Alpha is passed through.
// The result is written to a new buffer; src is not modified.
func Sharpen(src *Buffer, pct float64) *Buffer {
	dst := NewBuffer(src.Width, src.Height)
	if src.Empty() {
		return dst
	}
	amount := pct / 100
	w, h := src.Width, src.Height
	k := sharpenKernel
	halfX, halfY := k.Width/2, k.Height/2

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				var r, g, b float64
				for ky := 0; ky < k.Height; ky++ {
					sy := y + ky - halfY
					if sy < 0 || sy >= h {
						continue
					}
					for kx := 0; kx < k.Width; kx++ {
						sx := x + kx - halfX
						if sx < 0 || sx >= w {
							continue
						}
						wt := k.At(kx, ky)
						if wt == 0 {
							continue
						}
						si := src.Offset(sx, sy)
						r += float64(src.Pix[si]) * wt
						g += float64(src.Pix[si+1]) * wt
						b += float64(src.Pix[si+2]) * wt
					}
				}

				i := src.Offset(x, y)
				dst.Pix[i] = clampByte(r*amount + float64(src.Pix[i])*(1-amount))
				dst.Pix[i+1] = clampByte(g*amount + float64(src.Pix[i+1])*(1-amount))
				dst.Pix[i+2] = clampByte(b*amount + float64(src.Pix[i+2])*(1-amount))
				dst.Pix[i+3] = src.Pix[i+3]
			}
		}
	})
	return dst
}

// VignetteRadii returns the inner and outer radius of the vignette ramp for a
// w×h buffer: a quarter and a half of the shorter side.
func VignetteRadii(w, h int) (inner, outer float64) {
	m := float64(min(w, h))
	return m / 4, m / 2
}

// VignetteAlpha returns the overlay opacity at distance d from the center.
// It is 0 up to inner, rises linearly to strength at outer and stays at
// strength beyond it.
func VignetteAlpha(d, inner, outer, strength float64) float64 {
	switch {
	case d <= inner:
		return 0
	case d >= outer:
		return strength
	}
	return strength * (d - inner) / (outer - inner)
}

// ApplyVignette composites a radial black overlay onto buf in place. The
// gradient is centered on the buffer and its radii come from VignetteRadii,
// so a non-square buffer reaches full strength before its corners.
func ApplyVignette(buf *Buffer, pct float64) {
	if buf.Empty() {
		return
	}
	strength := pct / 100
	w, h := buf.Width, buf.Height
	inner, outer := VignetteRadii(w, h)
	cx, cy := float64(w)/2, float64(h)/2

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			dy := float64(y) + 0.5 - cy
			for x := 0; x < w; x++ {
				dx := float64(x) + 0.5 - cx
				alpha := VignetteAlpha(math.Hypot(dx, dy), inner, outer, strength)
				if alpha == 0 {
					continue
				}
				i := buf.Offset(x, y)
				overBlack(buf.Pix[i:i+4:i+4], alpha)
			}
		}
	})
}

// overBlack composites black at opacity alpha over one non-premultiplied pixel.
func overBlack(px []uint8, alpha float64) {
	da := float64(px[3]) / 255
	outA := alpha + da*(1-alpha)
	if outA <= 0 {
		return
	}
	keep := da * (1 - alpha) / outA
	px[0] = clampByte(float64(px[0]) * keep)
	px[1] = clampByte(float64(px[1]) * keep)
	px[2] = clampByte(float64(px[2]) * keep)
	px[3] = clampByte(outA * 255)
}

// unpremultiply converts one premultiplied 16-bit sample to straight 8-bit
// channels, rounding to nearest.
func unpremultiply(c color.RGBA64) (r, g, b, a uint8) {
	a16 := uint32(c.A)
	if a16 == 0 {
		return 0, 0, 0, 0
	}
	to8 := func(v uint32) uint8 {
		return uint8((min(v, 0xffff) + 128) / 257)
	}
	un := func(v uint16) uint8 {
		return to8((uint32(v)*0xffff + a16/2) / a16)
	}
	return un(c.R), un(c.G), un(c.B), to8(a16)
}

// clampByte rounds v half-to-even and clamps it to [0,255], matching the
// conversion of a clamped 8-bit canvas array.
func clampByte(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.RoundToEven(v))
}

// checkSurface validates the outcome of a surface allocation.
func checkSurface(surface *image.RGBA64, err error, w, h int) (*image.RGBA64, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderTargetUnavailable, err)
	}
	if surface == nil || surface.Rect.Dx() != w || surface.Rect.Dy() != h || surface.Rect.Min != (image.Point{}) {
		return nil, fmt.Errorf("%w: surface does not match %dx%d", ErrRenderTargetUnavailable, w, h)
	}
	return surface, nil
}
