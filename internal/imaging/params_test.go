package imaging

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCropRegion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		region  CropRegion
		wantErr bool
	}{
		{"full frame", FullFrame(), false},
		{"inner", CropRegion{0.1, 0.2, 0.5, 0.5}, false},
		{"touches edges", CropRegion{0.5, 0.5, 0.5, 0.5}, false},
		{"float noise", CropRegion{0.1, 0, 0.9000000000001, 1}, false},
		{"negative x", CropRegion{-0.1, 0, 0.5, 0.5}, true},
		{"width over 1", CropRegion{0, 0, 1.5, 0.5}, true},
		{"past right edge", CropRegion{0.6, 0, 0.5, 0.5}, true},
		{"past bottom edge", CropRegion{0, 0.6, 0.5, 0.5}, true},
		{"zero width", CropRegion{0, 0, 0, 0.5}, true},
		{"zero height", CropRegion{0, 0, 0.5, 0}, true},
		{"NaN", CropRegion{math.NaN(), 0, 0.5, 0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.region.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRegion) {
					t.Errorf("Validate: got %v, want ErrInvalidRegion", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate: unexpected error %v", err)
			}
		})
	}
}

func TestDefaultCropRegion(t *testing.T) {
	tests := []struct {
		name   string
		w, h   float64
		aspect float64
		want   CropRegion
	}{
		{"square", 400, 400, 1, CropRegion{0.05, 0.05, 0.9, 0.9}},
		{"landscape", 400, 300, 1, CropRegion{0.1625, 0.05, 0.675, 0.9}},
		{"portrait", 300, 400, 1, CropRegion{0.05, 0.1625, 0.9, 0.675}},
		{"wide aspect", 400, 400, 2, CropRegion{0.05, 0.275, 0.9, 0.45}},
		{"degenerate display", 0, 400, 1, FullFrame()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultCropRegion(tt.w, tt.h, tt.aspect)
			if !almostEqual(got.X, tt.want.X) || !almostEqual(got.Y, tt.want.Y) ||
				!almostEqual(got.Width, tt.want.Width) || !almostEqual(got.Height, tt.want.Height) {
				t.Errorf("DefaultCropRegion: got %+v, want %+v", got, tt.want)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("default region invalid: %v", err)
			}
		})
	}
}

func TestDefaultParams_Valid(t *testing.T) {
	p := DefaultParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("DefaultParams should validate: %v", err)
	}
	if !p.neutralTone() {
		t.Error("DefaultParams should have neutral tone")
	}
	if p.Zoom != 1 || p.Rotation != 0 || p.Sharpen != 0 || p.Vignette != 0 {
		t.Errorf("DefaultParams not neutral: %+v", p)
	}
}

func TestEditParams_Validate(t *testing.T) {
	mod := func(fn func(*EditParams)) EditParams {
		p := DefaultParams()
		fn(&p)
		return p
	}

	tests := []struct {
		name    string
		params  EditParams
		wantErr bool
	}{
		{"rotation 359.9", mod(func(p *EditParams) { p.Rotation = 359.9 }), false},
		{"rotation 360", mod(func(p *EditParams) { p.Rotation = 360 }), true},
		{"rotation negative", mod(func(p *EditParams) { p.Rotation = -1 }), true},
		{"zoom below 1", mod(func(p *EditParams) { p.Zoom = 0.5 }), true},
		{"zoom large", mod(func(p *EditParams) { p.Zoom = 10 }), false},
		{"brightness negative", mod(func(p *EditParams) { p.Brightness = -1 }), true},
		{"brightness 500", mod(func(p *EditParams) { p.Brightness = 500 }), false},
		{"contrast negative", mod(func(p *EditParams) { p.Contrast = -5 }), true},
		{"sharpen 101", mod(func(p *EditParams) { p.Sharpen = 101 }), true},
		{"vignette 100", mod(func(p *EditParams) { p.Vignette = 100 }), false},
		{"vignette negative", mod(func(p *EditParams) { p.Vignette = -0.1 }), true},
		{"zoom NaN", mod(func(p *EditParams) { p.Zoom = math.NaN() }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Validate: got %v, want ErrInvalidParams", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate: unexpected error %v", err)
			}
		})
	}
}

func TestEditParams_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   EditParams
		want EditParams
	}{
		{
			"already normal",
			EditParams{Rotation: 45, Zoom: 1.5, Brightness: 120, Contrast: 80, Sharpen: 10, Vignette: 20},
			EditParams{Rotation: 45, Zoom: 1.5, Brightness: 120, Contrast: 80, Sharpen: 10, Vignette: 20},
		},
		{
			"wraps rotation and clamps",
			EditParams{Rotation: -90, Zoom: 0.2, Brightness: -10, Contrast: 500, Sharpen: 150, Vignette: -3},
			EditParams{Rotation: 270, Zoom: 1, Brightness: 0, Contrast: 200, Sharpen: 100, Vignette: 0},
		},
		{
			"full turn",
			EditParams{Rotation: 720, Zoom: 9, Brightness: 100, Contrast: 100},
			EditParams{Rotation: 0, Zoom: 3, Brightness: 100, Contrast: 100},
		},
		{
			"NaN falls back to neutral",
			EditParams{Rotation: math.NaN(), Zoom: math.NaN(), Brightness: math.NaN(), Contrast: math.NaN(), Sharpen: math.NaN(), Vignette: math.NaN()},
			DefaultParams(),
		},
		{
			"infinite rotation",
			EditParams{Rotation: math.Inf(1), Zoom: 1, Brightness: 100, Contrast: 100},
			DefaultParams(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got != tt.want {
				t.Errorf("Normalize: got %+v, want %+v", got, tt.want)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("normalized params invalid: %v", err)
			}
		})
	}
}
