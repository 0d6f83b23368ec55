package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/idcard-studio/internal/imaging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var (
	errTerminal   = errors.New("refusing to write PNG data to a terminal; use --out or --force")
	errBothStdout = errors.New("--out and --preview-out cannot both write to stdout")
)

type renderOptions struct {
	out          string
	previewOut   string
	region       []float64
	fullFrame    bool
	aspect       float64
	params       imaging.EditParams
	normalize    bool
	scale        float64
	previewScale float64
	maxPixels    int
	force        bool
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{params: imaging.DefaultParams()}

	cmd := &cobra.Command{
		Use:   "render <photo>",
		Short: "Render a photo through the crop, rotate and filter pipeline",
		Long: `Render decodes a PNG, JPEG, GIF or WebP photo, applies the crop region and
edit sliders, and writes the result as PNG.

Without --region the editor's default crop is used: centred, 90% of the
photo width, with the --aspect ratio.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "-", "output PNG file, - for stdout")
	f.StringVar(&opts.previewOut, "preview-out", "", "also write a preview render to this file")
	f.Float64SliceVar(&opts.region, "region", nil, "crop as x,y,width,height fractions of the photo")
	f.BoolVar(&opts.fullFrame, "full-frame", false, "crop nothing; ignored when --region is set")
	f.Float64Var(&opts.aspect, "aspect", 1, "width/height ratio of the default crop")
	addParamFlags(f, &opts.params)
	f.BoolVar(&opts.normalize, "normalize", false, "clamp sliders into the editor ranges instead of failing")
	f.Float64Var(&opts.scale, "scale", 2, "output pixels per source pixel of the final render")
	f.Float64Var(&opts.previewScale, "preview-scale", 1, "output pixels per source pixel of the preview render")
	f.IntVar(&opts.maxPixels, "max-pixels", imaging.DefaultMaxPixels, "largest render allowed, in pixels")
	f.BoolVar(&opts.force, "force", false, "write PNG to stdout even when it is a terminal")

	return cmd
}

// addParamFlags binds one flag per edit slider, defaulting to p's values.
func addParamFlags(f *pflag.FlagSet, p *imaging.EditParams) {
	f.Float64Var(&p.Rotation, "rotation", p.Rotation, "clockwise rotation in degrees")
	f.Float64Var(&p.Zoom, "zoom", p.Zoom, "zoom about the photo centre, >= 1")
	f.Float64Var(&p.Brightness, "brightness", p.Brightness, "brightness percent, 100 is unchanged")
	f.Float64Var(&p.Contrast, "contrast", p.Contrast, "contrast percent, 100 is unchanged")
	f.Float64Var(&p.Sharpen, "sharpen", p.Sharpen, "sharpen amount percent, 0-100")
	f.Float64Var(&p.Vignette, "vignette", p.Vignette, "vignette strength percent, 0-100")
}

// cropRegion resolves the crop from the flags.
func (o renderOptions) cropRegion(src *imaging.Buffer) (imaging.CropRegion, error) {
	switch {
	case len(o.region) > 0:
		if len(o.region) != 4 {
			return imaging.CropRegion{}, fmt.Errorf("--region wants 4 values, got %d", len(o.region))
		}
		return imaging.CropRegion{X: o.region[0], Y: o.region[1], Width: o.region[2], Height: o.region[3]}, nil
	case o.fullFrame:
		return imaging.FullFrame(), nil
	default:
		return imaging.DefaultCropRegion(float64(src.Width), float64(src.Height), o.aspect), nil
	}
}

func runRender(path string, opts renderOptions, stdout io.Writer) error {
	if opts.out == "-" && opts.previewOut == "-" {
		return errBothStdout
	}
	if (opts.out == "-" || opts.previewOut == "-") && !opts.force && isTerminal(stdout) {
		return errTerminal
	}

	photo, err := decodeFile(path)
	if err != nil {
		return err
	}
	region, err := opts.cropRegion(photo.Buffer)
	if err != nil {
		return err
	}
	params := opts.params
	if opts.normalize {
		params = params.Normalize()
	}

	var final, preview *imaging.Buffer
	var g errgroup.Group
	g.Go(func() error {
		r := imaging.NewRenderer(imaging.FinalOptions(opts.maxPixels))
		buf, err := r.Render(photo.Buffer, region, params, opts.scale)
		if err != nil {
			return fmt.Errorf("final render: %w", err)
		}
		final = buf
		return nil
	})
	if opts.previewOut != "" {
		g.Go(func() error {
			r := imaging.NewRenderer(imaging.PreviewOptions(opts.maxPixels))
			buf, err := r.Render(photo.Buffer, region, params, opts.previewScale)
			if err != nil {
				return fmt.Errorf("preview render: %w", err)
			}
			preview = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if preview != nil {
		if err := writePNG(opts.previewOut, preview, stdout); err != nil {
			return err
		}
	}
	return writePNG(opts.out, final, stdout)
}

func decodeFile(path string) (*imaging.Photo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return imaging.Decode(f)
}

// writePNG writes buf to dst, or to stdout when dst is "-".
func writePNG(dst string, buf *imaging.Buffer, stdout io.Writer) error {
	data, err := imaging.EncodePNG(buf)
	if err != nil {
		return err
	}
	if dst == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
