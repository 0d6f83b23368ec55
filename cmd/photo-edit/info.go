package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ironsheep/idcard-studio/internal/imaging"
	"github.com/spf13/cobra"
)

type photoReport struct {
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Format      string             `json:"format"`
	ColorDepth  string             `json:"color_depth"`
	HasAlpha    bool               `json:"has_alpha"`
	Displayed   imaging.Size       `json:"displayed"`
	DefaultCrop imaging.CropRegion `json:"default_crop"`
}

func newInfoCmd() *cobra.Command {
	var (
		viewport  []float64
		aspect    float64
		thumbnail string
	)

	cmd := &cobra.Command{
		Use:   "info <photo>",
		Short: "Describe a photo and the crop the editor would start with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(viewport) != 2 {
				return fmt.Errorf("--viewport wants 2 values, got %d", len(viewport))
			}
			return runInfo(args[0], imaging.Size{Width: viewport[0], Height: viewport[1]}, aspect, thumbnail, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.Float64SliceVar(&viewport, "viewport", []float64{800, 600}, "editor viewport as width,height")
	f.Float64Var(&aspect, "aspect", 1, "width/height ratio of the default crop")
	f.StringVar(&thumbnail, "thumbnail", "", "write the photo fitted into the viewport to this PNG file")

	return cmd
}

func runInfo(path string, viewport imaging.Size, aspect float64, thumbnail string, out io.Writer) error {
	photo, err := decodeFile(path)
	if err != nil {
		return err
	}

	displayed := imaging.FitSize(imaging.SizeOf(photo.Buffer.Bounds()), viewport)
	report := photoReport{
		Width:       photo.Buffer.Width,
		Height:      photo.Buffer.Height,
		Format:      photo.Format,
		ColorDepth:  photo.ColorDepth,
		HasAlpha:    photo.HasAlpha,
		Displayed:   displayed,
		DefaultCrop: imaging.DefaultCropRegion(displayed.Width, displayed.Height, aspect),
	}

	if thumbnail != "" {
		if err := writePNG(thumbnail, imaging.DisplayCopy(photo, viewport), out); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
