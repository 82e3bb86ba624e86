package cli

import (
	"fmt"

	"panel-router/internal/design"
	"panel-router/internal/preview"
	"panel-router/internal/resultio"

	"github.com/spf13/cobra"
)

func newPreviewCommand() *cobra.Command {
	var (
		designPath, inPath, outPath string
		unit, layer                 int
	)
	opts := preview.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render one unit layer of a results archive to PNG or TIFF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := design.Load(designPath)
			if err != nil {
				return err
			}
			res, err := resultio.Load(inPath)
			if err != nil {
				return err
			}
			img, err := preview.Render(d, res, unit, layer, opts)
			if err != nil {
				return err
			}
			if err := preview.WriteImage(outPath, img); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", outPath, img.Bounds().Dx(), img.Bounds().Dy())
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&designPath, "design", "d", "", "design file")
	fl.StringVarP(&inPath, "in", "i", "", "results archive")
	fl.StringVarP(&outPath, "out", "o", "", "image to write (.png, .tif)")
	fl.IntVar(&unit, "unit", 0, "unit index within the archive")
	fl.IntVar(&layer, "layer", 1, "layer number")
	fl.Float64Var(&opts.Scale, "scale", opts.Scale, "pixels per design unit")
	fl.BoolVar(&opts.Vertices, "vertices", opts.Vertices, "mark route vertices")
	for _, name := range []string{"design", "in", "out"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
