package cli

import (
	"panel-router/internal/design"
	"panel-router/internal/report"
	"panel-router/internal/resultio"
	"panel-router/internal/smoother"

	"github.com/spf13/cobra"
)

func newSmoothCommand(g *globalFlags) *cobra.Command {
	var designPath, inPath, outPath string
	cmd := &cobra.Command{
		Use:   "smooth",
		Short: "Smooth the routes of an existing results archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig("")
			if err != nil {
				return err
			}
			d, err := design.Load(designPath)
			if err != nil {
				return err
			}
			res, err := resultio.Load(inPath)
			if err != nil {
				return err
			}
			if err := smoother.New(cfg).Smooth(d, res); err != nil {
				return err
			}
			if outPath == "" {
				outPath = inPath
			}
			if err := resultio.Save(outPath, res); err != nil {
				return err
			}
			report.Summarize(res).Print(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVarP(&designPath, "design", "d", "", "design file")
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "results archive to smooth")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output archive (default: overwrite --in)")
	_ = cmd.MarkFlagRequired("design")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
