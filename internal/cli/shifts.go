package cli

import (
	"fmt"
	"log"
	"os"

	"panel-router/internal/design"
	"panel-router/internal/placement"

	"github.com/spf13/cobra"
)

func newShiftsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shifts",
		Short: "Build and check placement shift tables",
	}
	cmd.AddCommand(newShiftsImportCommand(), newShiftsCheckCommand())
	return cmd
}

func newShiftsImportCommand() *cobra.Command {
	var (
		designPath, csvPath, outPath string
		opts                         placement.ImportOptions
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Convert a ViewMetrology die placement report into a shift table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := design.Load(designPath)
			if err != nil {
				return err
			}
			f, err := os.Open(csvPath)
			if err != nil {
				return err
			}
			defer f.Close()

			t, err := placement.ParseViewMetrology(f, d, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", csvPath, err)
			}
			good := placement.MarkInSpec(t, d)
			log.Printf("[Shifts] %d units, %d in spec", len(t.Units), good)
			if err := t.Save(outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d units, %d in spec\n", len(t.Units), good)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&designPath, "design", "d", "", "design file")
	fl.StringVar(&csvPath, "csv", "", "ViewMetrology CSV export")
	fl.StringVarP(&outPath, "out", "o", "", "shift table to write (JSON or YAML)")
	fl.StringVar(&opts.PanelID, "panel", "", "panel identifier")
	fl.BoolVar(&opts.CheckDrawing, "check-drawing", false, "require the report's CAD file name to match the design")
	for _, name := range []string{"design", "csv", "out"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newShiftsCheckCommand() *cobra.Command {
	var designPath, shiftsPath string
	var write bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Re-evaluate unit in-spec flags against the design's shift constraints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, t, err := loadInputs(designPath, shiftsPath)
			if err != nil {
				return err
			}
			good := placement.MarkInSpec(t, d)
			fmt.Fprintf(cmd.OutOrStdout(), "%d units, %d in spec\n", len(t.Units), good)
			if write {
				return t.Save(shiftsPath)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&designPath, "design", "d", "", "design file")
	fl.StringVarP(&shiftsPath, "shifts", "s", "", "shift table")
	fl.BoolVarP(&write, "write", "w", false, "write the updated flags back")
	_ = cmd.MarkFlagRequired("design")
	_ = cmd.MarkFlagRequired("shifts")
	return cmd
}
