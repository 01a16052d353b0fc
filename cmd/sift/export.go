package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/talent-sift/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the visible candidates of a ranking result to an Excel workbook",
	RunE:  runExport,
}

var (
	exportOpts filterFlags
	exportOut  string
)

func init() {
	exportOpts.bind(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Path to the output .xlsx file (required)")
	if err := exportCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	b, err := exportOpts.load()
	if err != nil {
		return err
	}
	view := b.Snapshot()

	if dir := filepath.Dir(exportOut); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	out, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}

	if err := export.WriteCandidates(out, view.Candidates, view.Criteria); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", exportOut, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Showing %d of %d candidates -> %s\n", view.Shown, view.Total, exportOut)
	return nil
}
