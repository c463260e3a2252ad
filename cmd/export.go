package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/btcplan/internal/report"

	"github.com/spf13/cobra"
)

var (
	flagChartOut  string
	flagReportOut string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the projection as a PNG line chart",
	RunE:  runChart,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the projection table as a PDF",
	RunE:  runReport,
}

func init() {
	chartCmd.Flags().StringVarP(&flagChartOut, "output", "o", "btcplan.png", "Output file")
	reportCmd.Flags().StringVarP(&flagReportOut, "output", "o", "btcplan.pdf", "Output file")
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(reportCmd)
}

func exportDocument(cmd *cobra.Command) (report.Document, error) {
	ccy, err := currency()
	if err != nil {
		return report.Document{}, err
	}
	in, src := resolveInput(cmd.Context(), ccy)
	return report.NewDocument(in, ccy, src), nil
}

func runChart(cmd *cobra.Command, _ []string) error {
	doc, err := exportDocument(cmd)
	if err != nil {
		return err
	}
	png, err := report.ChartPNG(doc)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return writeOutput(flagChartOut, png)
}

func runReport(cmd *cobra.Command, _ []string) error {
	doc, err := exportDocument(cmd)
	if err != nil {
		return err
	}
	pdf, err := report.PDF(doc)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return writeOutput(flagReportOut, pdf)
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // user-chosen export path
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("  Wrote %s\n", path)
	return nil
}
