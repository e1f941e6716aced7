package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ossobv/dutree/internal/dutree"
)

// Leaf is one reported line of the usage tree.
type Leaf struct {
	// Name is the display name; directories end with a separator,
	// leftover buckets with an asterisk.
	Name string `json:"name"`
	// AppSize is the apparent size in bytes.
	AppSize int64 `json:"apparent_size"`
	// UseSize is the allocated size in bytes.
	UseSize int64 `json:"used_size"`
}

// Report is the structured result of a full scan.
type Report struct {
	// Root is the scanned directory.
	Root string `json:"root"`
	// Metric names the size metric that drove significance decisions.
	Metric string `json:"metric"`
	// Leaves are the reported paths, sorted for display.
	Leaves []Leaf `json:"leaves"`
	// AppTotal is the total apparent size in bytes.
	AppTotal int64 `json:"apparent_total"`
	// UseTotal is the total allocated size in bytes.
	UseTotal int64 `json:"used_total"`
	// Warnings is the number of unreadable paths skipped.
	Warnings int `json:"warnings"`
	// Elapsed is the total time taken for the scan.
	Elapsed time.Duration `json:"elapsed"`
}

// BuildReport flattens a scanned tree into the report consumed by the
// printers.
func BuildReport(tree *dutree.Node, metric dutree.Metric, warnings int, elapsed time.Duration) *Report {
	report := &Report{
		Root:     tree.Path(),
		Metric:   metric.String(),
		AppTotal: tree.AppSize(),
		UseTotal: tree.UseSize(),
		Warnings: warnings,
		Elapsed:  elapsed,
	}

	for _, leaf := range tree.Leaves() {
		report.Leaves = append(report.Leaves, Leaf{
			Name:    leaf.Name(),
			AppSize: leaf.AppSize(),
			UseSize: leaf.UseSize(),
		})
	}

	return report
}

// PrintJSON outputs any report in JSON format.
func PrintJSON(report any, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs a scan report in the du-style table format: one
// right-aligned human size per leaf, then the exact total.
func PrintTable(report *Report, writer io.Writer) error {
	selected := func(leaf Leaf) int64 {
		if report.Metric == dutree.Used.String() {
			return leaf.UseSize
		}

		return leaf.AppSize
	}

	for _, leaf := range report.Leaves {
		if _, err := fmt.Fprintf(writer, " %7s  %s\n", human(selected(leaf)), leaf.Name); err != nil {
			return err
		}
	}

	total := report.AppTotal
	if report.Metric == dutree.Used.String() {
		total = report.UseTotal
	}

	if _, err := fmt.Fprintf(writer, "   -----\n %7s  TOTAL (%d)\n", human(total), total); err != nil {
		return err
	}

	return nil
}

// PrintSummaryTable outputs the grand totals of a summary run.
func PrintSummaryTable(summary dutree.Summary, writer io.Writer) error {
	_, err := fmt.Fprintf(writer, " %7s  apparent (%d)\n %7s  used (%d)\n",
		human(summary.AppSize), summary.AppSize,
		human(summary.UseSize), summary.UseSize)

	return err
}

// human formats a byte count with one decimal and a single-letter unit,
// aligning in seven columns. The unusual cutoffs keep the mantissa
// below four digits.
func human(value int64) string {
	switch {
	case value >= 1073741824000:
		return fmt.Sprintf("%.1f T", float64(value)/(1<<40))
	case value >= 1048576000:
		return fmt.Sprintf("%.1f G", float64(value)/(1<<30))
	case value >= 1024000:
		return fmt.Sprintf("%.1f M", float64(value)/(1<<20))
	case value >= 1000:
		return fmt.Sprintf("%.1f K", float64(value)/(1<<10))
	default:
		return fmt.Sprintf("%d   B", value)
	}
}
