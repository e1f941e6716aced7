package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/ossobv/dutree/internal/dutree"
)

// progressInterval is the cadence of in-place progress updates.
const progressInterval = 500 * time.Millisecond

func logic(options Options) error {
	log, err := newLogger(options.Debug)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if options.Summary {
		return runSummary(options, log)
	}

	return runScan(options, log)
}

func runScan(options Options, log *zap.Logger) error {
	scanner, err := dutree.NewScanner(options.Path, dutree.OSFS{}, log)
	if err != nil {
		return err
	}

	enableProgress := options.Output != "json" &&
		!options.Debug &&
		isatty.IsTerminal(os.Stderr.Fd())

	var stopProgress func()
	if enableProgress {
		stopProgress = startProgress(scanner)
	}

	start := time.Now()
	tree, err := scanner.Scan(!options.Blocks)

	if stopProgress != nil {
		stopProgress()
	}

	if err != nil {
		return err
	}

	metric := dutree.Apparent
	if options.Blocks {
		metric = dutree.Used
	}

	log.Debug("scan finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int64("threshold", scanner.FinalThreshold()),
		zap.Int("warnings", len(scanner.Warnings())))

	report := BuildReport(tree, metric, len(scanner.Warnings()), time.Since(start))

	if options.Output == "json" {
		return PrintJSON(report, os.Stdout)
	}

	return PrintTable(report, os.Stdout)
}

func runSummary(options Options, log *zap.Logger) error {
	start := time.Now()

	summary, err := dutree.Summarize(options.Path)
	if err != nil {
		return err
	}

	log.Debug("summary finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int64("entries", summary.Entries),
		zap.Int64("skipped", summary.Skipped))

	if options.Output == "json" {
		return PrintJSON(summary, os.Stdout)
	}

	return PrintSummaryTable(summary, os.Stdout)
}

// startProgress reports scan progress in place on stderr until the
// returned stop function is called.
func startProgress(scanner *dutree.Scanner) (stop func()) {
	// Hide cursor for in-place updates; restore on stop.
	fmt.Fprint(os.Stderr, "\033[?25l")

	ticker := time.NewTicker(progressInterval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				entries, bytes := scanner.Progress()
				msg := fmt.Sprintf("Scanning… %d entries, %s",
					entries, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
				fmt.Fprintf(os.Stderr, "\r\033[2K%s\r", msg)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		fmt.Fprint(os.Stderr, "\r\033[2K\r\033[?25h")
	}
}
