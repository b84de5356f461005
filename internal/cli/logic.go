package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/idelchi/di/internal/scan"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

// logFilesystem logs the capacity of the filesystem holding path.
func logFilesystem(ctx context.Context, log zerolog.Logger, path string) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("filesystem usage unavailable")

		return
	}

	log.Info().
		Str("fstype", usage.Fstype).
		Str("total", humanize.IBytes(usage.Total)).
		Str("used", humanize.IBytes(usage.Used)).
		Str("used_percent", fmt.Sprintf("%.1f%%", usage.UsedPercent)).
		Msg("filesystem")
}

func logic(ctx context.Context, settings Settings, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log := newLogger(stderr, settings.Verbosity)
	settings.Scan.Logger = &log

	enableProgress := settings.Verbosity >= 2 ||
		(settings.Output == "table" && isTerminal(stderr))

	if settings.Verbosity >= 1 {
		logFilesystem(ctx, log, settings.Scan.Path)
	}

	var progressHook func(entries uint64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(entries uint64) {
			fmt.Fprintf(stderr, "\r\033[2KScanning… %s entries\r", humanize.Comma(int64(entries))) //nolint:gosec // Entry counts fit in int64
		}
	}

	result, err := scan.Run(ctx, settings.Scan, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	if result.Skipped > 0 {
		log.Debug().Uint64("skipped", result.Skipped).Msg("entries could not be read")
	}

	switch settings.Output {
	case "json":
		return PrintJSON(result, stdout)
	case "plain":
		return PrintPlain(result, stdout, DisplayPaths(result.Root))
	case "table":
		return PrintTable(result, stdout, DisplayPaths(result.Root))
	default:
		return fmt.Errorf("unknown output format: %s", settings.Output)
	}
}
