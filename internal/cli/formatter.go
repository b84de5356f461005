package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/idelchi/di/internal/scan"
	"github.com/idelchi/di/internal/topn"
)

//nolint:gochecknoglobals // Styles are constant
var (
	titleStyle   = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("6"))
	headingStyle = lipgloss.NewStyle().Underline(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	sizeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// DisplayPaths returns a function that shortens scanned paths for display.
// Paths are shown relative to the current directory when root lies inside it,
// and absolute otherwise.
func DisplayPaths(root string) func(string) string {
	cwd, err := os.Getwd()
	if err == nil {
		// Compare canonical paths, root is canonical too.
		if resolved, err := filepath.EvalSymlinks(cwd); err == nil {
			cwd = resolved
		}
	}

	return displayPaths(cwd, root, err == nil)
}

func displayPaths(cwd, root string, haveCwd bool) func(string) string {
	relToRoot, err := filepath.Rel(cwd, root)
	outsideCwd := !haveCwd || err != nil || strings.HasPrefix(relToRoot, "..")

	return func(path string) string {
		if outsideCwd {
			return filepath.ToSlash(path)
		}

		rel, err := filepath.Rel(cwd, path)
		if err != nil {
			return filepath.ToSlash(path)
		}

		return filepath.ToSlash(rel)
	}
}

// PrintJSON outputs the result in JSON format.
func PrintJSON(result *scan.Result, writer io.Writer) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintPlain outputs one tab separated line per listed entry:
// size, kind and path. Directories come first, largest first.
func PrintPlain(result *scan.Result, writer io.Writer, display func(string) string) error {
	lists := []struct {
		kind scan.Kind
		sel  *topn.Selector
	}{
		{scan.Directory, result.LargestDirs},
		{scan.File, result.LargestFiles},
	}

	for _, list := range lists {
		for r := range list.sel.Drain() {
			if _, err := fmt.Fprintf(writer, "%s\t%s\t%s\n", humanize.IBytes(r.Weight), list.kind, display(r.Label)); err != nil {
				return err
			}
		}
	}

	return nil
}

// statLine renders a grey label followed by a styled value.
func statLine(label, value string) string {
	return " " + labelStyle.Render(fmt.Sprintf("%-14s", label)) + value + "\n"
}

// count renders n with thousands separators.
func count(n uint64) string {
	return countStyle.Render(humanize.Comma(int64(n))) //nolint:gosec // Counts fit in int64
}

// largest renders a list of records, sizes right aligned, largest first.
func largest(sel *topn.Selector, display func(string) string) string {
	records := make([]topn.Record, 0, sel.Len())
	for r := range sel.Drain() {
		records = append(records, r)
	}

	width := 0
	for _, r := range records {
		width = max(width, len(humanize.IBytes(r.Weight)))
	}

	var sb strings.Builder
	for _, r := range records {
		size := fmt.Sprintf("%*s", width, humanize.IBytes(r.Weight))
		fmt.Fprintf(&sb, " %s  %s\n", sizeStyle.Render(size), labelStyle.Render(display(r.Label)))
	}

	return sb.String()
}

// PrintTable outputs the result as a human-readable report.
func PrintTable(result *scan.Result, writer io.Writer, display func(string) string) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s\n\n", titleStyle.Render("di"), labelStyle.Render(filepath.ToSlash(result.Root)))

	sb.WriteString(headingStyle.Render("Scan statistics:") + "\n")
	sb.WriteString(statLine("directories", count(result.Directories)))
	sb.WriteString(statLine("symlinks", count(result.Symlinks)))
	sb.WriteString(statLine("files", count(result.Files)))
	sb.WriteString(statLine("total entries", count(result.Entries())))
	sb.WriteString(statLine("total size",
		sizeStyle.Render(humanize.IBytes(result.Bytes))+
			labelStyle.Render(" (")+
			sizeStyle.Render(humanize.Comma(int64(result.Bytes)))+ //nolint:gosec // Byte totals fit in int64
			labelStyle.Render(" bytes)")))

	if result.Skipped > 0 {
		sb.WriteString(statLine("skipped", count(result.Skipped)))
	}

	if result.TopN > 0 {
		sb.WriteString("\n" + headingStyle.Render("Largest directories found:") + "\n")
		sb.WriteString(largest(result.LargestDirs, display))
		sb.WriteString("\n" + headingStyle.Render("Largest files found:") + "\n")
		sb.WriteString(largest(result.LargestFiles, display))
	}

	fmt.Fprintf(&sb, "\n%s %v\n", labelStyle.Render("Elapsed:"), result.Elapsed.Round(time.Millisecond))

	_, err := io.WriteString(writer, sb.String())

	return err
}
