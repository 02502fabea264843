package style

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/pterm/pterm"
)

type column struct {
	header string
	cell   func(p types.PackageReport) string
}

// painter matches lipgloss.Style.Render
type painter func(strs ...string) string

func plain(strs ...string) string {
	return strings.Join(strs, " ")
}

func flag(set bool, paint painter, label string) string {
	if !set {
		return "-"
	}
	return paint(label)
}

func checksumCell(p types.PackageReport, styled bool) string {
	switch {
	case p.ChecksumOK == nil:
		return "unknown"
	case *p.ChecksumOK:
		if styled {
			return SuccessIndicator + " " + SuccessStyle.Render("ok")
		}
		return "ok"
	default:
		if styled {
			return WarningIndicator + " " + ChangedStyle.Render("changed")
		}
		return "changed"
	}
}

// columns returns the package table layout for mode
func columns(mode types.Mode, styled bool) []column {
	paint := func(p painter) painter {
		if !styled {
			return plain
		}
		return p
	}
	staged := paint(StagedStyle.Render)
	backup := paint(BackupStyle.Render)
	patched := paint(PatchedStyle.Render)

	pkg := column{header: "Package", cell: func(p types.PackageReport) string { return p.Package.String() }}

	switch mode {
	case types.ModePatch:
		return []column{
			pkg,
			{"Staged", func(p types.PackageReport) string {
				if p.StagedFiles == 0 {
					return "-"
				}
				return staged(strconv.Itoa(p.StagedFiles))
			}},
			{"Backed up", func(p types.PackageReport) string { return flag(p.BackedUp, backup, "new") }},
			{"Patched", func(p types.PackageReport) string { return flag(p.Patched, patched, "yes") }},
		}
	case types.ModeRestore:
		return []column{pkg, {"Restored", func(p types.PackageReport) string { return flag(p.Restored, patched, "yes") }}}
	case types.ModeBackup:
		return []column{
			pkg,
			{"Backed up", func(p types.PackageReport) string { return flag(p.BackedUp, backup, "new") }},
			{"Backup", func(p types.PackageReport) string { return flag(p.HasBackup, backup, "yes") }},
		}
	case types.ModeExtract:
		return []column{pkg, {"Extracted", func(p types.PackageReport) string { return flag(p.Extracted, patched, "yes") }}}
	default:
		return []column{
			pkg,
			{"Backup", func(p types.PackageReport) string { return flag(p.HasBackup, backup, "yes") }},
			{"Checksum", func(p types.PackageReport) string { return checksumCell(p, styled) }},
		}
	}
}

func headline(r *types.RunReport) string {
	return fmt.Sprintf("%s %s (%s) in %s", r.Mode, r.Title, r.Region, r.Duration.Round(time.Millisecond))
}

// RenderReport writes report to w in format. FormatAuto is treated as
// FormatTerminal; callers resolve it with DetectFormat first.
func RenderReport(w io.Writer, r *types.RunReport, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatText:
		_, err := io.WriteString(w, renderText(r))
		return err
	default:
		out, err := renderTerminal(r)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
}

func renderTerminal(r *types.RunReport) (string, error) {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(headline(r)) + "\n")

	cols := columns(r.Mode, true)
	data := pterm.TableData{make([]string, len(cols))}
	for i, c := range cols {
		data[0][i] = c.header
	}
	for _, p := range r.Packages {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.cell(p)
		}
		data = append(data, row)
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}
	b.WriteString(table + "\n")

	if len(r.Warnings) > 0 {
		b.WriteString("\n" + SubtitleStyle.Render(fmt.Sprintf("%d warning(s)", len(r.Warnings))) + "\n")
		for _, warn := range r.Warnings {
			line := fmt.Sprintf("%s %s %s", WarningIndicator, PathStyle.Render(warn.Path), MutedStyle.Render(warn.Message))
			b.WriteString(ListItemStyle.Render(line) + "\n")
		}
	}
	if r.StagingDir != "" {
		b.WriteString("\n" + Render(fmt.Sprintf("Staging tree kept at [path]%s[/path]", r.StagingDir)) + "\n")
	}
	return b.String(), nil
}

func renderText(r *types.RunReport) string {
	var b strings.Builder
	b.WriteString(headline(r) + "\n")

	cols := columns(r.Mode, false)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.header
	}
	b.WriteString(strings.Join(headers, "\t") + "\n")
	for _, p := range r.Packages {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.cell(p)
		}
		b.WriteString(strings.Join(row, "\t") + "\n")
	}

	for _, warn := range r.Warnings {
		fmt.Fprintf(&b, "warning: %s: %s\n", warn.Path, warn.Message)
	}
	if r.StagingDir != "" {
		fmt.Fprintf(&b, "staging tree kept at %s\n", r.StagingDir)
	}
	return b.String()
}
