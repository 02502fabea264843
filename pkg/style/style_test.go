// pkg/style/style_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test markup, format parsing and run report rendering

package style

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkupParser(t *testing.T) {
	p := NewMarkupParser()

	out := p.Render("[bold]outer [path]/game[/path][/bold] and [unknown]x[/unknown]")
	assert.NotContains(t, out, "[bold]")
	assert.NotContains(t, out, "[path]")
	assert.Contains(t, out, "/game")
	assert.Contains(t, out, "[unknown]x[/unknown]", "unknown tags are left alone")

	out = p.RenderTemplate("Restored [patched]{{count}}[/patched] packages", map[string]string{"count": "6"})
	assert.Contains(t, out, "6")
	assert.NotContains(t, out, "{{count}}")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatAuto},
		{in: "term", want: FormatTerminal},
		{in: "Plain", want: FormatText},
		{in: "json", want: FormatJSON},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func sampleReport() *types.RunReport {
	ok := false
	return &types.RunReport{
		Mode:   types.ModePatch,
		Title:  "kh2",
		Region: "us",
		Packages: []types.PackageReport{
			{Package: "kh2_first", StagedFiles: 3, BackedUp: true, Patched: true},
			{Package: "kh2_second", ChecksumOK: &ok},
		},
		Warnings: []types.Warning{
			{Path: "data/unknown.bin", Message: "no package contains this path"},
		},
		StagingDir: "/work/staging",
		Duration:   1500 * time.Millisecond,
	}
}

func TestRenderReport_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, sampleReport(), FormatText))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "patch kh2 (us) in 1.5s", lines[0])
	assert.Equal(t, "Package\tStaged\tBacked up\tPatched", lines[1])
	assert.Equal(t, "kh2_first\t3\tnew\tyes", lines[2])
	assert.Equal(t, "kh2_second\t-\t-\t-", lines[3])
	assert.Equal(t, "warning: data/unknown.bin: no package contains this path", lines[4])
	assert.Equal(t, "staging tree kept at /work/staging", lines[5])
}

func TestRenderReport_StatusColumns(t *testing.T) {
	r := sampleReport()
	r.Mode = types.ModeStatus
	r.Warnings = nil
	r.StagingDir = ""

	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, r, FormatText))
	assert.Contains(t, buf.String(), "Package\tBackup\tChecksum")
	assert.Contains(t, buf.String(), "kh2_first\t-\tunknown")
	assert.Contains(t, buf.String(), "kh2_second\t-\tchanged")
}

func TestRenderReport_Terminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, sampleReport(), FormatTerminal))

	out := buf.String()
	for _, want := range []string{"kh2_first", "kh2_second", "Staged", "data/unknown.bin", "/work/staging"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, sampleReport(), FormatJSON))

	var decoded types.RunReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, types.ModePatch, decoded.Mode)
	assert.Len(t, decoded.Packages, 2)
	assert.Equal(t, 3, decoded.Packages[0].StagedFiles)
	require.NotNil(t, decoded.Packages[1].ChecksumOK)
}

func TestMarkdownRenderer_FallsBackToContent(t *testing.T) {
	r := &MarkdownRenderer{Style: "/does/not/exist.json"}
	assert.Equal(t, "# Titles", r.Render("# Titles"))

	assert.Contains(t, NewMarkdownRenderer().Render("| a | b |\n|---|---|\n| kh2 | x |\n"), "kh2")
}

func TestRenderReport_TerminalColumnsPerMode(t *testing.T) {
	tests := []struct {
		mode types.Mode
		want []string
	}{
		{mode: types.ModePatch, want: []string{"Staged", "Backed up", "Patched", "new", "yes"}},
		{mode: types.ModeRestore, want: []string{"Restored"}},
		{mode: types.ModeBackup, want: []string{"Backed up", "Backup", "new"}},
		{mode: types.ModeExtract, want: []string{"Extracted"}},
		{mode: types.ModeStatus, want: []string{"Checksum", "changed", "unknown"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r := sampleReport()
			r.Mode = tt.mode

			var buf bytes.Buffer
			require.NoError(t, RenderReport(&buf, r, FormatTerminal))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
