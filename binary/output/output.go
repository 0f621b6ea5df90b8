// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package output writes ldaudit scan results as coloured text, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/ldaudit"
	"github.com/google/ldaudit/finding"
	"github.com/google/ldaudit/plugin"
	"github.com/muesli/termenv"
	"go.uber.org/multierr"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// SupportedFormats lists the formats accepted by Write.
var SupportedFormats = []string{FormatText, FormatJSON, FormatYAML}

// Stdout is the output path that selects standard output.
const Stdout = "-"

// ColorMode controls text colouring.
type ColorMode string

// ColorMode values.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(s)); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	}
	return "", fmt.Errorf("unknown color mode %q, want one of auto, always, never", s)
}

// UseColor decides whether text written to w gets coloured. In auto mode only
// terminals are coloured.
func UseColor(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Document is the serialized form of a scan result.
type Document struct {
	Version   string             `json:"version" yaml:"version"`
	StartTime time.Time          `json:"start_time" yaml:"start_time"`
	EndTime   time.Time          `json:"end_time" yaml:"end_time"`
	Status    *plugin.ScanStatus `json:"status" yaml:"status"`
	Findings  []*finding.Finding `json:"findings" yaml:"findings"`
	Plugins   []*plugin.Status   `json:"plugins" yaml:"plugins"`
}

// NewDocument converts a scan result into its serialized form.
func NewDocument(r *ldaudit.ScanResult) *Document {
	findings := slices.Clone(r.Findings)
	if findings == nil {
		findings = []*finding.Finding{}
	}
	finding.Sort(findings)
	plugins := r.PluginStatus
	if plugins == nil {
		plugins = []*plugin.Status{}
	}
	return &Document{
		Version:   r.Version,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    r.Status,
		Findings:  findings,
		Plugins:   plugins,
	}
}

// WriteJSON writes the result as an indented JSON document.
func WriteJSON(w io.Writer, r *ldaudit.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(r))
}

// WriteYAML writes the result as a YAML document.
func WriteYAML(w io.Writer, r *ldaudit.ScanResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(r)); err != nil {
		return err
	}
	return enc.Close()
}

var markers = map[finding.Severity]string{
	finding.SeverityIssue:   "[!]",
	finding.SeverityWarning: "[~]",
	finding.SeverityInfo:    "[i]",
}

type styles struct {
	severity map[finding.Severity]lipgloss.Style
	subject  lipgloss.Style
	dim      lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		plain := r.NewStyle()
		return styles{
			severity: map[finding.Severity]lipgloss.Style{
				finding.SeverityIssue:   plain,
				finding.SeverityWarning: plain,
				finding.SeverityInfo:    plain,
			},
			subject: plain,
			dim:     plain,
		}
	}
	r.SetColorProfile(termenv.ANSI256)
	return styles{
		severity: map[finding.Severity]lipgloss.Style{
			finding.SeverityIssue:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
			finding.SeverityWarning: r.NewStyle().Foreground(lipgloss.Color("208")),
			finding.SeverityInfo:    r.NewStyle().Foreground(lipgloss.Color("81")),
		},
		subject: r.NewStyle().Bold(true),
		dim:     r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// WriteText writes one line per finding, most severe first, followed by a
// summary line.
func WriteText(w io.Writer, r *ldaudit.ScanResult, color bool) error {
	st := newStyles(w, color)
	doc := NewDocument(r)
	var b strings.Builder
	for _, f := range doc.Findings {
		sev := st.severity[f.Severity]
		fmt.Fprintf(&b, "%s %s %s: %s\n",
			sev.Render(markers[f.Severity]),
			sev.Render(string(f.Category)),
			st.subject.Render(f.Subject),
			f.Message)
	}
	counts := finding.Count(doc.Findings)
	summary := fmt.Sprintf("%d issue(s), %d warning(s), %d info", counts[finding.SeverityIssue], counts[finding.SeverityWarning], counts[finding.SeverityInfo])
	if len(doc.Findings) == 0 {
		summary = "no findings"
	}
	fmt.Fprintln(&b, st.dim.Render(summary))
	for _, p := range doc.Plugins {
		if p.Status.Status != plugin.ScanStatusSucceeded {
			fmt.Fprintln(&b, st.dim.Render(fmt.Sprintf("%s: %v: %s", p.Name, p.Status.Status, p.Status.FailureReason)))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// Write writes the result in the given format to path, or to stdout when path
// is Stdout. It returns the number of bytes written.
func Write(r *ldaudit.ScanResult, format, path string, mode ColorMode) (n int, err error) {
	var w io.Writer = os.Stdout
	if path != Stdout {
		f, err := os.Create(path)
		if err != nil {
			return 0, err
		}
		defer func() {
			err = multierr.Append(err, f.Close())
		}()
		w = f
	}
	cw := &countingWriter{w: w}
	switch format {
	case FormatText:
		err = WriteText(cw, r, UseColor(mode, w))
	case FormatJSON:
		err = WriteJSON(cw, r)
	case FormatYAML:
		err = WriteYAML(cw, r)
	default:
		err = fmt.Errorf("output format %q not recognized, supported formats are %v", format, SupportedFormats)
	}
	return cw.n, err
}
