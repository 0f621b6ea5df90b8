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

// Package finding defines the security findings ldaudit reports.
package finding

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Severity of a finding.
type Severity int

// Severity values, in increasing order of importance.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityIssue
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityIssue:
		return "issue"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Category classifies what kind of search-order condition was detected.
type Category string

// Category values.
const (
	// EnvVarWritableDir: LD_LIBRARY_PATH or LD_RUN_PATH names a writable directory.
	EnvVarWritableDir Category = "EnvVarWritableDir"
	// CurrentDirInSearchPath: a search list contains an empty segment or ".".
	CurrentDirInSearchPath Category = "CurrentDirInSearchPath"
	// WritableSearchDir: a directory consulted by the shell or the linker is writable.
	WritableSearchDir Category = "WritableSearchDir"
	// WritableTarget: a program or library found in a search directory is writable.
	WritableTarget Category = "WritableTarget"
	// PreloadHijack: /etc/ld.so.preload or a library it lists can be replaced.
	PreloadHijack Category = "PreloadHijack"
	// ConfigWritable: an ld.so.conf file is writable.
	ConfigWritable Category = "ConfigWritable"
	// RpathHijack: an RPATH or RUNPATH directory is writable.
	RpathHijack Category = "RpathHijack"
	// MissingDependency: a needed library can't be found and could be planted.
	MissingDependency Category = "MissingDependency"
	// SanitizerSetuid: a binary links a sanitizer runtime.
	SanitizerSetuid Category = "SanitizerSetuid"
	// InterpreterWritable: the program interpreter of a binary is writable.
	InterpreterWritable Category = "InterpreterWritable"
	// RootExecution: the audit ran as the superuser, so writability results
	// don't reflect what an unprivileged user can do.
	RootExecution Category = "RootExecution"
)

// Finding is one detected condition. Findings are never modified once created.
type Finding struct {
	Severity Severity `json:"severity" yaml:"severity"`
	// Subject is the path the finding is about.
	Subject  string   `json:"subject" yaml:"subject"`
	Category Category `json:"category" yaml:"category"`
	Message  string   `json:"message" yaml:"message"`
	// Plugins are the detectors that reported the finding.
	Plugins []string `json:"plugins,omitempty" yaml:"plugins,omitempty"`
}

// New returns a finding.
func New(sev Severity, cat Category, subject, format string, args ...any) *Finding {
	return &Finding{
		Severity: sev,
		Subject:  subject,
		Category: cat,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (f *Finding) String() string {
	return fmt.Sprintf("%s %s %s: %s", f.Severity, f.Category, f.Subject, f.Message)
}

// Compare orders findings by decreasing severity, then category, subject and
// message.
func Compare(a, b *Finding) int {
	if c := cmp.Compare(b.Severity, a.Severity); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Category, b.Category); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Subject, b.Subject); c != 0 {
		return c
	}
	return cmp.Compare(a.Message, b.Message)
}

// Sort sorts findings in place with Compare.
func Sort(findings []*Finding) { slices.SortStableFunc(findings, Compare) }

// Accumulator collects findings from concurrent workers. The zero value is
// ready to use.
type Accumulator struct {
	mu       sync.Mutex
	findings []*Finding
}

// Add appends findings.
func (a *Accumulator) Add(f ...*Finding) {
	if len(f) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.findings = append(a.findings, f...)
}

// Findings returns a copy of everything added so far, in no particular order.
func (a *Accumulator) Findings() []*Finding {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.findings)
}

// Len returns the number of findings added so far.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.findings)
}

// Count returns the number of findings per severity.
func Count(findings []*Finding) map[Severity]int {
	counts := map[Severity]int{}
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
