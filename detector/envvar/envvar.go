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

// Package envvar detects writable directories and current directory markers in
// LD_LIBRARY_PATH and LD_RUN_PATH.
package envvar

import (
	"context"

	"github.com/google/ldaudit/classifier"
	"github.com/google/ldaudit/detector"
	"github.com/google/ldaudit/finding"
	"github.com/google/ldaudit/plugin"
	"github.com/google/ldaudit/searchpath"
)

// Name of the detector.
const Name = "envvar"

// Detector checks the library search path variables of the environment.
type Detector struct{}

// New returns a new envvar detector.
func New() detector.Detector { return &Detector{} }

// Name of the detector.
func (Detector) Name() string { return Name }

// Version of the detector.
func (Detector) Version() int { return 0 }

// Requirements of the Detector.
func (Detector) Requirements() *plugin.Capabilities {
	return &plugin.Capabilities{OS: plugin.OSUnix, RunningSystem: true}
}

// Scan classifies every LD_LIBRARY_PATH and LD_RUN_PATH entry.
func (Detector) Scan(ctx context.Context, sc *detector.ScanContext) ([]*finding.Finding, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var findings []*finding.Finding
	for _, e := range sc.EntriesFrom(searchpath.OriginLDLibraryPath, searchpath.OriginLDRunPath) {
		findings = append(findings, classifier.EnvVarDir(e, sc.Checker.Assess(e.Raw, ""))...)
	}
	return findings, nil
}
