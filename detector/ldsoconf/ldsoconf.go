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

// Package ldsoconf detects writable dynamic linker configuration: a user who
// can edit /etc/ld.so.conf or add a fragment to /etc/ld.so.conf.d controls
// the library search path of the whole system after the next ldconfig run.
package ldsoconf

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/google/ldaudit/classifier"
	"github.com/google/ldaudit/detector"
	"github.com/google/ldaudit/finding"
	"github.com/google/ldaudit/plugin"
	"github.com/google/ldaudit/searchpath"
)

// Name of the detector.
const Name = "ldsoconf"

// confDir is the directory holding the configuration fragments.
var confDir = "/" + filepath.Dir(searchpath.ConfDGlob)

// Detector checks the linker configuration files.
type Detector struct{}

// New returns a new ld.so.conf detector.
func New() detector.Detector { return &Detector{} }

// Name of the detector.
func (Detector) Name() string { return Name }

// Version of the detector.
func (Detector) Version() int { return 0 }

// Requirements of the Detector.
func (Detector) Requirements() *plugin.Capabilities {
	return &plugin.Capabilities{OS: plugin.OSLinux, RunningSystem: true}
}

// Scan classifies every existing configuration file and the fragment directory.
func (Detector) Scan(ctx context.Context, sc *detector.ScanContext) ([]*finding.Finding, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var findings []*finding.Finding
	for _, p := range append(slices.Clone(sc.ConfigFiles), confDir) {
		findings = append(findings, classifier.ConfigFile(sc.Checker.Assess(p, ""))...)
	}
	return findings, nil
}
