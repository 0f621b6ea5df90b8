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

// Package ldsopreload detects /etc/ld.so.preload setups that let the current
// user inject a library into every dynamically linked process, including
// setuid binaries and root services.
// Reference: https://attack.mitre.org/techniques/T1574/006/
package ldsopreload

import (
	"context"
	"path/filepath"

	"github.com/google/ldaudit/classifier"
	"github.com/google/ldaudit/detector"
	"github.com/google/ldaudit/finding"
	scanfs "github.com/google/ldaudit/fs"
	"github.com/google/ldaudit/plugin"
	"github.com/google/ldaudit/searchpath"
)

const (
	// Name of the detector.
	Name = "ldsopreload"

	// preloadPath is the absolute path of the preload list.
	preloadPath = "/" + searchpath.PreloadPath
)

// Detector checks the preload list and the libraries it names.
type Detector struct{}

// New returns a new ld.so.preload detector.
func New() detector.Detector { return &Detector{} }

// Name of the detector.
func (Detector) Name() string { return Name }

// Version of the detector.
func (Detector) Version() int { return 0 }

// Requirements of the Detector.
func (Detector) Requirements() *plugin.Capabilities {
	return &plugin.Capabilities{OS: plugin.OSLinux, RunningSystem: true}
}

// Scan classifies the preload list, the directories leading to it and every
// library it lists.
func (Detector) Scan(ctx context.Context, sc *detector.ScanContext) ([]*finding.Finding, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	a := sc.Checker.Assess(preloadPath, "")
	findings := classifier.PreloadFile(a)

	subjects := parentDirs(preloadPath)
	if a.Exists {
		subjects = append([]string{a.Resolved}, subjects...)
	}
	for _, p := range subjects {
		findings = append(findings, ownershipFindings(sc, p)...)
	}

	for _, e := range sc.EntriesFrom(searchpath.OriginLdSoPreload) {
		findings = append(findings, classifier.PreloadEntry(e, sc.Checker.Assess(e.Raw, ""))...)
	}
	return findings, nil
}

// parentDirs lists the ancestor directories of p, closest first.
func parentDirs(p string) []string {
	var dirs []string
	for dir := filepath.Dir(p); ; dir = filepath.Dir(dir) {
		dirs = append(dirs, dir)
		if dir == "/" || dir == "." {
			return dirs
		}
	}
}

// ownershipFindings warns about a path leading to the preload list that isn't
// owned by root: its owner can replace the list even if the current user can't.
func ownershipFindings(sc *detector.ScanContext, p string) []*finding.Finding {
	info, err := sc.Checker.Host().Stat(p)
	if err != nil {
		return nil
	}
	uid, gid, ok := scanfs.Owner(info)
	if !ok {
		return nil
	}
	var findings []*finding.Finding
	if uid != 0 {
		findings = append(findings, finding.New(finding.SeverityWarning, finding.PreloadHijack, p,
			"not owned by root (uid: %d): its owner can inject a library into every process through the preload list", uid))
	}
	if gid != 0 && info.Mode().Perm()&0o020 != 0 {
		findings = append(findings, finding.New(finding.SeverityWarning, finding.PreloadHijack, p,
			"group-writable and not group-owned by root (gid: %d): group members can inject a library through the preload list", gid))
	}
	return findings
}
