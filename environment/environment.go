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

// Package environment captures the process state that influences program and
// library search order into an immutable snapshot taken once at startup.
package environment

import (
	"os"
	"path/filepath"
	"strings"
)

// Variable names read into a Snapshot.
const (
	VarPath          = "PATH"
	VarLDLibraryPath = "LD_LIBRARY_PATH"
	VarLDRunPath     = "LD_RUN_PATH"
)

// Snapshot is the audited environment. The zero value describes an empty
// environment.
type Snapshot struct {
	// Vars holds the search-path variables that were set. A variable that is set
	// but empty is present with an empty value.
	Vars map[string]string
	// WorkDir is the working directory relative paths resolve against.
	WorkDir string
	// UID and EUID of the auditing process.
	UID  int
	EUID int
}

// FromProcess snapshots the current process.
func FromProcess() Snapshot {
	s := Snapshot{
		Vars: map[string]string{},
		UID:  os.Getuid(),
		EUID: os.Geteuid(),
	}
	for _, name := range []string{VarPath, VarLDLibraryPath, VarLDRunPath} {
		if v, ok := os.LookupEnv(name); ok {
			s.Vars[name] = v
		}
	}
	if wd, err := os.Getwd(); err == nil {
		s.WorkDir = wd
	}
	return s
}

// Lookup returns the value of a variable and whether it was set.
func (s Snapshot) Lookup(name string) (string, bool) {
	v, ok := s.Vars[name]
	return v, ok
}

// IsSuperuser reports whether the audit runs with an effective uid of 0.
func (s Snapshot) IsSuperuser() bool { return s.EUID == 0 }

// Abs makes p absolute against the snapshot working directory. It doesn't
// clean the result: ".." has to be resolved after symlinks, so "bin/../lib"
// stays as is until it reaches EvalSymlinks.
func (s Snapshot) Abs(p string) string {
	if filepath.IsAbs(p) || s.WorkDir == "" {
		return p
	}
	return strings.TrimSuffix(s.WorkDir, "/") + "/" + p
}

// WithVar returns a copy of s with the variable set.
func (s Snapshot) WithVar(name, value string) Snapshot {
	vars := make(map[string]string, len(s.Vars)+1)
	for k, v := range s.Vars {
		vars[k] = v
	}
	vars[name] = value
	s.Vars = vars
	return s
}
