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

// Package risk evaluates what the current effective user can do to a path:
// whether it exists, what it is, and whether it or its directory is writable.
package risk

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/ldaudit/environment"
	scanfs "github.com/google/ldaudit/fs"
)

// Relocatable-origin tokens the dynamic linker substitutes with the directory
// of the binary declaring the search path.
var originTokens = []string{"${ORIGIN}", "$ORIGIN"}

// Assessment is the verdict on one path.
type Assessment struct {
	// Raw is the path as given, before expansion.
	Raw string
	// Resolved is the absolute, symlink-free path. If the path doesn't exist
	// only its directory is resolved, or nothing when that is missing too.
	Resolved     string
	Exists       bool
	IsDir        bool
	IsRegular    bool
	IsExecutable bool
	IsSetuid     bool
	// Writable reports whether the current user can write to the path itself.
	Writable bool
	// ParentWritable reports whether the current user can write to the
	// directory containing the path, i.e. create or replace it.
	ParentWritable bool
	// ParentSticky reports that the writable directory containing the path
	// has the sticky bit set and belongs to another user. Only owners can
	// rename or remove files in it.
	ParentSticky bool
	// OwnedByOther reports that the path exists and belongs to a user other
	// than the effective one.
	OwnedByOther bool
	// CurrentDirMarker is set for "" and ".", which are reported without any
	// filesystem access.
	CurrentDirMarker bool
}

// Applicable reports whether the assessed path can be the subject of a
// finding: it exists, or it is the current directory marker.
func (a Assessment) Applicable() bool { return a.Exists || a.CurrentDirMarker }

// Replaceable reports whether the path can be created or replaced through its
// directory. In a sticky directory an existing file of another user can't be.
func (a Assessment) Replaceable() bool {
	return a.ParentWritable && !(a.Exists && a.ParentSticky && a.OwnedByOther)
}

// Checker assesses paths on a host for the effective user of the process.
type Checker struct {
	host scanfs.Host
	env  environment.Snapshot
}

// NewChecker returns a Checker resolving relative paths against the working
// directory of env.
func NewChecker(host scanfs.Host, env environment.Snapshot) *Checker {
	return &Checker{host: host, env: env}
}

// Host returns the host the checker reads from.
func (c *Checker) Host() scanfs.Host { return c.host }

// ExpandOrigin replaces every relocatable-origin token in raw with base.
// The result is not cleaned, so "$ORIGIN/../lib" with base "/usr/bin" yields
// "/usr/bin/../lib".
func ExpandOrigin(raw, base string) string {
	if base == "" {
		return raw
	}
	for _, tok := range originTokens {
		raw = strings.ReplaceAll(raw, tok, base)
	}
	return raw
}

// IsCurrentDir reports whether raw denotes the current working directory.
func IsCurrentDir(raw string) bool { return raw == "" || raw == "." }

// Assess evaluates raw. relativeBase is the directory of the binary that
// declared raw, or empty.
func (c *Checker) Assess(raw, relativeBase string) Assessment {
	a := Assessment{Raw: raw}
	if IsCurrentDir(raw) {
		a.CurrentDirMarker = true
		return a
	}

	abs := c.env.Abs(ExpandOrigin(raw, relativeBase))
	dir, ok := c.parentDir(abs)
	a.ParentWritable = ok && c.host.Writable(dir)
	// Fallback for paths that don't resolve: the resolved directory plus the
	// name, or the lexical path when the directory is missing too.
	a.Resolved = filepath.Clean(abs)
	if name := filepath.Base(abs); ok && name != "." && name != ".." {
		a.Resolved = filepath.Join(dir, name)
	}

	resolved, err := c.host.EvalSymlinks(abs)
	if err != nil {
		a.ParentSticky = a.ParentWritable && c.stickyForUser(dir)
		return a
	}
	info, err := c.host.Stat(resolved)
	if err != nil {
		a.ParentSticky = a.ParentWritable && c.stickyForUser(dir)
		return a
	}
	a.Resolved = resolved
	a.Exists = true
	a.IsDir = info.IsDir()
	a.IsRegular = info.Mode().IsRegular()
	a.IsExecutable = a.IsRegular && info.Mode().Perm()&0o111 != 0
	a.IsSetuid = info.Mode()&fs.ModeSetuid != 0
	a.Writable = c.host.Writable(resolved)
	if uid, _, ok := scanfs.Owner(info); ok && !c.env.IsSuperuser() {
		a.OwnedByOther = int(uid) != c.env.EUID
	}
	// A symlinked file can also be replaced through the directory its final
	// target lives in.
	if !a.ParentWritable {
		if d := filepath.Dir(resolved); d != resolved {
			dir = d
			a.ParentWritable = c.host.Writable(dir)
		}
	}
	a.ParentSticky = a.ParentWritable && c.stickyForUser(dir)
	return a
}

// parentDir returns the symlink-free directory containing p. The directory
// part is resolved before ".." is applied, so "/bin/../lib" is looked up in
// the parent of wherever /bin points to.
func (c *Checker) parentDir(p string) (string, bool) {
	trimmed := strings.TrimRight(p, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return "", false
	}
	if base := trimmed[i+1:]; base == "." || base == ".." {
		// The name only becomes known once p itself is resolved.
		resolved, err := c.host.EvalSymlinks(p)
		if err != nil {
			return "", false
		}
		dir := filepath.Dir(resolved)
		return dir, dir != resolved
	}
	dir := trimmed[:i]
	if dir == "" {
		dir = "/"
	}
	resolved, err := c.host.EvalSymlinks(dir)
	if err != nil {
		return "", false
	}
	return resolved, true
}

// stickyForUser reports whether dir has the sticky bit and restricts the
// effective user, i.e. it is neither the superuser nor the directory owner.
func (c *Checker) stickyForUser(dir string) bool {
	if c.env.IsSuperuser() {
		return false
	}
	info, err := c.host.Stat(dir)
	if err != nil || info.Mode()&fs.ModeSticky == 0 {
		return false
	}
	uid, _, ok := scanfs.Owner(info)
	return !ok || int(uid) != c.env.EUID
}
