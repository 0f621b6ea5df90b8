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

// Package fs provides the filesystem views ldaudit audits: a virtual FS rooted at
// the system root for reading linker configuration, and a Host interface for
// resolving, stat-ing and permission-testing absolute paths.
package fs

import (
	"io/fs"
	"os"
)

// FS is a filesystem interface that allows the opening of files, reading of
// directories, and performing stat on files. Paths are relative to the FS root,
// e.g. "etc/ld.so.conf".
type FS interface {
	fs.FS
	fs.ReadDirFS
	fs.StatFS
}

// DirFS returns an FS implementation that accesses the real filesystem at the given root.
func DirFS(root string) FS {
	return os.DirFS(root).(FS)
}

// Host gives access to absolute paths on the audited host. All permission
// answers are given for the effective user of the current process.
type Host interface {
	// EvalSymlinks returns the path name after the evaluation of any symbolic links.
	EvalSymlinks(path string) (string, error)
	// Stat returns the FileInfo of the named file, following symlinks.
	Stat(path string) (fs.FileInfo, error)
	// ReadDir lists the entries of the named directory.
	ReadDir(path string) ([]fs.DirEntry, error)
	// Writable reports whether the effective user could write to path.
	Writable(path string) bool
}
