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

//go:build unix

package fs

import (
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// OSHost is the Host backed by the running system.
type OSHost struct{}

// EvalSymlinks resolves symlinks through filepath.EvalSymlinks.
func (OSHost) EvalSymlinks(path string) (string, error) { return filepath.EvalSymlinks(path) }

// Stat calls os.Stat.
func (OSHost) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// ReadDir calls os.ReadDir.
func (OSHost) ReadDir(path string) ([]fs.DirEntry, error) { return os.ReadDir(path) }

// Writable asks the kernel with the effective uid and gid (AT_EACCESS), so
// ACLs, read-only mounts and supplementary groups are taken into account.
func (OSHost) Writable(path string) bool {
	return unix.Faccessat(unix.AT_FDCWD, path, unix.W_OK, unix.AT_EACCESS) == nil
}
