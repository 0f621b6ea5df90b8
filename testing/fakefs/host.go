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

package fakefs

import (
	"errors"
	"io/fs"
	"path"
	"slices"
	"strings"

	scanfs "github.com/google/ldaudit/fs"
)

const maxLinkHops = 40

var (
	errTooManyLinks = errors.New("too many levels of symbolic links")
	errNotDir       = errors.New("not a directory")
)

var _ scanfs.Host = (*Host)(nil)

// Node is one path on a fake Host.
type Node struct {
	Mode     fs.FileMode
	Writable bool
	// Link is the symlink target. Relative targets are resolved against the
	// link's directory.
	Link string
	// Sys is returned by FileInfo.Sys, e.g. a *syscall.Stat_t carrying the owner.
	Sys any
}

// Host is an in-memory implementation of the ldaudit fs.Host interface.
// Paths are absolute and slash-separated. Parents of added paths are created
// as read-only directories.
type Host struct {
	Nodes map[string]Node
}

// NewHost returns an empty Host containing only the root directory.
func NewHost() *Host {
	return &Host{Nodes: map[string]Node{"/": {Mode: fs.ModeDir | 0o755}}}
}

// Dir adds a directory.
func (h *Host) Dir(p string, writable bool) *Host {
	return h.add(p, Node{Mode: fs.ModeDir | 0o755, Writable: writable})
}

// StickyDir adds a directory with the sticky bit set, like /tmp.
func (h *Host) StickyDir(p string, writable bool) *Host {
	return h.add(p, Node{Mode: fs.ModeDir | fs.ModeSticky | 0o777, Writable: writable})
}

// File adds a regular file with the given permission bits (including setuid).
func (h *Host) File(p string, mode fs.FileMode, writable bool) *Host {
	return h.add(p, Node{Mode: mode, Writable: writable})
}

// Symlink adds a symlink at p pointing to target.
func (h *Host) Symlink(p, target string) *Host {
	return h.add(p, Node{Mode: fs.ModeSymlink | 0o777, Link: target})
}

func (h *Host) add(p string, n Node) *Host {
	p = path.Clean(p)
	for dir := path.Dir(p); dir != "/"; dir = path.Dir(dir) {
		if _, ok := h.Nodes[dir]; !ok {
			h.Nodes[dir] = Node{Mode: fs.ModeDir | 0o755}
		}
	}
	h.Nodes[p] = n
	return h
}

// EvalSymlinks resolves all symlinks in p. Components are walked in order, so
// ".." steps out of the directory a symlink resolved to rather than out of the
// link's own directory. It fails if a component is missing.
func (h *Host) EvalSymlinks(p string) (string, error) {
	rest := strings.Split(p, "/")
	cur := "/"
	hops := 0
	for len(rest) > 0 {
		part := rest[0]
		rest = rest[1:]
		switch part {
		case "", ".":
			continue
		case "..":
			cur = path.Dir(cur)
			continue
		}
		next := path.Join(cur, part)
		n, ok := h.Nodes[next]
		if !ok {
			return "", &fs.PathError{Op: "lstat", Path: next, Err: fs.ErrNotExist}
		}
		if n.Link == "" {
			if !n.Mode.IsDir() && slices.ContainsFunc(rest, func(s string) bool { return s != "" }) {
				return "", &fs.PathError{Op: "lstat", Path: next, Err: errNotDir}
			}
			cur = next
			continue
		}
		hops++
		if hops > maxLinkHops {
			return "", &fs.PathError{Op: "evalsymlinks", Path: p, Err: errTooManyLinks}
		}
		if path.IsAbs(n.Link) {
			cur = "/"
		}
		rest = append(strings.Split(n.Link, "/"), rest...)
	}
	return cur, nil
}

// Stat returns the info of the resolved node.
func (h *Host) Stat(p string) (fs.FileInfo, error) {
	resolved, err := h.EvalSymlinks(p)
	if err != nil {
		return nil, err
	}
	n := h.Nodes[resolved]
	return FakeFileInfo{FileName: path.Base(resolved), FileMode: n.Mode, FileSys: n.Sys}, nil
}

// ReadDir lists the direct children of a directory, sorted by name.
func (h *Host) ReadDir(p string) ([]fs.DirEntry, error) {
	resolved, err := h.EvalSymlinks(p)
	if err != nil {
		return nil, err
	}
	if !h.Nodes[resolved].Mode.IsDir() {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: errNotDir}
	}
	var entries []fs.DirEntry
	for name, n := range h.Nodes {
		if name == resolved || path.Dir(name) != resolved {
			continue
		}
		entries = append(entries, fs.FileInfoToDirEntry(FakeFileInfo{FileName: path.Base(name), FileMode: n.Mode}))
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int { return strings.Compare(a.Name(), b.Name()) })
	return entries, nil
}

// Writable reports the Writable flag of the resolved node. Missing paths are
// not writable.
func (h *Host) Writable(p string) bool {
	resolved, err := h.EvalSymlinks(p)
	if err != nil {
		return false
	}
	return h.Nodes[resolved].Writable
}
