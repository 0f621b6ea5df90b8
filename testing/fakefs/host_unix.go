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

package fakefs

import (
	"path"
	"syscall"
)

// Owner sets the uid and gid reported for an existing path.
func (h *Host) Owner(p string, uid, gid uint32) *Host {
	p = path.Clean(p)
	n := h.Nodes[p]
	n.Sys = &syscall.Stat_t{Uid: uid, Gid: gid}
	h.Nodes[p] = n
	return h
}
