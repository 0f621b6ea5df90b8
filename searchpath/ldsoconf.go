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

package searchpath

import (
	"bufio"
	"io"
	"strings"
)

// Paths of the linker configuration, relative to the system root.
const (
	PreloadPath = "etc/ld.so.preload"
	ConfPath    = "etc/ld.so.conf"
	ConfDGlob   = "etc/ld.so.conf.d/*.conf"
)

// ParsePreload returns the library paths listed in an ld.so.preload file, one
// per non-empty, non-comment line.
func ParsePreload(r io.Reader) []string {
	var paths []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}

// ParseConf returns the directories listed in an ld.so.conf style file.
// Comments, include and hwcap directives, and anything that isn't an
// absolute path are ignored. Includes are not followed.
func ParseConf(r io.Reader) []string {
	var dirs []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
			continue
		}
		dirs = append(dirs, fields[0])
	}
	return dirs
}
