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

package tools

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// LddResolver resolves dependencies by running ldd.
//
// Depending on the C library, ldd may run the audited file's interpreter. The
// audited files are those already on the user's search path, so this exposes
// nothing the user's shell wouldn't.
type LddResolver struct {
	// Path of the ldd binary.
	Path    string
	Timeout time.Duration
}

// ResolveDependencies runs ldd on path.
func (r *LddResolver) ResolveDependencies(ctx context.Context, path string) ([]Dependency, error) {
	res, err := Run(ctx, Command{
		Name:    r.Path,
		Args:    []string{path},
		Env:     append(os.Environ(), "LC_ALL=C"),
		Timeout: r.Timeout,
	})
	if err != nil {
		return nil, err
	}
	out := append(append([]byte{}, res.Stdout...), res.Stderr...)
	if res.ExitCode != 0 {
		if isStaticOrNotDynamic(out) {
			return nil, nil
		}
		return nil, fmt.Errorf("ldd %s: exit code %d: %s", path, res.ExitCode, bytes.TrimSpace(res.Stderr))
	}
	return parseLdd(res.Stdout), nil
}

func isStaticOrNotDynamic(out []byte) bool {
	return bytes.Contains(out, []byte("not a dynamic executable")) ||
		bytes.Contains(out, []byte("statically linked"))
}

// parseLdd understands the three glibc line formats:
//
//	libfoo.so.1 => /usr/lib/libfoo.so.1 (0x00007f...)
//	libbar.so.2 => not found
//	/lib64/ld-linux-x86-64.so.2 (0x00007f...)
func parseLdd(out []byte) []Dependency {
	var deps []Dependency
	s := bufio.NewScanner(bytes.NewReader(out))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.Contains(line, "statically linked") {
			continue
		}
		name, rest, found := strings.Cut(line, " => ")
		if !found {
			fields := strings.Fields(line)
			d := Dependency{Name: fields[0]}
			if strings.HasPrefix(fields[0], "/") {
				d.Path = fields[0]
			}
			deps = append(deps, d)
			continue
		}
		name = strings.TrimSpace(name)
		rest = strings.TrimSpace(rest)
		if rest == "not found" {
			deps = append(deps, Dependency{Name: name, Missing: true})
			continue
		}
		p, _, _ := strings.Cut(rest, " (")
		deps = append(deps, Dependency{Name: name, Path: strings.TrimSpace(p)})
	}
	return deps
}
