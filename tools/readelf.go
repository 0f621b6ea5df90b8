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
	"regexp"
	"time"
)

var (
	dynPathRe = regexp.MustCompile(`\((RPATH|RUNPATH)\)\s+Library (?:rpath|runpath): \[(.*)\]`)
	interpRe  = regexp.MustCompile(`\[Requesting program interpreter: (.*)\]`)
	notELFRe  = regexp.MustCompile(`Not an ELF file|not a dynamic object|File format not recognized`)
)

// ReadelfReader reads metadata by running `readelf -d -l -W`.
type ReadelfReader struct {
	// Path of the readelf binary.
	Path    string
	Timeout time.Duration
}

// ReadMetadata runs readelf on path and parses the dynamic section and program headers.
func (r *ReadelfReader) ReadMetadata(ctx context.Context, path string) (*Metadata, error) {
	res, err := Run(ctx, Command{
		Name:    r.Path,
		Args:    []string{"-d", "-l", "-W", path},
		Env:     append(os.Environ(), "LC_ALL=C"),
		Timeout: r.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		if notELFRe.Match(res.Stderr) {
			return nil, ErrNotELF
		}
		return nil, fmt.Errorf("readelf %s: exit code %d: %s", path, res.ExitCode, bytes.TrimSpace(res.Stderr))
	}
	return parseReadelf(res.Stdout), nil
}

func parseReadelf(out []byte) *Metadata {
	md := &Metadata{}
	s := bufio.NewScanner(bytes.NewReader(out))
	for s.Scan() {
		line := s.Text()
		if m := dynPathRe.FindStringSubmatch(line); m != nil {
			if m[1] == "RPATH" {
				md.Rpath = append(md.Rpath, m[2])
			} else {
				md.Runpath = append(md.Runpath, m[2])
			}
			continue
		}
		if m := interpRe.FindStringSubmatch(line); m != nil && md.Interpreter == "" {
			md.Interpreter = m[1]
		}
	}
	return md
}
