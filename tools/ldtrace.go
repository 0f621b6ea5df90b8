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
	"errors"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const searchPathMarker = "search path="

var errNoSearchPath = errors.New("loader trace reported no search path")

// LoaderTrace learns the loader's default search path from its debug output.
//
// It runs a probe program with LD_DEBUG=libs and a random, unresolvable name
// in LD_PRELOAD. The loader has to search its default directories for the
// preload object and prints them before giving up on it; the probe itself
// still runs normally. The trace format is glibc specific.
type LoaderTrace struct {
	// Probe is any dynamically linked program that exits quickly.
	Probe   string
	Timeout time.Duration
	// Token returns the preload name. Defaults to a random 32 character token.
	Token func() string
}

// DefaultSearchPath runs the trace and returns the directories of the first
// reported search path.
func (t *LoaderTrace) DefaultSearchPath(ctx context.Context) ([]string, error) {
	token := randomToken
	if t.Token != nil {
		token = t.Token
	}
	env := append(loaderEnv(os.Environ()), "LD_DEBUG=libs", "LD_PRELOAD="+token(), "LC_ALL=C")
	res, err := Run(ctx, Command{Name: t.Probe, Env: env, Timeout: t.Timeout})
	if err != nil {
		return nil, err
	}
	dirs := parseSearchPath(res.Stderr)
	if len(dirs) == 0 {
		return nil, errNoSearchPath
	}
	return dirs, nil
}

// loaderEnv drops the variables that would put non-default directories or
// output in front of the system search path.
func loaderEnv(environ []string) []string {
	var env []string
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		switch name {
		case "LD_LIBRARY_PATH", "LD_PRELOAD", "LD_DEBUG", "LD_DEBUG_OUTPUT", "LC_ALL":
			continue
		}
		env = append(env, kv)
	}
	return env
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// parseSearchPath extracts the directories from the first line like
//
//	12345:	 search path=/lib/x86_64-linux-gnu:/usr/lib		(system search path)
func parseSearchPath(trace []byte) []string {
	s := bufio.NewScanner(bytes.NewReader(trace))
	for s.Scan() {
		line := s.Text()
		i := strings.Index(line, searchPathMarker)
		if i < 0 {
			continue
		}
		value := line[i+len(searchPathMarker):]
		if j := strings.IndexAny(value, "\t("); j >= 0 {
			value = value[:j]
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		return strings.Split(value, ":")
	}
	return nil
}
