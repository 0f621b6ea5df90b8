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
	"time"

	"github.com/google/ldaudit/log"
)

// Backends of the metadata reader.
const (
	BackendReadelf = "readelf"
	BackendELF     = "elf"
)

// Config selects and locates the external tools.
type Config struct {
	// Backend is BackendReadelf (default) or BackendELF.
	Backend     string
	ReadelfPath string
	LddPath     string
	// TraceProbe is the program run under the loader trace.
	TraceProbe string
	Timeout    time.Duration
}

// DefaultConfig returns the tools found on PATH with the default timeout.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendReadelf,
		ReadelfPath: "readelf",
		LddPath:     "ldd",
		TraceProbe:  "/bin/true",
		Timeout:     DefaultTimeout,
	}
}

// Set is the collection of tool implementations a scan uses. A nil member
// means the capability is unavailable and the checks depending on it are
// skipped.
type Set struct {
	Metadata     MetadataReader
	Dependencies DependencyResolver
	Tracer       LoaderTracer
	// Available lists the logical names of the usable tools.
	Available []string
}

// NewSet looks up every configured tool and builds the default implementations
// for the ones that exist. Missing tools are logged once here.
func NewSet(cfg Config) *Set {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	s := &Set{}

	switch cfg.Backend {
	case BackendELF:
		s.Metadata = ELFReader{}
		s.Available = append(s.Available, Readelf)
	default:
		if p, err := LookPath(cfg.ReadelfPath); err == nil {
			s.Metadata = &ReadelfReader{Path: p, Timeout: cfg.Timeout}
			s.Available = append(s.Available, Readelf)
		} else {
			log.Warnf("%v: RPATH, RUNPATH and interpreter checks are disabled", err)
		}
	}

	if p, err := LookPath(cfg.LddPath); err == nil {
		s.Dependencies = &LddResolver{Path: p, Timeout: cfg.Timeout}
		s.Available = append(s.Available, Ldd)
	} else {
		log.Warnf("%v: missing dependency and sanitizer checks are disabled", err)
	}

	if p, err := LookPath(cfg.TraceProbe); err == nil {
		s.Tracer = &LoaderTrace{Probe: p, Timeout: cfg.Timeout}
		s.Available = append(s.Available, Loader)
	} else {
		log.Warnf("%v: the linker default search path won't be audited", err)
	}

	return s
}
