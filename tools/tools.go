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

// Package tools wraps the external programs ldaudit consults behind capability
// interfaces: an object metadata reader, a dependency resolver and a dynamic
// loader tracer. Each has a subprocess-backed default and can be replaced by a
// test double.
package tools

import (
	"context"
	"errors"
	"time"
)

// Logical tool names, as used in plugin capabilities.
const (
	Readelf = "readelf"
	Ldd     = "ldd"
	Loader  = "ld.so"
)

// DefaultTimeout bounds every subprocess invocation.
const DefaultTimeout = 10 * time.Second

var (
	// ErrToolUnavailable is returned when a required tool can't be found.
	ErrToolUnavailable = errors.New("tool unavailable")
	// ErrNotELF is returned by metadata readers for files that aren't ELF objects.
	ErrNotELF = errors.New("not an ELF file")
)

// Metadata holds the link-time attributes read from an object file. Rpath and
// Runpath contain the raw dynamic-section strings in declaration order,
// unsplit and unexpanded.
type Metadata struct {
	Rpath       []string
	Runpath     []string
	Interpreter string
}

// MetadataReader reads RPATH, RUNPATH and the program interpreter of a file.
type MetadataReader interface {
	ReadMetadata(ctx context.Context, path string) (*Metadata, error)
}

// Dependency is one shared object reported by a DependencyResolver.
type Dependency struct {
	Name string
	// Path is the resolved location, empty for virtual objects and missing libraries.
	Path    string
	Missing bool
}

// DependencyResolver lists the shared objects a file needs at run time.
// Statically linked files yield no dependencies and no error.
type DependencyResolver interface {
	ResolveDependencies(ctx context.Context, path string) ([]Dependency, error)
}

// LoaderTracer reports the directories the dynamic loader searches by default,
// in search order.
type LoaderTracer interface {
	DefaultSearchPath(ctx context.Context) ([]string, error)
}
