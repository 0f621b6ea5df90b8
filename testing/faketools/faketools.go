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

// Package faketools provides canned implementations of the tool capability
// interfaces for tests.
package faketools

import (
	"context"

	"github.com/google/ldaudit/tools"
)

// MetadataReader returns the metadata registered for a path. Unknown paths are
// reported as non-ELF files.
type MetadataReader struct {
	Files map[string]*tools.Metadata
	Errs  map[string]error
}

// ReadMetadata implements tools.MetadataReader.
func (r *MetadataReader) ReadMetadata(_ context.Context, path string) (*tools.Metadata, error) {
	if err, ok := r.Errs[path]; ok {
		return nil, err
	}
	md, ok := r.Files[path]
	if !ok {
		return nil, tools.ErrNotELF
	}
	c := *md
	return &c, nil
}

// DependencyResolver returns the dependencies registered for a path. Unknown
// paths have no dependencies.
type DependencyResolver struct {
	Files map[string][]tools.Dependency
	Errs  map[string]error
}

// ResolveDependencies implements tools.DependencyResolver.
func (r *DependencyResolver) ResolveDependencies(_ context.Context, path string) ([]tools.Dependency, error) {
	if err, ok := r.Errs[path]; ok {
		return nil, err
	}
	return append([]tools.Dependency(nil), r.Files[path]...), nil
}

// LoaderTracer returns a fixed search path or error.
type LoaderTracer struct {
	Dirs []string
	Err  error
}

// DefaultSearchPath implements tools.LoaderTracer.
func (t *LoaderTracer) DefaultSearchPath(context.Context) ([]string, error) {
	if t.Err != nil {
		return nil, t.Err
	}
	return append([]string(nil), t.Dirs...), nil
}

var (
	_ tools.MetadataReader     = (*MetadataReader)(nil)
	_ tools.DependencyResolver = (*DependencyResolver)(nil)
	_ tools.LoaderTracer       = (*LoaderTracer)(nil)
)
