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

// Package fakedetector provides a Detector implementation to be used in tests.
package fakedetector

import (
	"context"

	"github.com/google/ldaudit/detector"
	"github.com/google/ldaudit/finding"
	"github.com/google/ldaudit/plugin"
)

// fakeDetector is an Detector implementation to be used in tests.
// It returns predefined findings or error.
type fakeDetector struct {
	DetName    string
	DetVersion int
	Reqs       *plugin.Capabilities
	Findings   []*finding.Finding
	Err        error
}

// New returns a fake detector.
//
// The detector returns copies of the specified findings and the error.
func New(name string, version int, findings []*finding.Finding, err error) detector.Detector {
	return &fakeDetector{
		DetName:    name,
		DetVersion: version,
		Findings:   findings,
		Err:        err,
	}
}

// Name returns the detector's name.
func (d *fakeDetector) Name() string { return d.DetName }

// Version returns the detector's version.
func (d *fakeDetector) Version() int { return d.DetVersion }

// Requirements returns the detector's requirements.
func (d *fakeDetector) Requirements() *plugin.Capabilities {
	if d.Reqs == nil {
		return &plugin.Capabilities{}
	}
	return d.Reqs
}

// Scan always returns the same predefined findings or error.
func (d *fakeDetector) Scan(ctx context.Context, sc *detector.ScanContext) ([]*finding.Finding, error) {
	var res []*finding.Finding
	for _, f := range d.Findings {
		c := *f
		res = append(res, &c)
	}
	return res, d.Err
}

// Option is an option that can be set when creating a new fake detector
type Option func(*fakeDetector)

// WithName sets the fake detector's name.
func WithName(name string) Option {
	return func(fd *fakeDetector) {
		fd.DetName = name
	}
}

// WithVersion sets the fake detector's version.
func WithVersion(version int) Option {
	return func(fd *fakeDetector) {
		fd.DetVersion = version
	}
}

// WithRequirements sets the fake detector's requirements.
func WithRequirements(reqs *plugin.Capabilities) Option {
	return func(fd *fakeDetector) {
		fd.Reqs = reqs
	}
}

// WithFindings sets the fake detector's findings that are returned when Scan() is called.
func WithFindings(findings ...*finding.Finding) Option {
	return func(fd *fakeDetector) {
		fd.Findings = findings
	}
}

// WithErr sets the fake detector's error that is returned when Scan() is called.
func WithErr(err error) Option {
	return func(fd *fakeDetector) {
		fd.Err = err
	}
}

// NewWithOptions creates a new fake detector with its properties set according to opts.
func NewWithOptions(opts ...Option) detector.Detector {
	fd := &fakeDetector{}
	for _, opt := range opts {
		opt(fd)
	}
	return fd
}
