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

// Package detectorrunner provides a Run function to help with running detectors
package detectorrunner

import (
	"context"
	"errors"
	"time"

	"github.com/google/ldaudit/detector"
	"github.com/google/ldaudit/finding"
	"github.com/google/ldaudit/log"
	"github.com/google/ldaudit/plugin"
	"github.com/google/ldaudit/stats"
	"go.uber.org/multierr"
)

// Run runs the specified detectors and returns their findings,
// as well as info about whether the plugin runs completed successfully.
// Detectors run one after the other; each one parallelizes internally.
func Run(ctx context.Context, c stats.Collector, detectors []detector.Detector, sc *detector.ScanContext) ([]*finding.Finding, []*plugin.Status, error) {
	findings := []*finding.Finding{}
	status := []*plugin.Status{}
	for _, d := range detectors {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		if missing := plugin.MissingTools(d, sc.Capabilities); len(missing) > 0 {
			log.Debugf("%s runs without %v, some of its checks are skipped", d.Name(), missing)
		}
		start := time.Now()
		results, err := d.Scan(ctx, sc)
		c.AfterDetectorRun(d.Name(), time.Since(start), err)
		findings = append(findings, tagged(results, d.Name())...)
		status = append(status, statusFromErr(d, len(results) > 0, err))
	}
	return findings, status, nil
}

// tagged returns copies of findings naming the detector that reported them.
// The detector's own findings are left as they are.
func tagged(findings []*finding.Finding, name string) []*finding.Finding {
	res := make([]*finding.Finding, 0, len(findings))
	for _, f := range findings {
		c := *f
		c.Plugins = []string{name}
		res = append(res, &c)
	}
	return res
}

// statusFromErr turns the errors of a detector into its status. Errors about
// single subjects become file errors and leave the run partially successful.
func statusFromErr(d detector.Detector, hasFindings bool, err error) *plugin.Status {
	var fileErrors []*plugin.FileError
	var other error
	for _, e := range multierr.Errors(err) {
		var subjErr *detector.SubjectError
		if errors.As(e, &subjErr) {
			fileErrors = append(fileErrors, &plugin.FileError{FilePath: subjErr.Path, ErrorMessage: subjErr.Err.Error()})
			continue
		}
		other = multierr.Append(other, e)
	}
	if other != nil {
		return plugin.StatusFromErr(d, hasFindings, other, fileErrors)
	}
	return plugin.StatusFromErr(d, true, plugin.OverallErrFromFileErrs(fileErrors), fileErrors)
}
