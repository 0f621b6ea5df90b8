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

// Package ldaudit audits the dynamic linker configuration and the program
// search environment of a machine for search-order privilege escalation
// vectors: places where the current user can plant a library, a program or a
// linker configuration fragment that a more privileged process will pick up.
package ldaudit

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/ldaudit/detector"
	"github.com/google/ldaudit/detector/detectorrunner"
	"github.com/google/ldaudit/elfattr"
	"github.com/google/ldaudit/environment"
	"github.com/google/ldaudit/finding"
	scanfs "github.com/google/ldaudit/fs"
	"github.com/google/ldaudit/log"
	"github.com/google/ldaudit/plugin"
	"github.com/google/ldaudit/risk"
	"github.com/google/ldaudit/searchpath"
	"github.com/google/ldaudit/stats"
	"github.com/google/ldaudit/tools"
	"github.com/google/ldaudit/version"
	"go.uber.org/multierr"
)

var (
	errNoRoot = errors.New("no system root specified")
	errNoHost = errors.New("no host filesystem specified")
)

// Scanner is the main entry point of the scanner.
type Scanner struct{}

// New creates a new scanner instance.
func New() *Scanner { return &Scanner{} }

// ScanConfig stores the config settings of a scan run such as the detectors to
// use and the environment to audit.
type ScanConfig struct {
	Detectors []detector.Detector
	// Capabilities of the scanning environment. Detectors that need more than
	// this aren't run.
	Capabilities *plugin.Capabilities
	// Env is the audited environment, snapshotted once.
	Env environment.Snapshot
	// Root is the system root the linker configuration is read from.
	Root scanfs.FS
	// Host resolves and permission-tests absolute paths.
	Host scanfs.Host
	// Tools are the external tools to consult. Nil members disable the
	// checks depending on them.
	Tools *tools.Set
	// SkipDirGlob matches search directories whose files aren't listed.
	SkipDirGlob glob.Glob
	// Workers bounds concurrent directory listings and binary analyses.
	Workers int
	Stats   stats.Collector
}

// ValidatePluginRequirements checks that the scanning environment's capabilities satisfy
// the requirements of all enabled detectors.
func (cfg *ScanConfig) ValidatePluginRequirements() error {
	var errs error
	for _, d := range cfg.Detectors {
		errs = multierr.Append(errs, plugin.ValidateRequirements(d, cfg.Capabilities))
	}
	return errs
}

// ScanResult stores the results of a scan incl. scan status and findings.
type ScanResult struct {
	Version   string    `json:"version" yaml:"version"`
	StartTime time.Time `json:"start_time" yaml:"start_time"`
	EndTime   time.Time `json:"end_time" yaml:"end_time"`
	// Status of the overall scan.
	Status *plugin.ScanStatus `json:"status" yaml:"status"`
	// Status and versions of the plugins that ran.
	PluginStatus []*plugin.Status  `json:"plugins" yaml:"plugins"`
	Findings     []*finding.Finding `json:"findings" yaml:"findings"`
}

// Scan collects the search path entries of the configured environment and
// runs the detectors over them.
func (Scanner) Scan(ctx context.Context, config *ScanConfig) (sr *ScanResult) {
	if config.Stats == nil {
		config.Stats = stats.NoopCollector{}
	}
	defer func() {
		config.Stats.AfterScan(time.Since(sr.StartTime), sr.Status)
	}()
	sro := &newScanResultOptions{
		StartTime: time.Now(),
	}
	if err := config.ValidatePluginRequirements(); err != nil {
		sro.Err = err
	} else if config.Root == nil {
		sro.Err = errNoRoot
	} else if config.Host == nil {
		sro.Err = errNoHost
	}
	if sro.Err != nil {
		sro.EndTime = time.Now()
		return newScanResult(sro)
	}

	ts := config.Tools
	if ts == nil {
		ts = &tools.Set{}
	}
	collector := searchpath.NewCollector(config.Env, config.Root, ts.Tracer)
	checker := risk.NewChecker(config.Host, config.Env)
	sc := &detector.ScanContext{
		Env:          config.Env,
		Entries:      collector.Collect(ctx),
		ConfigFiles:  collector.ConfigFiles(),
		Checker:      checker,
		Extractor:    elfattr.New(checker, ts.Metadata, ts.Dependencies),
		SkipDir:      config.SkipDirGlob,
		Workers:      config.Workers,
		Stats:        config.Stats,
		Capabilities: config.Capabilities,
	}
	log.Debugf("collected %d search path entries", len(sc.Entries))

	findings, detectorStatus, err := detectorrunner.Run(ctx, config.Stats, config.Detectors, sc)
	sro.PluginStatus = detectorStatus
	sro.Findings = findings
	if err != nil {
		sro.Err = err
	}

	if config.Env.IsSuperuser() {
		log.Warnf("running as the superuser: every path is writable, findings don't reflect what an unprivileged user can do")
		sro.Findings = append(sro.Findings, finding.New(finding.SeverityWarning, finding.RootExecution, "/",
			"the audit ran with effective uid 0, so writability checks are meaningless; rerun as the user whose privileges you want to audit"))
	}

	sro.EndTime = time.Now()
	return newScanResult(sro)
}

type newScanResultOptions struct {
	StartTime    time.Time
	EndTime      time.Time
	PluginStatus []*plugin.Status
	Findings     []*finding.Finding
	Err          error
}

func newScanResult(o *newScanResultOptions) *ScanResult {
	status := &plugin.ScanStatus{}
	if o.Err != nil {
		status.Status = plugin.ScanStatusFailed
		status.FailureReason = o.Err.Error()
	} else {
		status.Status = plugin.ScanStatusSucceeded
		// If any plugin didn't fully succeed, set the overall scan status to partially succeeded.
		for _, pluginStatus := range o.PluginStatus {
			if pluginStatus.Status.Status != plugin.ScanStatusSucceeded {
				status.Status = plugin.ScanStatusPartiallySucceeded
				status.FailureReason = "not all plugins succeeded, see the plugin statuses"
				break
			}
		}
	}
	r := &ScanResult{
		StartTime:    o.StartTime,
		EndTime:      o.EndTime,
		Version:      version.ScannerVersion,
		Status:       status,
		PluginStatus: o.PluginStatus,
		Findings:     o.Findings,
	}

	// Sort results for better diffing.
	sortResults(r)
	return r
}

// sortResults sorts the result to make the output deterministic and diffable.
func sortResults(results *ScanResult) {
	slices.SortFunc(results.PluginStatus, cmpStatus)
	finding.Sort(results.Findings)
}

func cmpStatus(a, b *plugin.Status) int {
	return cmp.Compare(a.Name, b.Name)
}
