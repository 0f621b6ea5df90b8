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

// Package scanrunner provides the main function for running a scan with the ldaudit binary.
package scanrunner

import (
	"context"
	"os"

	"github.com/google/ldaudit"
	"github.com/google/ldaudit/binary/cli"
	"github.com/google/ldaudit/finding"
	"github.com/google/ldaudit/log"
	"github.com/google/ldaudit/plugin"
	"github.com/google/ldaudit/tools"
	"github.com/google/ldaudit/version"
)

// RunScan executes the scan with the given CLI flags
// and returns the exit code passed to os.Exit() in the main binary.
func RunScan(flags *cli.Flags) int {
	if flags.PrintVersion {
		log.Infof("ldaudit v%s", version.ScannerVersion)
		return 0
	}

	log.SetLogger(log.NewDefaultLogger(os.Stderr, flags.Verbose))

	ts := tools.NewSet(flags.ToolsConfig())
	cfg, err := flags.GetScanConfig(ts)
	if err != nil {
		log.Errorf("%v.GetScanConfig(): %v", flags, err)
		return 1
	}
	return runScan(context.Background(), flags, cfg)
}

func runScan(ctx context.Context, flags *cli.Flags, cfg *ldaudit.ScanConfig) int {
	log.Infof("Running scan with %d detectors", len(cfg.Detectors))
	result := ldaudit.New().Scan(ctx, cfg)

	log.Infof("Scan status: %v", result.Status.Status)
	for _, p := range result.PluginStatus {
		if p.Status.Status != plugin.ScanStatusSucceeded {
			log.Warnf("Plugin '%s' did not succeed. Status: %v, Reason: %s", p.Name, p.Status.Status, p.Status.FailureReason)
		}
	}
	counts := finding.Count(result.Findings)
	log.Infof("Found %d issues, %d warnings and %d informational findings",
		counts[finding.SeverityIssue], counts[finding.SeverityWarning], counts[finding.SeverityInfo])

	if err := flags.WriteScanResults(result, cfg.Stats); err != nil {
		log.Errorf("Error writing scan results: %v", err)
		return 1
	}

	if result.Status.Status == plugin.ScanStatusFailed {
		log.Errorf("Scan wasn't successful: %s", result.Status.FailureReason)
		return 1
	}
	return 0
}
