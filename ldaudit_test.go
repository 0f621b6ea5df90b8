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

package ldaudit_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/ldaudit"
	"github.com/google/ldaudit/detector"
	"github.com/google/ldaudit/detector/list"
	"github.com/google/ldaudit/environment"
	"github.com/google/ldaudit/finding"
	scanfs "github.com/google/ldaudit/fs"
	"github.com/google/ldaudit/plugin"
	"github.com/google/ldaudit/testing/fakedetector"
	"github.com/google/ldaudit/testing/fakefs"
	"github.com/google/ldaudit/testing/faketools"
	"github.com/google/ldaudit/testing/testcollector"
	"github.com/google/ldaudit/tools"
)

const unprivileged = 1000

var errBoom = errors.New("boom")

func userEnv(path string) environment.Snapshot {
	return environment.Snapshot{
		Vars:    map[string]string{environment.VarPath: path},
		WorkDir: "/home/user",
		UID:     unprivileged,
		EUID:    unprivileged,
	}
}

func allDetectors(t *testing.T) []detector.Detector {
	t.Helper()
	dets, err := list.DetectorsFromNames([]string{"all"})
	if err != nil {
		t.Fatalf("list.DetectorsFromNames(all): %v", err)
	}
	return dets
}

func count(findings []*finding.Finding, cat finding.Category, subject string) int {
	n := 0
	for _, f := range findings {
		if f.Category == cat && f.Subject == subject {
			n++
		}
	}
	return n
}

func TestScanWritableDirInPath(t *testing.T) {
	host := fakefs.NewHost().
		Dir("/tmp", true).
		Dir("/usr/bin", false).
		File("/usr/bin/ls", 0o755, false)
	cfg := &ldaudit.ScanConfig{
		Detectors: allDetectors(t),
		Env:       userEnv("/tmp:/usr/bin"),
		Root:      fstest.MapFS{},
		Host:      host,
		Workers:   2,
	}

	res := ldaudit.New().Scan(context.Background(), cfg)

	if res.Status.Status != plugin.ScanStatusSucceeded {
		t.Fatalf("Scan() status = %v (%s), want SUCCEEDED", res.Status.Status, res.Status.FailureReason)
	}
	if got := count(res.Findings, finding.WritableSearchDir, "/tmp"); got != 1 {
		t.Errorf("Scan() returned %d WritableSearchDir findings for /tmp, want 1: %v", got, res.Findings)
	}
	if got := count(res.Findings, finding.WritableSearchDir, "/usr/bin"); got != 0 {
		t.Errorf("Scan() returned %d WritableSearchDir findings for /usr/bin, want 0", got)
	}
}

func TestScanRpathIntoWritableDir(t *testing.T) {
	host := fakefs.NewHost().
		File("/opt/app/bin/run", 0o755, false).
		Dir("/opt/app/lib", true)
	ts := &tools.Set{
		Metadata: &faketools.MetadataReader{Files: map[string]*tools.Metadata{
			"/opt/app/bin/run": {Rpath: []string{"$ORIGIN/../lib"}},
		}},
		Dependencies: &faketools.DependencyResolver{},
		Available:    []string{tools.Readelf, tools.Ldd},
	}
	cfg := &ldaudit.ScanConfig{
		Detectors: allDetectors(t),
		Env:       userEnv("/opt/app/bin"),
		Root:      fstest.MapFS{},
		Host:      host,
		Tools:     ts,
	}

	res := ldaudit.New().Scan(context.Background(), cfg)

	if got := count(res.Findings, finding.RpathHijack, "/opt/app/lib"); got != 1 {
		t.Errorf("Scan() returned %d RpathHijack findings for /opt/app/lib, want 1: %v", got, res.Findings)
	}
	for _, f := range res.Findings {
		if f.Category == finding.RpathHijack && f.Severity != finding.SeverityIssue {
			t.Errorf("RpathHijack severity = %v, want issue", f.Severity)
		}
	}
}

func TestScanPreloadIntoWritableDir(t *testing.T) {
	root := fstest.MapFS{
		"etc/ld.so.preload": {Data: []byte("/tmp/evil.so\n")},
	}
	host := fakefs.NewHost().
		File("/etc/ld.so.preload", 0o644, false).
		Dir("/tmp", true)
	cfg := &ldaudit.ScanConfig{
		Detectors: allDetectors(t),
		Env:       userEnv("/tmp"),
		Root:      root,
		Host:      host,
	}

	res := ldaudit.New().Scan(context.Background(), cfg)

	if got := count(res.Findings, finding.PreloadHijack, "/tmp/evil.so"); got != 1 {
		t.Errorf("Scan() returned %d PreloadHijack findings for /tmp/evil.so, want 1: %v", got, res.Findings)
	}
	if got := count(res.Findings, finding.WritableSearchDir, "/tmp"); got != 1 {
		t.Errorf("Scan() returned %d WritableSearchDir findings for /tmp, want 1", got)
	}
}

func TestScanIsRepeatable(t *testing.T) {
	root := fstest.MapFS{
		"etc/ld.so.preload":          {Data: []byte("/tmp/evil.so\n")},
		"etc/ld.so.conf":             {Data: []byte("include /etc/ld.so.conf.d/*.conf\n")},
		"etc/ld.so.conf.d/app.conf":  {Data: []byte("/opt/app/lib\n")},
		"etc/ld.so.conf.d/misc.conf": {Data: []byte("# nothing\n")},
	}
	newConfig := func() *ldaudit.ScanConfig {
		host := fakefs.NewHost().
			File("/etc/ld.so.preload", 0o644, false).
			File("/etc/ld.so.conf.d/app.conf", 0o644, true).
			Dir("/tmp", true).
			File("/tmp/tool", 0o755, true).
			Dir("/opt/app/lib", true).
			File("/opt/app/lib/libapp.so", 0o644, false).
			Dir("/usr/bin", false)
		env := userEnv("/tmp:/usr/bin::.").WithVar(environment.VarLDLibraryPath, "/opt/app/lib")
		return &ldaudit.ScanConfig{
			Detectors: allDetectors(t),
			Env:       env,
			Root:      root,
			Host:      host,
			Tools:     &tools.Set{Tracer: &faketools.LoaderTracer{Dirs: []string{"/usr/lib"}}},
			Workers:   4,
		}
	}

	first := ldaudit.New().Scan(context.Background(), newConfig())
	second := ldaudit.New().Scan(context.Background(), newConfig())

	if len(first.Findings) == 0 {
		t.Fatal("Scan() returned no findings")
	}
	if diff := cmp.Diff(first.Findings, second.Findings); diff != "" {
		t.Errorf("Scan() findings differ between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.PluginStatus, second.PluginStatus); diff != "" {
		t.Errorf("Scan() plugin statuses differ between runs (-first +second):\n%s", diff)
	}
}

func TestScanAsSuperuser(t *testing.T) {
	env := userEnv("/usr/bin")
	env.EUID = 0
	cfg := &ldaudit.ScanConfig{
		Env:  env,
		Root: fstest.MapFS{},
		Host: fakefs.NewHost(),
	}

	res := ldaudit.New().Scan(context.Background(), cfg)

	if res.Status.Status != plugin.ScanStatusSucceeded {
		t.Errorf("Scan() status = %v, want SUCCEEDED", res.Status.Status)
	}
	want := []*finding.Finding{{
		Severity: finding.SeverityWarning,
		Category: finding.RootExecution,
		Subject:  "/",
	}}
	if diff := cmp.Diff(want, res.Findings, cmpopts.IgnoreFields(finding.Finding{}, "Message")); diff != "" {
		t.Errorf("Scan() unexpected findings (-want +got):\n%s", diff)
	}
}

func TestScanStatus(t *testing.T) {
	success := &plugin.ScanStatus{Status: plugin.ScanStatusSucceeded}
	failure := &plugin.ScanStatus{Status: plugin.ScanStatusFailed, FailureReason: "boom"}
	tests := []struct {
		desc       string
		detectors  []detector.Detector
		root       scanfs.FS
		host       scanfs.Host
		wantStatus *plugin.ScanStatus
		wantPlugin []*plugin.Status
	}{
		{
			desc:       "no_detectors",
			root:       fstest.MapFS{},
			host:       fakefs.NewHost(),
			wantStatus: success,
		},
		{
			desc: "detectors_sorted_by_name",
			detectors: []detector.Detector{
				fakedetector.New("zeta", 1, nil, nil),
				fakedetector.New("alpha", 2, nil, nil),
			},
			root:       fstest.MapFS{},
			host:       fakefs.NewHost(),
			wantStatus: success,
			wantPlugin: []*plugin.Status{
				{Name: "alpha", Version: 2, Status: success},
				{Name: "zeta", Version: 1, Status: success},
			},
		},
		{
			desc:      "failing_detector",
			detectors: []detector.Detector{fakedetector.New("bad", 1, nil, errBoom)},
			root:      fstest.MapFS{},
			host:      fakefs.NewHost(),
			wantStatus: &plugin.ScanStatus{
				Status:        plugin.ScanStatusPartiallySucceeded,
				FailureReason: "not all plugins succeeded, see the plugin statuses",
			},
			wantPlugin: []*plugin.Status{{Name: "bad", Version: 1, Status: failure}},
		},
		{
			desc:       "missing_root",
			host:       fakefs.NewHost(),
			wantStatus: &plugin.ScanStatus{Status: plugin.ScanStatusFailed, FailureReason: "no system root specified"},
		},
		{
			desc:       "missing_host",
			root:       fstest.MapFS{},
			wantStatus: &plugin.ScanStatus{Status: plugin.ScanStatusFailed, FailureReason: "no host filesystem specified"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			c := testcollector.New()
			cfg := &ldaudit.ScanConfig{
				Detectors: tc.detectors,
				Env:       userEnv("/usr/bin"),
				Root:      tc.root,
				Host:      tc.host,
				Stats:     c,
			}

			res := ldaudit.New().Scan(context.Background(), cfg)

			if diff := cmp.Diff(tc.wantStatus, res.Status); diff != "" {
				t.Errorf("Scan() status diff (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantPlugin, res.PluginStatus, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Scan() plugin status diff (-want +got):\n%s", diff)
			}
			if res.StartTime.After(res.EndTime) {
				t.Errorf("Scan() StartTime %v after EndTime %v", res.StartTime, res.EndTime)
			}
		})
	}
}
