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

package cli_test

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/ldaudit"
	"github.com/google/ldaudit/binary/cli"
	"github.com/google/ldaudit/detector/envvar"
	"github.com/google/ldaudit/finding"
	"github.com/google/ldaudit/plugin"
	"github.com/google/ldaudit/testing/testcollector"
	"github.com/google/ldaudit/tools"
)

func defaultFlags() *cli.Flags {
	def := tools.DefaultConfig()
	return &cli.Flags{
		Output:         cli.Array{cli.DefaultOutput},
		DetectorsToRun: []string{"default"},
		Timeout:        def.Timeout,
		MetadataReader: def.Backend,
		ReadelfPath:    def.ReadelfPath,
		LddPath:        def.LddPath,
		TraceProbe:     def.TraceProbe,
		Color:          "auto",
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("os.WriteFile(%s): %v", p, err)
	}
	return p
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		desc    string
		args    []string
		want    func(*cli.Flags)
		wantErr bool
	}{
		{
			desc: "defaults",
			want: func(*cli.Flags) {},
		},
		{
			desc: "outputs_and_detectors",
			args: []string{"-o", "json=out.json", "--output=yaml=-", "--detectors", "env,paths", "--detectors", "bins"},
			want: func(f *cli.Flags) {
				f.Output = cli.Array{"json=out.json", "yaml=-"}
				f.DetectorsToRun = []string{"env", "paths", "bins"}
			},
		},
		{
			desc: "tools",
			args: []string{"--metadata-reader=elf", "--ldd=/opt/ldd", "--readelf", "/opt/readelf", "--trace-probe=/bin/ls",
				"--require-tool=ldd,ld.so", "--strict-tools", "--timeout=3s", "-j", "4", "--skip-dir-glob=/snap/**", "--color=never", "-v"},
			want: func(f *cli.Flags) {
				f.MetadataReader = tools.BackendELF
				f.LddPath = "/opt/ldd"
				f.ReadelfPath = "/opt/readelf"
				f.TraceProbe = "/bin/ls"
				f.RequiredTools = []string{"ldd", "ld.so"}
				f.StrictTools = true
				f.Timeout = 3 * time.Second
				f.Workers = 4
				f.SkipDirGlob = "/snap/**"
				f.Color = "never"
				f.Verbose = true
			},
		},
		{
			desc: "version_skips_validation",
			args: []string{"--version", "-o", "bogus"},
			want: func(f *cli.Flags) {
				f.PrintVersion = true
				f.Output = cli.Array{"bogus"}
			},
		},
		{desc: "unknown_output_format", args: []string{"-o", "xml=out.xml"}, wantErr: true},
		{desc: "output_without_path", args: []string{"-o", "json"}, wantErr: true},
		{desc: "unknown_detector", args: []string{"--detectors", "nope"}, wantErr: true},
		{desc: "empty_detector", args: []string{"--detectors", "env,"}, wantErr: true},
		{desc: "negative_workers", args: []string{"--workers=-1"}, wantErr: true},
		{desc: "negative_timeout", args: []string{"--timeout=-1s"}, wantErr: true},
		{desc: "unknown_metadata_reader", args: []string{"--metadata-reader=objdump"}, wantErr: true},
		{desc: "unknown_tool", args: []string{"--require-tool=objdump"}, wantErr: true},
		{desc: "invalid_glob", args: []string{"--skip-dir-glob=[a"}, wantErr: true},
		{desc: "invalid_color", args: []string{"--color=sometimes"}, wantErr: true},
		{desc: "positional_args", args: []string{"/usr"}, wantErr: true},
		{desc: "unknown_flag", args: []string{"--root=/"}, wantErr: true},
		{desc: "missing_config_file", args: []string{"--config=/nonexistent/ldaudit.yaml"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := cli.ParseFlags(tc.args)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseFlags(%v) error = %v, wantErr %v", tc.args, err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			want := defaultFlags()
			tc.want(want)
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ParseFlags(%v) unexpected diff (-want +got):\n%s", tc.args, diff)
			}
		})
	}
}

func TestParseFlagsConfigFile(t *testing.T) {
	yamlConfig := writeFile(t, "ldaudit.yaml", `
detectors: [env, config]
workers: 3
timeout: 5s
require_tools: [readelf]
strict_tools: true
outputs: ["json=/tmp/out.json"]
verbose: true
`)
	tomlConfig := writeFile(t, "ldaudit.toml", `
detectors = ["paths"]
workers = 2
metadata_reader = "elf"
skip_dir_glob = "/proc/**"
color = "always"
`)
	tests := []struct {
		desc    string
		args    []string
		want    func(*cli.Flags)
		wantErr bool
	}{
		{
			desc: "yaml",
			args: []string{"--config", yamlConfig},
			want: func(f *cli.Flags) {
				f.ConfigFile = yamlConfig
				f.DetectorsToRun = []string{"env", "config"}
				f.Workers = 3
				f.Timeout = 5 * time.Second
				f.RequiredTools = []string{"readelf"}
				f.StrictTools = true
				f.Output = cli.Array{"json=/tmp/out.json"}
				f.Verbose = true
			},
		},
		{
			desc: "flags_override_yaml",
			args: []string{"--config", yamlConfig, "--workers=7", "-o", "text=-", "--strict-tools=false"},
			want: func(f *cli.Flags) {
				f.ConfigFile = yamlConfig
				f.DetectorsToRun = []string{"env", "config"}
				f.Workers = 7
				f.Timeout = 5 * time.Second
				f.RequiredTools = []string{"readelf"}
				f.Output = cli.Array{"text=-"}
				f.Verbose = true
			},
		},
		{
			desc: "toml",
			args: []string{"--config=" + tomlConfig},
			want: func(f *cli.Flags) {
				f.ConfigFile = tomlConfig
				f.DetectorsToRun = []string{"paths"}
				f.Workers = 2
				f.MetadataReader = tools.BackendELF
				f.SkipDirGlob = "/proc/**"
				f.Color = "always"
			},
		},
		{
			desc:    "unknown_yaml_key",
			args:    []string{"--config", writeFile(t, "bad.yaml", "root: /\n")},
			wantErr: true,
		},
		{
			desc:    "unknown_toml_key",
			args:    []string{"--config", writeFile(t, "bad.toml", "root = \"/\"\n")},
			wantErr: true,
		},
		{
			desc:    "bad_timeout",
			args:    []string{"--config", writeFile(t, "timeout.yaml", "timeout: soon\n")},
			wantErr: true,
		},
		{
			desc:    "unknown_extension",
			args:    []string{"--config", writeFile(t, "ldaudit.json", "{}")},
			wantErr: true,
		},
		{
			desc:    "invalid_value_in_file",
			args:    []string{"--config", writeFile(t, "color.yaml", "color: sometimes\n")},
			wantErr: true,
		},
		{
			desc: "empty_yaml",
			args: []string{"--config", writeFile(t, "empty.yaml", "")},
			want: func(f *cli.Flags) {},
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := cli.ParseFlags(tc.args)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseFlags(%v) error = %v, wantErr %v", tc.args, err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			want := defaultFlags()
			tc.want(want)
			if want.ConfigFile == "" {
				want.ConfigFile = got.ConfigFile
			}
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ParseFlags(%v) unexpected diff (-want +got):\n%s", tc.args, diff)
			}
		})
	}
}

func TestCheckRequiredTools(t *testing.T) {
	ts := &tools.Set{Available: []string{tools.Readelf}}
	tests := []struct {
		desc     string
		required []string
		strict   bool
		wantErr  bool
	}{
		{desc: "none_required", strict: true},
		{desc: "available", required: []string{tools.Readelf}, strict: true},
		{desc: "missing_lenient", required: []string{tools.Ldd}},
		{desc: "missing_strict", required: []string{"readelf,ldd"}, strict: true, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			f := defaultFlags()
			f.RequiredTools = tc.required
			f.StrictTools = tc.strict
			if err := f.CheckRequiredTools(ts); (err != nil) != tc.wantErr {
				t.Errorf("CheckRequiredTools() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestGetScanConfig(t *testing.T) {
	f := defaultFlags()
	f.DetectorsToRun = []string{"env"}
	f.SkipDirGlob = "/snap/**"
	ts := &tools.Set{Available: []string{tools.Readelf, tools.Ldd}}

	cfg, err := f.GetScanConfig(ts)
	if err != nil {
		t.Fatalf("GetScanConfig(): %v", err)
	}

	var names []string
	for _, d := range cfg.Detectors {
		names = append(names, d.Name())
	}
	if diff := cmp.Diff([]string{envvar.Name}, names); diff != "" {
		t.Errorf("GetScanConfig() detectors unexpected diff (-want +got):\n%s", diff)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("GetScanConfig() Workers = %d, want %d", cfg.Workers, runtime.NumCPU())
	}
	if !cfg.Capabilities.RunningSystem || !slices.Equal(cfg.Capabilities.Tools, ts.Available) {
		t.Errorf("GetScanConfig() Capabilities = %+v, want the running system with %v", cfg.Capabilities, ts.Available)
	}
	if cfg.SkipDirGlob == nil || !cfg.SkipDirGlob.Match("/snap/core/lib") || cfg.SkipDirGlob.Match("/usr/lib") {
		t.Errorf("GetScanConfig() SkipDirGlob doesn't match /snap/** as expected")
	}
	if cfg.Tools != ts || cfg.Root == nil || cfg.Host == nil {
		t.Errorf("GetScanConfig() = %+v, want tools, root and host set", cfg)
	}
}

func TestGetScanConfigStrictToolMissing(t *testing.T) {
	f := defaultFlags()
	f.RequiredTools = []string{tools.Loader}
	f.StrictTools = true
	if _, err := f.GetScanConfig(&tools.Set{}); err == nil {
		t.Error("GetScanConfig() succeeded with a missing required tool in strict mode, want error")
	}
}

func TestWriteScanResults(t *testing.T) {
	dir := t.TempDir()
	f := defaultFlags()
	f.Output = cli.Array{"json=" + filepath.Join(dir, "out.json"), "text=" + filepath.Join(dir, "out.txt")}
	result := &ldaudit.ScanResult{
		Status:   &plugin.ScanStatus{Status: plugin.ScanStatusSucceeded},
		Findings: []*finding.Finding{finding.New(finding.SeverityIssue, finding.WritableSearchDir, "/tmp", "writable")},
	}
	c := testcollector.New()

	if err := f.WriteScanResults(result, c); err != nil {
		t.Fatalf("WriteScanResults(): %v", err)
	}
	var total int
	for _, name := range []string{"out.json", "out.txt"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("os.Stat(%s): %v", name, err)
		}
		total += int(info.Size())
	}
	if got := c.ExportedBytes("file"); got != total {
		t.Errorf("ExportedBytes(file) = %d, want %d", got, total)
	}
}
