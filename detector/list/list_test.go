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

package list_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	dl "github.com/google/ldaudit/detector/list"
	"github.com/google/ldaudit/plugin"
)

func TestFromCapabilities(t *testing.T) {
	tests := []struct {
		desc  string
		capab *plugin.Capabilities
		want  []string
	}{
		{
			desc:  "linux",
			capab: &plugin.Capabilities{OS: plugin.OSLinux, RunningSystem: true},
			want:  []string{"binaries", "envvar", "ldsoconf", "ldsopreload", "searchdir"},
		},
		{
			desc:  "mac",
			capab: &plugin.Capabilities{OS: plugin.OSMac, RunningSystem: true},
			// The linker configuration and ELF checks are Linux-only.
			want: []string{"envvar", "searchdir"},
		},
		{
			desc: "not_the_running_system",
			// Every detector reads the live environment and host paths.
			capab: &plugin.Capabilities{OS: plugin.OSLinux},
			want:  nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			var got []string
			for _, d := range dl.FromCapabilities(tc.capab) {
				got = append(got, d.Name())
			}
			if diff := cmp.Diff(tc.want, got, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
				t.Errorf("dl.FromCapabilities(%v): got diff (-want +got):\n%s", tc.capab, diff)
			}
		})
	}
}

func TestDetectorsFromNames(t *testing.T) {
	testCases := []struct {
		desc     string
		names    []string
		wantDets []string
		wantErr  error
	}{
		{
			desc:     "Find all detectors of a type",
			names:    []string{"config"},
			wantDets: []string{"ldsoconf", "ldsopreload"},
		},
		{
			desc:     "Single detector",
			names:    []string{"binaries"},
			wantDets: []string{"binaries"},
		},
		{
			desc:     "Case-insensitive",
			names:    []string{"ENV"},
			wantDets: []string{"envvar"},
		},
		{
			desc:     "Remove duplicates",
			names:    []string{"paths", "searchdir"},
			wantDets: []string{"searchdir"},
		},
		{
			desc:     "Default",
			names:    []string{"default"},
			wantDets: []string{"binaries", "envvar", "ldsoconf", "ldsopreload", "searchdir"},
		},
		{
			desc:     "Nonexistent plugin",
			names:    []string{"nonexistent"},
			wantErr:  cmpopts.AnyError,
			wantDets: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := dl.DetectorsFromNames(tc.names)
			if diff := cmp.Diff(tc.wantErr, err, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("dl.DetectorsFromNames(%v) error got diff (-want +got):\n%s", tc.names, diff)
			}
			gotNames := []string{}
			for _, d := range got {
				gotNames = append(gotNames, d.Name())
			}
			if diff := cmp.Diff(tc.wantDets, gotNames); diff != "" {
				t.Errorf("dl.DetectorsFromNames(%v): got diff (-want +got):\n%s", tc.names, diff)
			}
		})
	}
}
