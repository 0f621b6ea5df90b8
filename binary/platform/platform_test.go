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

//go:build unix

package platform_test

import (
	"runtime"
	"testing"

	"github.com/google/ldaudit/binary/platform"
	"github.com/google/ldaudit/plugin"
)

func TestSystemRoot(t *testing.T) {
	got, err := platform.SystemRoot()
	if err != nil {
		t.Fatalf("SystemRoot(): %v", err)
	}
	if got != "/" {
		t.Errorf("SystemRoot() = %q, want /", got)
	}
}

func TestOS(t *testing.T) {
	want := plugin.OSLinux
	if runtime.GOOS == "darwin" {
		want = plugin.OSMac
	}
	if got := platform.OS(); got != want {
		t.Errorf("OS() = %v, want %v", got, want)
	}
}
