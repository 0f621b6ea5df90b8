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

package risk_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/ldaudit/environment"
	scanfs "github.com/google/ldaudit/fs"
	"github.com/google/ldaudit/risk"
	"github.com/google/ldaudit/testing/fakefs"
)

// summary keeps the fields that don't depend on who runs the test.
type summary struct {
	Resolved string
	Exists   bool
	IsDir    bool
	Writable bool
}

func summarize(a risk.Assessment) summary {
	return summary{Resolved: a.Resolved, Exists: a.Exists, IsDir: a.IsDir, Writable: a.Writable}
}

func TestAssessResolvesDotDotAfterSymlinks(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("EvalSymlinks(TempDir): %v", err)
	}
	for _, dir := range []string{"real/v1/bin", "real/v1/lib", "real/v2/x", "real/v2/lib"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("MkdirAll(%s): %v", dir, err)
		}
	}
	// MkdirAll is subject to the umask.
	for _, dir := range []string{"real/v1/lib", "real/v2/lib"} {
		if err := os.Chmod(filepath.Join(root, dir), 0o777); err != nil {
			t.Fatalf("Chmod(%s): %v", dir, err)
		}
	}
	if err := os.Symlink("real/v1/bin", filepath.Join(root, "bin")); err != nil {
		t.Fatalf("Symlink(bin): %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "real/v2/x"), filepath.Join(root, "real/v1/bin/sym")); err != nil {
		t.Fatalf("Symlink(sym): %v", err)
	}

	env := environment.Snapshot{WorkDir: root, UID: os.Getuid(), EUID: os.Geteuid()}
	c := risk.NewChecker(scanfs.OSHost{}, env)
	v1Lib := summary{Resolved: root + "/real/v1/lib", Exists: true, IsDir: true, Writable: true}

	tests := []struct {
		desc string
		raw  string
		base string
		want summary
	}{
		{desc: "absolute", raw: root + "/bin/../lib", want: v1Lib},
		{desc: "relative_to_work_dir", raw: "bin/../lib", want: v1Lib},
		{desc: "origin", raw: "$ORIGIN/../lib", base: root + "/bin", want: v1Lib},
		{
			desc: "origin_through_nested_symlink",
			raw:  "$ORIGIN/sym/../lib",
			base: root + "/bin",
			want: summary{Resolved: root + "/real/v2/lib", Exists: true, IsDir: true, Writable: true},
		},
		{
			desc: "trailing_dotdot",
			raw:  root + "/bin/..",
			want: summary{Resolved: root + "/real/v1", Exists: true, IsDir: true, Writable: true},
		},
		{
			desc: "missing_keeps_resolved_directory",
			raw:  root + "/bin/../nope",
			want: summary{Resolved: root + "/real/v1/nope"},
		},
		{
			desc: "missing_directory_falls_back_to_lexical_path",
			raw:  root + "/bin/../nodir/nope",
			want: summary{Resolved: root + "/nodir/nope"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			got := c.Assess(tc.raw, tc.base)
			if diff := cmp.Diff(tc.want, summarize(got)); diff != "" {
				t.Errorf("Assess(%q, %q) unexpected diff (-want +got):\n%s", tc.raw, tc.base, diff)
			}
		})
	}
}

func TestAssessParentDirFollowsSymlinkBeforeDotDot(t *testing.T) {
	// /bin/../lib is /real/v1/lib: its directory /real/v1 is writable, while
	// the lexical parent / is not.
	host := fakefs.NewHost().
		Dir("/real/v1", true).
		Dir("/real/v1/bin", false).
		Symlink("/bin", "real/v1/bin")
	c := risk.NewChecker(host, environment.Snapshot{WorkDir: "/", EUID: 1000})

	got := c.Assess("$ORIGIN/../libplant.so", "/bin")
	want := risk.Assessment{Raw: "$ORIGIN/../libplant.so", Resolved: "/real/v1/libplant.so", ParentWritable: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assess() unexpected diff (-want +got):\n%s", diff)
	}
	if !got.Replaceable() {
		t.Errorf("Assess().Replaceable() = false, want true")
	}
}

func TestAssessStickyParent(t *testing.T) {
	const self, other = 1000, 1001
	host := fakefs.NewHost().
		StickyDir("/tmp", true).
		File("/tmp/theirs.so", 0o644, false).
		File("/tmp/mine.so", 0o644, true).
		Owner("/tmp", 0, 0).
		Owner("/tmp/theirs.so", other, other).
		Owner("/tmp/mine.so", self, self).
		StickyDir("/home/user/shared", true).
		File("/home/user/shared/theirs.so", 0o644, false).
		Owner("/home/user/shared", self, self).
		Owner("/home/user/shared/theirs.so", other, other)

	tests := []struct {
		desc            string
		euid            int
		raw             string
		want            risk.Assessment
		wantReplaceable bool
	}{
		{
			desc: "other_users_file",
			euid: self,
			raw:  "/tmp/theirs.so",
			want: risk.Assessment{Raw: "/tmp/theirs.so", Resolved: "/tmp/theirs.so", Exists: true, IsRegular: true,
				ParentWritable: true, ParentSticky: true, OwnedByOther: true},
		},
		{
			desc: "own_file",
			euid: self,
			raw:  "/tmp/mine.so",
			want: risk.Assessment{Raw: "/tmp/mine.so", Resolved: "/tmp/mine.so", Exists: true, IsRegular: true,
				Writable: true, ParentWritable: true, ParentSticky: true},
			wantReplaceable: true,
		},
		{
			desc: "missing_file_can_be_planted",
			euid: self,
			raw:  "/tmp/absent.so",
			want: risk.Assessment{Raw: "/tmp/absent.so", Resolved: "/tmp/absent.so", ParentWritable: true, ParentSticky: true},
			wantReplaceable: true,
		},
		{
			desc: "directory_owner_is_not_restricted",
			euid: self,
			raw:  "/home/user/shared/theirs.so",
			want: risk.Assessment{Raw: "/home/user/shared/theirs.so", Resolved: "/home/user/shared/theirs.so", Exists: true, IsRegular: true,
				ParentWritable: true, OwnedByOther: true},
			wantReplaceable: true,
		},
		{
			desc: "superuser_is_not_restricted",
			euid: 0,
			raw:  "/tmp/theirs.so",
			want: risk.Assessment{Raw: "/tmp/theirs.so", Resolved: "/tmp/theirs.so", Exists: true, IsRegular: true, ParentWritable: true},
			wantReplaceable: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			c := risk.NewChecker(host, environment.Snapshot{EUID: tc.euid, UID: tc.euid})
			got := c.Assess(tc.raw, "")
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Assess(%q) unexpected diff (-want +got):\n%s", tc.raw, diff)
			}
			if got.Replaceable() != tc.wantReplaceable {
				t.Errorf("Assess(%q).Replaceable() = %v, want %v", tc.raw, got.Replaceable(), tc.wantReplaceable)
			}
		})
	}
}

func TestStickyDirMode(t *testing.T) {
	info, err := fakefs.NewHost().StickyDir("/tmp", true).Stat("/tmp")
	if err != nil {
		t.Fatalf("Stat(/tmp): %v", err)
	}
	if info.Mode()&fs.ModeSticky == 0 {
		t.Errorf("Stat(/tmp).Mode() = %v, want sticky", info.Mode())
	}
}
