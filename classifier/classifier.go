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

// Package classifier turns risk assessments and binary attributes into
// findings. Every rule fires independently: one subject can produce several
// findings and no finding suppresses another. Subjects that don't exist
// produce nothing, except for missing dependencies.
package classifier

import (
	"fmt"

	"github.com/google/ldaudit/elfattr"
	"github.com/google/ldaudit/finding"
	"github.com/google/ldaudit/risk"
	"github.com/google/ldaudit/searchpath"
)

// currentDirSubject is the subject of findings about the current directory.
const currentDirSubject = "."

// EnvVarDir classifies an LD_LIBRARY_PATH or LD_RUN_PATH entry.
func EnvVarDir(e searchpath.Entry, a risk.Assessment) []*finding.Finding {
	if a.CurrentDirMarker {
		return []*finding.Finding{currentDir(e, currentDirSubject)}
	}
	if a.Exists && a.IsDir && a.Writable {
		return []*finding.Finding{finding.New(finding.SeverityIssue, finding.EnvVarWritableDir, a.Resolved,
			"%s entry %d (%q) is a writable directory: libraries placed there are loaded by every dynamically linked program started from this environment",
			e.Origin, e.Index, e.Raw)}
	}
	return nil
}

// SearchDir classifies a directory of PATH, the linker default search path,
// ld.so.conf or an ld.so.conf.d fragment.
func SearchDir(e searchpath.Entry, a risk.Assessment) []*finding.Finding {
	if a.CurrentDirMarker {
		return []*finding.Finding{currentDir(e, currentDirSubject)}
	}
	if a.Exists && a.IsDir && a.Writable {
		return []*finding.Finding{writableSearchDir(e, a)}
	}
	return nil
}

// TargetFile classifies a file found directly inside the search directory of
// entry e. The file can be replaced if it is writable, or if the directory it
// lives in is writable and doesn't protect it with the sticky bit.
func TargetFile(e searchpath.Entry, a risk.Assessment) []*finding.Finding {
	if !a.Exists || a.IsDir {
		return nil
	}
	switch {
	case a.Writable:
		return []*finding.Finding{finding.New(finding.SeverityIssue, finding.WritableTarget, a.Resolved,
			"file found through %s is writable", describe(e))}
	case a.Replaceable():
		return []*finding.Finding{finding.New(finding.SeverityIssue, finding.WritableTarget, a.Resolved,
			"file found through %s can be replaced: its directory is writable", describe(e))}
	case a.ParentWritable:
		return []*finding.Finding{finding.New(finding.SeverityIssue, finding.WritableTarget, a.Resolved,
			"file found through %s is in a writable directory%s", describe(e), stickyNote)}
	}
	return nil
}

// stickyNote qualifies a writable directory that protects existing files.
const stickyNote = " with the sticky bit set: only the file's owner can replace it, but new files can be added next to it"

// PreloadFile classifies /etc/ld.so.preload itself. A missing file counts
// when it could be created.
func PreloadFile(a risk.Assessment) []*finding.Finding {
	switch {
	case a.Exists && a.Writable:
		return []*finding.Finding{finding.New(finding.SeverityIssue, finding.PreloadHijack, a.Resolved,
			"the preload list is writable: any library added to it is loaded into every dynamically linked program, including setuid ones")}
	case a.Replaceable():
		verb := "replaced"
		if !a.Exists {
			verb = "created"
		}
		return []*finding.Finding{finding.New(finding.SeverityIssue, finding.PreloadHijack, a.Resolved,
			"the preload list can be %s: its directory is writable", verb)}
	case a.ParentWritable:
		return []*finding.Finding{finding.New(finding.SeverityIssue, finding.PreloadHijack, a.Resolved,
			"the preload list is in a writable directory%s", stickyNote)}
	}
	return nil
}

// PreloadEntry classifies a library listed in /etc/ld.so.preload. The library
// doesn't need to exist: if its directory is writable it can be planted, even
// when the directory is sticky.
func PreloadEntry(e searchpath.Entry, a risk.Assessment) []*finding.Finding {
	if a.CurrentDirMarker {
		return []*finding.Finding{currentDir(e, currentDirSubject)}
	}
	switch {
	case a.Exists && a.Writable:
		return []*finding.Finding{finding.New(finding.SeverityIssue, finding.PreloadHijack, a.Resolved,
			"library preloaded into every process (line %d of %s) is writable", e.Index+1, e.Origin)}
	case a.Replaceable():
		verb := "replaced"
		if !a.Exists {
			verb = "planted"
		}
		return []*finding.Finding{finding.New(finding.SeverityIssue, finding.PreloadHijack, a.Resolved,
			"library preloaded into every process (line %d of %s) can be %s: its directory is writable", e.Index+1, e.Origin, verb)}
	case a.ParentWritable:
		return []*finding.Finding{finding.New(finding.SeverityIssue, finding.PreloadHijack, a.Resolved,
			"library preloaded into every process (line %d of %s) is in a writable directory%s", e.Index+1, e.Origin, stickyNote)}
	}
	return nil
}

// ConfigFile classifies an ld.so.conf file or the ld.so.conf.d directory.
func ConfigFile(a risk.Assessment) []*finding.Finding {
	if !a.Exists || !a.Writable {
		return nil
	}
	if a.IsDir {
		return []*finding.Finding{finding.New(finding.SeverityIssue, finding.ConfigWritable, a.Resolved,
			"linker configuration directory is writable: a new fragment can add library directories once ldconfig runs")}
	}
	return []*finding.Finding{finding.New(finding.SeverityIssue, finding.ConfigWritable, a.Resolved,
		"linker configuration file is writable: it can add library directories once ldconfig runs")}
}

// Binary classifies the attributes of one binary. rpath and runpath hold the
// assessments of r.Rpath and r.Runpath, index for index. interp is the
// assessment of r.Interpreter, or nil.
func Binary(r *elfattr.Record, rpath, runpath []risk.Assessment, interp *risk.Assessment) []*finding.Finding {
	var findings []*finding.Finding

	note := ""
	if len(r.Rpath) > 0 && len(r.Runpath) > 0 {
		note = " (RUNPATH is also set and takes precedence over RPATH)"
	}
	findings = append(findings, linkPath(r, r.Rpath, rpath, note)...)
	findings = append(findings, linkPath(r, r.Runpath, runpath, "")...)

	for _, lib := range r.MissingDependencies.Elements() {
		findings = append(findings, finding.New(finding.SeverityIssue, finding.MissingDependency, r.Path,
			"needs %s, which the linker can't find: a library with that name in any directory it searches would be loaded", lib))
	}

	if r.LinksSanitizer {
		if r.Setuid {
			findings = append(findings, finding.New(finding.SeverityIssue, finding.SanitizerSetuid, r.Path,
				"setuid binary links a sanitizer runtime: its options (e.g. log_path) can be abused to write files or run code with the owner's privileges"))
		} else {
			findings = append(findings, finding.New(finding.SeverityInfo, finding.SanitizerSetuid, r.Path,
				"links a sanitizer runtime"))
		}
	}

	if interp != nil && interp.Exists && interp.Writable {
		msg := "program interpreter of %s is writable"
		if r.Setuid {
			msg = "program interpreter of setuid binary %s is writable: replacing it runs code with the owner's privileges"
		}
		findings = append(findings, finding.New(finding.SeverityIssue, finding.InterpreterWritable, interp.Resolved, msg, r.Path))
	}
	return findings
}

func linkPath(r *elfattr.Record, entries []searchpath.Entry, assessments []risk.Assessment, note string) []*finding.Finding {
	var findings []*finding.Finding
	for i, e := range entries {
		if i >= len(assessments) {
			break
		}
		a := assessments[i]
		if a.CurrentDirMarker {
			findings = append(findings, currentDir(e, r.Path))
			continue
		}
		if !a.Exists || !a.IsDir || !a.Writable {
			continue
		}
		findings = append(findings,
			finding.New(finding.SeverityIssue, finding.RpathHijack, a.Resolved,
				"%s entry %q of %s resolves to a writable directory: libraries planted there are loaded by it%s",
				e.Origin, e.Raw, r.Path, note),
			writableSearchDir(e, a))
	}
	return findings
}

func writableSearchDir(e searchpath.Entry, a risk.Assessment) *finding.Finding {
	return finding.New(finding.SeverityIssue, finding.WritableSearchDir, a.Resolved,
		"%s is writable", describe(e))
}

func currentDir(e searchpath.Entry, subject string) *finding.Finding {
	return finding.New(finding.SeverityIssue, finding.CurrentDirInSearchPath, subject,
		"%s is %q, which means the current working directory", describe(e), e.Raw)
}

// describe names an entry for messages, e.g. "PATH entry 0 (\"/tmp\")".
func describe(e searchpath.Entry) string {
	s := fmt.Sprintf("%s entry %d (%q)", e.Origin, e.Index, e.Raw)
	if e.Source != "" && e.Origin != searchpath.OriginLdSoPreload && e.Origin != searchpath.OriginLdSoConf {
		s += " of " + e.Source
	}
	return s
}
