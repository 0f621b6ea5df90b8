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

// Package plugin collects the code shared by all ldaudit detector plugins.
package plugin

import (
	"fmt"
	"slices"
	"strings"
)

// OS is the OS the scanner is running on, or a specific OS type a Plugin needs to be run on.
type OS int

// OS values
const (
	// OSAny is used only when specifying Plugin requirements.
	// Specifies that the plugin expects to be compatible with any OS.
	OSAny   OS = iota
	OSLinux OS = iota
	OSMac   OS = iota
	// OSUnix is used only when specifying Plugin requirements.
	// Specifies that the plugin needs to be run either on Linux or Mac.
	OSUnix OS = iota
)

// Capabilities lists capabilities that the scanning environment provides for the plugins.
// A plugin can't be enabled if it has more requirements than what the scanning environment provides,
// with the exception of Tools: a missing tool only degrades the checks that depend on it.
type Capabilities struct {
	// A specific OS type a Plugin needs to be run on.
	OS OS
	// Whether the scanner audits the running system it's on, i.e. the live
	// environment and the dynamic linker of the host.
	RunningSystem bool
	// External tools available to the scanner, or needed by a plugin, by logical
	// name (e.g. "readelf", "ldd").
	Tools []string
}

// HasTool returns whether the named tool is available.
func (c *Capabilities) HasTool(name string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Tools, name)
}

// Plugin is the interface shared by all detectors.
type Plugin interface {
	// A unique name used to identify this plugin.
	Name() string
	// Plugin version, should get bumped whenever major changes are made.
	Version() int
	// Requirements about the scanning environment, e.g. "needs to run on Linux".
	Requirements() *Capabilities
}

// LINT.IfChange

// Status contains the status and version of the plugins that ran.
type Status struct {
	Name    string      `json:"name" yaml:"name"`
	Version int         `json:"version" yaml:"version"`
	Status  *ScanStatus `json:"status" yaml:"status"`
}

// ScanStatus is the status of a scan run. In case the scan fails, FailureReason contains details.
type ScanStatus struct {
	Status        ScanStatusEnum `json:"status" yaml:"status"`
	FailureReason string         `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`
	FileErrors    []*FileError   `json:"file_errors,omitempty" yaml:"file_errors,omitempty"`
}

// FileError contains the errors that occurred while scanning a specific file.
type FileError struct {
	FilePath     string `json:"path" yaml:"path"`
	ErrorMessage string `json:"error" yaml:"error"`
}

// ScanStatusEnum is the enum for the scan status.
type ScanStatusEnum int

// ScanStatusEnum values.
const (
	ScanStatusUnspecified ScanStatusEnum = iota
	ScanStatusSucceeded
	ScanStatusPartiallySucceeded
	ScanStatusFailed
)

// LINT.ThenChange(/binary/output/output.go)

func (s ScanStatusEnum) String() string {
	switch s {
	case ScanStatusSucceeded:
		return "SUCCEEDED"
	case ScanStatusPartiallySucceeded:
		return "PARTIALLY_SUCCEEDED"
	case ScanStatusFailed:
		return "FAILED"
	default:
		return "UNSPECIFIED"
	}
}

// MarshalText encodes the status as its name in JSON and YAML output.
func (s ScanStatusEnum) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ValidateRequirements checks that the specified scanning capabilities satisfy
// the requirements of a given plugin. Tool requirements are not validated here,
// see MissingTools.
func ValidateRequirements(p Plugin, capabs *Capabilities) error {
	if capabs == nil {
		return nil
	}
	errs := []string{}
	if p.Requirements().OS == OSUnix {
		if capabs.OS != OSLinux && capabs.OS != OSMac {
			errs = append(errs, "needs to run on Unix system but scan environment is non-Unix")
		}
	} else if p.Requirements().OS != OSAny && p.Requirements().OS != capabs.OS {
		errs = append(errs, "needs to run on a different OS than that of the scan environment")
	}
	if p.Requirements().RunningSystem && !capabs.RunningSystem {
		errs = append(errs, "scanner isn't auditing the host it's run from directly")
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("plugin %s can't be enabled: %s", p.Name(), strings.Join(errs, ", "))
}

// MissingTools returns the tools a plugin asks for that the scanning environment
// doesn't provide. A plugin with missing tools still runs in a degraded mode.
func MissingTools(p Plugin, capabs *Capabilities) []string {
	var missing []string
	for _, t := range p.Requirements().Tools {
		if !capabs.HasTool(t) {
			missing = append(missing, t)
		}
	}
	return missing
}

// FilterByCapabilities returns all plugins from the given list that can run
// under the specified capabilities of the scanning environment.
func FilterByCapabilities[P Plugin](pls []P, capabs *Capabilities) []P {
	result := []P{}
	for _, pl := range pls {
		if err := ValidateRequirements(pl, capabs); err == nil {
			result = append(result, pl)
		}
	}
	return result
}

// StatusFromErr returns a successful or failed plugin scan status for a given plugin based on an error.
func StatusFromErr(p Plugin, partial bool, overallErr error, fileErrors []*FileError) *Status {
	status := &ScanStatus{}
	if overallErr == nil {
		status.Status = ScanStatusSucceeded
	} else {
		if partial {
			status.Status = ScanStatusPartiallySucceeded
		} else {
			status.Status = ScanStatusFailed
		}
		status.FileErrors = fileErrors
		status.FailureReason = overallErr.Error()
	}
	return &Status{
		Name:    p.Name(),
		Version: p.Version(),
		Status:  status,
	}
}

// OverallErrFromFileErrs returns an error to set as the scan status overall failure
// reason based on the plugin's per-file errors.
func OverallErrFromFileErrs(fileErrors []*FileError) error {
	if len(fileErrors) == 0 {
		return nil
	}
	return fmt.Errorf("encountered %d error(s) while running plugin; check file-specific errors for details", len(fileErrors))
}
