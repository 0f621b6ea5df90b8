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

// Package list provides a public list of the ldaudit detection plugins.
package list

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/ldaudit/detector"
	"github.com/google/ldaudit/detector/binaries"
	"github.com/google/ldaudit/detector/envvar"
	"github.com/google/ldaudit/detector/ldsoconf"
	"github.com/google/ldaudit/detector/ldsopreload"
	"github.com/google/ldaudit/detector/searchdir"
	"github.com/google/ldaudit/plugin"
)

// InitFn is the detector initializer function.
type InitFn func() detector.Detector

// InitMap is a map of detector names to their initers.
type InitMap map[string][]InitFn

// Environment detectors look at the search path variables.
var Environment = InitMap{envvar.Name: {envvar.New}}

// Config detectors look at the dynamic linker configuration files.
var Config = InitMap{
	ldsopreload.Name: {ldsopreload.New},
	ldsoconf.Name:    {ldsoconf.New},
}

// Paths detectors look at the search directories and their files.
var Paths = InitMap{searchdir.Name: {searchdir.New}}

// Binaries detectors look at the link attributes of programs and libraries.
var Binaries = InitMap{binaries.Name: {binaries.New}}

// All detectors.
var All = concat(
	Environment,
	Config,
	Paths,
	Binaries,
)

// Default detectors that are recommended to be enabled.
var Default = All

var detectorNames = concat(All, InitMap{
	"env":     vals(Environment),
	"config":  vals(Config),
	"paths":   vals(Paths),
	"bins":    vals(Binaries),
	"default": vals(Default),
	"all":     vals(All),
})

func concat(initMaps ...InitMap) InitMap {
	result := InitMap{}
	for _, m := range initMaps {
		maps.Copy(result, m)
	}
	return result
}

func vals(initMap InitMap) []InitFn {
	// Sorted by name so that group expansion is deterministic.
	var fns []InitFn
	for _, name := range slices.Sorted(maps.Keys(initMap)) {
		fns = append(fns, initMap[name]...)
	}
	return fns
}

// FromCapabilities returns all detectors that can run under the specified
// capabilities (OS, running system) of the scanning environment.
func FromCapabilities(capabs *plugin.Capabilities) []detector.Detector {
	all := []detector.Detector{}
	for _, initers := range All {
		for _, initer := range initers {
			all = append(all, initer())
		}
	}
	return plugin.FilterByCapabilities(all, capabs)
}

// DetectorsFromNames returns a deduplicated list of detectors from a list of
// names or group names, sorted by detector name. Names are case-insensitive.
func DetectorsFromNames(names []string) ([]detector.Detector, error) {
	resultMap := make(map[string]detector.Detector)
	for _, n := range names {
		initers, ok := detectorNames[strings.ToLower(n)]
		if !ok {
			return nil, fmt.Errorf("unknown detector %q", n)
		}
		for _, initer := range initers {
			d := initer()
			if _, ok := resultMap[d.Name()]; !ok {
				resultMap[d.Name()] = d
			}
		}
	}
	result := make([]detector.Detector, 0, len(resultMap))
	for _, name := range slices.Sorted(maps.Keys(resultMap)) {
		result = append(result, resultMap[name])
	}
	return result, nil
}

// Names returns the names that DetectorsFromNames accepts, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(detectorNames))
}
