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

// Package cli defines the structures to store the CLI flags used by the ldaudit binary.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"github.com/google/ldaudit"
	"github.com/google/ldaudit/binary/output"
	"github.com/google/ldaudit/binary/platform"
	"github.com/google/ldaudit/detector"
	dl "github.com/google/ldaudit/detector/list"
	"github.com/google/ldaudit/environment"
	scanfs "github.com/google/ldaudit/fs"
	"github.com/google/ldaudit/log"
	"github.com/google/ldaudit/plugin"
	"github.com/google/ldaudit/stats"
	"github.com/google/ldaudit/tools"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Array is a type to be passed to FlagSet.Var that supports arrays passed as repeated flags,
// e.g. ./ldaudit -o text=- -o json=out.json
type Array []string

func (i *Array) String() string {
	return strings.Join(*i, ",")
}

// Set gets called whenever a new instance of a flag is read during CLI arg parsing.
// For example, in the case of -o foo -o bar the library will call arr.Set("foo") then arr.Set("bar").
func (i *Array) Set(value string) error {
	*i = append(*i, strings.TrimSpace(value))
	return nil
}

// Type implements pflag.Value.
func (i *Array) Type() string { return "format=path" }

// StringListFlag is a type to be passed to FlagSet.Var that supports list flags passed as repeated
// flags, e.g. ./ldaudit --detectors a --detectors b,c the library will call Set("a") then Set("b,c").
type StringListFlag struct {
	set          bool
	value        []string
	defaultValue []string
}

// NewStringListFlag creates a new StringListFlag with the given default value.
func NewStringListFlag(defaultValue []string) StringListFlag {
	return StringListFlag{defaultValue: defaultValue}
}

// Set gets called whenever a new instance of a flag is read during CLI arg parsing.
func (s *StringListFlag) Set(x string) error {
	s.value = append(s.value, strings.Split(x, ",")...)
	s.set = true
	return nil
}

// Type implements pflag.Value.
func (s *StringListFlag) Type() string { return "list" }

// GetSlice returns the underlying []string value stored by this flag struct.
func (s *StringListFlag) GetSlice() []string {
	if s.set {
		return s.value
	}
	return s.defaultValue
}

func (s *StringListFlag) String() string {
	if len(s.value) == 0 {
		return strings.Join(s.defaultValue, ",")
	}
	return strings.Join(s.value, ",")
}

// Flags contains a field for all the cli flags that can be set.
type Flags struct {
	ConfigFile     string
	Output         Array
	DetectorsToRun []string
	// Workers bounds concurrent listings and binary analyses. 0 means one per CPU.
	Workers        int
	Timeout        time.Duration
	MetadataReader string
	ReadelfPath    string
	LddPath        string
	TraceProbe     string
	RequiredTools  []string
	StrictTools    bool
	SkipDirGlob    string
	Color          string
	Verbose        bool
	PrintVersion   bool
}

// DefaultOutput is used when no -o flag is given.
const DefaultOutput = output.FormatText + "=" + output.Stdout

var knownTools = []string{tools.Readelf, tools.Ldd, tools.Loader}

// ParseFlags parses the command line arguments, merges in the config file named
// by --config and validates the result. Flags given on the command line take
// precedence over the config file.
func ParseFlags(args []string) (*Flags, error) {
	def := tools.DefaultConfig()
	fs := pflag.NewFlagSet("ldaudit", pflag.ContinueOnError)
	configFile := fs.String("config", "", "Path of a YAML (.yaml, .yml) or TOML (.toml) file with default settings")
	var outputs Array
	fs.VarP(&outputs, "output", "o", `Where to write the results, as format=path. Formats: text, json, yaml. Path "-" is stdout. Repeatable. Default text=-`)
	detectorsToRun := NewStringListFlag([]string{"default"})
	fs.Var(&detectorsToRun, "detectors", fmt.Sprintf("Comma-separated list of detectors or groups to run: %s", strings.Join(dl.Names(), ", ")))
	workers := fs.IntP("workers", "j", 0, "Maximum number of concurrent directory listings and binary analyses (0: one per CPU)")
	timeout := fs.Duration("timeout", def.Timeout, "Timeout of every external tool invocation")
	metadataReader := fs.String("metadata-reader", def.Backend, "How to read RPATH, RUNPATH and the interpreter: readelf or elf (built-in parser)")
	readelfPath := fs.String("readelf", def.ReadelfPath, "The readelf program")
	lddPath := fs.String("ldd", def.LddPath, "The ldd program")
	traceProbe := fs.String("trace-probe", def.TraceProbe, "Program run under the loader trace to learn the linker default search path")
	requiredTools := NewStringListFlag(nil)
	fs.Var(&requiredTools, "require-tool", "Comma-separated list of tools (readelf, ldd, ld.so) whose absence is reported as an error")
	strictTools := fs.Bool("strict-tools", false, "Exit with an error instead of warning when a tool named by --require-tool is missing")
	skipDirGlob := fs.String("skip-dir-glob", "", "Search directories matching this glob aren't listed. The glob is matched against the absolute path")
	color := fs.String("color", string(output.ColorAuto), "Colour text output: auto, always or never")
	verbose := fs.BoolP("verbose", "v", false, "Enable this to print debug logs")
	printVersion := fs.Bool("version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments %v", fs.Args())
	}

	flags := &Flags{
		ConfigFile:     *configFile,
		Output:         outputs,
		DetectorsToRun: detectorsToRun.GetSlice(),
		Workers:        *workers,
		Timeout:        *timeout,
		MetadataReader: *metadataReader,
		ReadelfPath:    *readelfPath,
		LddPath:        *lddPath,
		TraceProbe:     *traceProbe,
		RequiredTools:  requiredTools.GetSlice(),
		StrictTools:    *strictTools,
		SkipDirGlob:    *skipDirGlob,
		Color:          *color,
		Verbose:        *verbose,
		PrintVersion:   *printVersion,
	}
	if flags.ConfigFile != "" {
		fc, err := LoadConfigFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if err := flags.applyConfigFile(fc, fs.Changed); err != nil {
			return nil, fmt.Errorf("%s: %w", flags.ConfigFile, err)
		}
	}
	if len(flags.Output) == 0 {
		flags.Output = Array{DefaultOutput}
	}
	if err := ValidateFlags(flags); err != nil {
		return nil, err
	}
	return flags, nil
}

// ValidateFlags validates the passed command line flags.
func ValidateFlags(flags *Flags) error {
	if flags.PrintVersion {
		return nil
	}
	if err := validateOutput(flags.Output); err != nil {
		return fmt.Errorf("-o %w", err)
	}
	if err := validateMultiStringArg(flags.DetectorsToRun); err != nil {
		return fmt.Errorf("--detectors: %w", err)
	}
	if _, err := dl.DetectorsFromNames(multiStringToList(flags.DetectorsToRun)); err != nil {
		return fmt.Errorf("--detectors: %w", err)
	}
	if flags.Workers < 0 {
		return fmt.Errorf("--workers must not be negative, got %d", flags.Workers)
	}
	if flags.Timeout < 0 {
		return fmt.Errorf("--timeout must not be negative, got %v", flags.Timeout)
	}
	if flags.MetadataReader != tools.BackendReadelf && flags.MetadataReader != tools.BackendELF {
		return fmt.Errorf("--metadata-reader %q not recognized, want %s or %s", flags.MetadataReader, tools.BackendReadelf, tools.BackendELF)
	}
	if err := validateMultiStringArg(flags.RequiredTools); err != nil {
		return fmt.Errorf("--require-tool: %w", err)
	}
	for _, t := range multiStringToList(flags.RequiredTools) {
		if !slices.Contains(knownTools, t) {
			return fmt.Errorf("--require-tool: tool %q not recognized, supported tools are %v", t, knownTools)
		}
	}
	if err := validateGlob(flags.SkipDirGlob); err != nil {
		return fmt.Errorf("--skip-dir-glob: %w", err)
	}
	if _, err := output.ParseColorMode(flags.Color); err != nil {
		return fmt.Errorf("--color: %w", err)
	}
	return nil
}

func validateOutput(outputs []string) error {
	for _, item := range outputs {
		format, path, ok := strings.Cut(item, "=")
		if !ok || path == "" {
			return errors.New("invalid output format, should follow a format like -o text=- -o json=result.json")
		}
		if !slices.Contains(output.SupportedFormats, format) {
			return fmt.Errorf("output format %q not recognized, supported formats are %v", format, output.SupportedFormats)
		}
	}
	return nil
}

func validateMultiStringArg(arg []string) error {
	for _, item := range arg {
		if len(item) == 0 {
			return errors.New("list item cannot be left empty")
		}
	}
	return nil
}

func validateGlob(arg string) error {
	if arg == "" {
		return nil
	}
	_, err := glob.Compile(arg, '/')
	return err
}

func multiStringToList(arg []string) []string {
	var result []string
	for _, item := range arg {
		result = append(result, strings.Split(item, ",")...)
	}
	return result
}

// FileConfig is the content of a --config file. Unset keys keep the flag defaults.
type FileConfig struct {
	Detectors      []string `yaml:"detectors" toml:"detectors"`
	Workers        *int     `yaml:"workers" toml:"workers"`
	Timeout        string   `yaml:"timeout" toml:"timeout"`
	MetadataReader string   `yaml:"metadata_reader" toml:"metadata_reader"`
	Readelf        string   `yaml:"readelf" toml:"readelf"`
	Ldd            string   `yaml:"ldd" toml:"ldd"`
	TraceProbe     string   `yaml:"trace_probe" toml:"trace_probe"`
	RequireTools   []string `yaml:"require_tools" toml:"require_tools"`
	StrictTools    *bool    `yaml:"strict_tools" toml:"strict_tools"`
	SkipDirGlob    string   `yaml:"skip_dir_glob" toml:"skip_dir_glob"`
	Outputs        []string `yaml:"outputs" toml:"outputs"`
	Color          string   `yaml:"color" toml:"color"`
	Verbose        *bool    `yaml:"verbose" toml:"verbose"`
}

// LoadConfigFile reads a YAML or TOML config file, chosen by extension.
// Unknown keys are an error.
func LoadConfigFile(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fc := &FileConfig{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(fc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.NewDecoder(f).Decode(fc)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parsing %s: unknown keys %v", path, undecoded)
		}
	default:
		return nil, fmt.Errorf("config file %s: extension %q not recognized, want .yaml, .yml or .toml", path, ext)
	}
	return fc, nil
}

// applyConfigFile copies the file values into the flags not set on the command line.
func (f *Flags) applyConfigFile(fc *FileConfig, changed func(name string) bool) error {
	setString := func(name string, dst *string, v string) {
		if v != "" && !changed(name) {
			*dst = v
		}
	}
	setBool := func(name string, dst *bool, v *bool) {
		if v != nil && !changed(name) {
			*dst = *v
		}
	}
	if len(fc.Detectors) > 0 && !changed("detectors") {
		f.DetectorsToRun = fc.Detectors
	}
	if fc.Workers != nil && !changed("workers") {
		f.Workers = *fc.Workers
	}
	if fc.Timeout != "" && !changed("timeout") {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		f.Timeout = d
	}
	setString("metadata-reader", &f.MetadataReader, fc.MetadataReader)
	setString("readelf", &f.ReadelfPath, fc.Readelf)
	setString("ldd", &f.LddPath, fc.Ldd)
	setString("trace-probe", &f.TraceProbe, fc.TraceProbe)
	if len(fc.RequireTools) > 0 && !changed("require-tool") {
		f.RequiredTools = fc.RequireTools
	}
	setBool("strict-tools", &f.StrictTools, fc.StrictTools)
	setString("skip-dir-glob", &f.SkipDirGlob, fc.SkipDirGlob)
	if len(fc.Outputs) > 0 && !changed("output") {
		f.Output = Array(fc.Outputs)
	}
	setString("color", &f.Color, fc.Color)
	setBool("verbose", &f.Verbose, fc.Verbose)
	return nil
}

// ToolsConfig returns the external tool settings.
func (f *Flags) ToolsConfig() tools.Config {
	return tools.Config{
		Backend:     f.MetadataReader,
		ReadelfPath: f.ReadelfPath,
		LddPath:     f.LddPath,
		TraceProbe:  f.TraceProbe,
		Timeout:     f.Timeout,
	}
}

// CheckRequiredTools reports the required tools missing from ts. It fails only
// in strict mode; otherwise the missing tools are logged.
func (f *Flags) CheckRequiredTools(ts *tools.Set) error {
	var missing []string
	for _, t := range multiStringToList(f.RequiredTools) {
		if !slices.Contains(ts.Available, t) {
			missing = append(missing, t)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if f.StrictTools {
		return fmt.Errorf("required tools %v: %w", missing, tools.ErrToolUnavailable)
	}
	log.Warnf("required tools %v are unavailable, the checks depending on them are skipped", missing)
	return nil
}

// GetScanConfig constructs an ldaudit scan config from the provided CLI flags,
// auditing the running system with the given tools.
func (f *Flags) GetScanConfig(ts *tools.Set) (*ldaudit.ScanConfig, error) {
	if err := f.CheckRequiredTools(ts); err != nil {
		return nil, err
	}
	detectors, err := f.detectorsToRun()
	if err != nil {
		return nil, err
	}
	capab := capabilities(ts)
	detectors = plugin.FilterByCapabilities(detectors, capab)

	var skipDirGlob glob.Glob
	if f.SkipDirGlob != "" {
		skipDirGlob, err = glob.Compile(f.SkipDirGlob, '/')
		if err != nil {
			return nil, err
		}
	}
	root, err := platform.SystemRoot()
	if err != nil {
		return nil, err
	}
	workers := f.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	return &ldaudit.ScanConfig{
		Detectors:    detectors,
		Capabilities: capab,
		Env:          environment.FromProcess(),
		Root:         scanfs.DirFS(root),
		Host:         scanfs.OSHost{},
		Tools:        ts,
		SkipDirGlob:  skipDirGlob,
		Workers:      workers,
	}, nil
}

// WriteScanResults writes the scan results to the destinations specified by the CLI flags.
func (f *Flags) WriteScanResults(result *ldaudit.ScanResult, c stats.Collector) error {
	mode, err := output.ParseColorMode(f.Color)
	if err != nil {
		return err
	}
	if c == nil {
		c = stats.NoopCollector{}
	}
	for _, item := range f.Output {
		format, path, _ := strings.Cut(item, "=")
		destination := "stdout"
		if path != output.Stdout {
			destination = "file"
			log.Infof("Writing scan results to %s", path)
		}
		n, err := output.Write(result, format, path, mode)
		c.AfterResultsExported(destination, n, err)
		if err != nil {
			return fmt.Errorf("writing %s output to %s: %w", format, path, err)
		}
	}
	return nil
}

func (f *Flags) detectorsToRun() ([]detector.Detector, error) {
	if len(f.DetectorsToRun) == 0 {
		return []detector.Detector{}, nil
	}
	return dl.DetectorsFromNames(multiStringToList(f.DetectorsToRun))
}

// All tools the scan found are offered to the detectors.
func capabilities(ts *tools.Set) *plugin.Capabilities {
	return &plugin.Capabilities{
		OS:            platform.OS(),
		RunningSystem: true,
		Tools:         slices.Clone(ts.Available),
	}
}
