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

package tools

import (
	"bytes"
	"context"
	"debug/elf"
	"errors"
	"fmt"
	"io"
)

// ELFReader reads metadata natively with debug/elf. It needs no external tool.
type ELFReader struct{}

// ReadMetadata opens path as an ELF file.
func (ELFReader) ReadMetadata(_ context.Context, path string) (*Metadata, error) {
	f, err := elf.Open(path)
	if err != nil {
		var fmtErr *elf.FormatError
		if errors.As(err, &fmtErr) {
			return nil, ErrNotELF
		}
		return nil, err
	}
	defer f.Close()

	md := &Metadata{}
	// DynString fails on files without a dynamic section, e.g. static binaries.
	if rpath, err := f.DynString(elf.DT_RPATH); err == nil {
		md.Rpath = rpath
	}
	if runpath, err := f.DynString(elf.DT_RUNPATH); err == nil {
		md.Runpath = runpath
	}
	interp, err := findInterpreter(f)
	if err != nil {
		return nil, fmt.Errorf("reading interpreter of %s: %w", path, err)
	}
	md.Interpreter = interp
	return md, nil
}

// findInterpreter returns the PT_INTERP path, or "" if the file has none.
func findInterpreter(f *elf.File) (string, error) {
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_INTERP {
			continue
		}
		buf, err := io.ReadAll(prog.Open())
		if err != nil {
			return "", err
		}
		return string(bytes.Trim(buf, "\x00")), nil
	}
	return "", nil
}
