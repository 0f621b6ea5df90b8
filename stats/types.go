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

package stats

import "time"

// DirScannedStats is a struct containing stats about the listing of one search directory.
type DirScannedStats struct {
	Path string
	// Files is the number of files assessed in the directory.
	Files   int
	Result  DirScannedResult
	Runtime time.Duration
	Error   error
}

// DirScannedResult is a string representation of the outcome of a directory listing.
type DirScannedResult string

const (
	// DirScannedResultOK indicates that the directory was listed.
	DirScannedResultOK DirScannedResult = "DIR_SCANNED_RESULT_OK"
	// DirScannedResultSkipped indicates that the directory matched the skip glob.
	DirScannedResultSkipped DirScannedResult = "DIR_SCANNED_RESULT_SKIPPED"
	// DirScannedResultError indicates that the directory couldn't be listed.
	DirScannedResultError DirScannedResult = "DIR_SCANNED_RESULT_ERROR"
)

// BinaryAnalyzedStats is a struct containing stats about the attribute
// extraction of one binary.
type BinaryAnalyzedStats struct {
	Path    string
	Result  BinaryAnalyzedResult
	Runtime time.Duration
	Error   error
}

// BinaryAnalyzedResult is a string representation of the outcome of an
// attribute extraction.
type BinaryAnalyzedResult string

const (
	// BinaryAnalyzedResultSuccess indicates that all attributes were read.
	BinaryAnalyzedResultSuccess BinaryAnalyzedResult = "BINARY_ANALYZED_RESULT_SUCCESS"
	// BinaryAnalyzedResultNotApplicable indicates that the path was not a regular file.
	BinaryAnalyzedResultNotApplicable BinaryAnalyzedResult = "BINARY_ANALYZED_RESULT_NOT_APPLICABLE"
	// BinaryAnalyzedResultErrorTool indicates that an external tool failed for this binary.
	BinaryAnalyzedResultErrorTool BinaryAnalyzedResult = "BINARY_ANALYZED_RESULT_ERROR_TOOL"
)
