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

// The ldaudit command audits the dynamic linker configuration and the search
// environment of the local machine for privilege escalation through search
// order hijacking.
package main

import (
	"errors"
	"os"

	"github.com/google/ldaudit/binary/cli"
	"github.com/google/ldaudit/binary/scanrunner"
	"github.com/google/ldaudit/log"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	flagArgs := args[1:]
	// "scan" is the only subcommand and may be omitted.
	if len(flagArgs) > 0 && flagArgs[0] == "scan" {
		flagArgs = flagArgs[1:]
	}
	flags, err := cli.ParseFlags(flagArgs)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		log.Errorf("Error parsing CLI args: %v", err)
		return 1
	}
	return scanrunner.RunScan(flags)
}
