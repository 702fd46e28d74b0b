// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	mqerrors "github.com/sirseerhq/merge-queue/internal/errors"
)

const (
	exitUnexpected = 1
	exitUserError  = 2
)

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}
	if mqerrors.IsUserError(err) {
		return exitUserError
	}
	return exitUnexpected
}

// reportError prints err to w. User-facing errors are a single
// "ERROR: <message>" line.
func reportError(w io.Writer, err error, colorize bool) {
	msg := strings.TrimSpace(strings.ReplaceAll(err.Error(), "\n", " "))

	if !mqerrors.IsUserError(err) {
		fmt.Fprintf(w, "Error: %s\n", msg)
		return
	}

	prefix := color.New(color.FgRed, color.Bold)
	if colorize {
		prefix.EnableColor()
	} else {
		prefix.DisableColor()
	}
	fmt.Fprintf(w, "%s %s\n", prefix.Sprint("ERROR:"), msg)
}
