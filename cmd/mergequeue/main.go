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
	"os"

	"github.com/spf13/afero"

	"github.com/sirseerhq/merge-queue/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], environment{
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		fs:          afero.NewOsFs(),
		interactive: logging.IsTerminal(os.Stdin) && logging.IsTerminal(os.Stderr),
		colorize:    logging.IsTerminal(os.Stderr),
	}))
}
