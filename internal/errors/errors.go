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

// Package errors defines sentinel errors for consistent error handling across the application.
// Every sentinel here is user-facing: the CLI reports it as a single ERROR line
// and exits with code 2. Anything else is treated as a defect.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrBranchNotFound indicates the branch URL did not resolve to a Launchpad branch.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrAuthentication indicates login failed or the service rejected our credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRemoteLookup indicates a linked attribute or collection could not be resolved
	// while expanding a remote object.
	ErrRemoteLookup = errors.New("remote lookup failed")

	// ErrRemoteRequest indicates the service answered a request with an error status.
	ErrRemoteRequest = errors.New("remote request failed")

	// ErrNetworkFailure indicates a network connection problem.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrInvalidInstance indicates an unknown --lp-instance value.
	ErrInvalidInstance = errors.New("invalid launchpad instance")

	// ErrInvalidConfig indicates an unreadable or inconsistent configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUsage indicates bad command-line arguments.
	ErrUsage = errors.New("invalid usage")
)

var userFacing = []error{
	ErrBranchNotFound,
	ErrAuthentication,
	ErrRemoteLookup,
	ErrRemoteRequest,
	ErrNetworkFailure,
	ErrInvalidInstance,
	ErrInvalidConfig,
	ErrUsage,
}

// UserError is an error whose message is safe to show the user as-is.
type UserError struct {
	Msg string
	Err error
}

// NewUserError returns a UserError with a formatted message wrapping kind.
func NewUserError(kind error, format string, args ...any) *UserError {
	return &UserError{Msg: fmt.Sprintf(format, args...), Err: kind}
}

func (e *UserError) Error() string {
	if e.Msg == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *UserError) Unwrap() error { return e.Err }

// IsUserError reports whether err should be reported to the user as a
// one-line diagnostic rather than as an unexpected failure.
func IsUserError(err error) bool {
	if err == nil {
		return false
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return true
	}
	for _, sentinel := range userFacing {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
