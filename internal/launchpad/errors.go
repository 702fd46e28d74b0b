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

package launchpad

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mqerrors "github.com/sirseerhq/merge-queue/internal/errors"
)

// maxErrorBody bounds how much of an error response ends up in messages.
const maxErrorBody = 512

// HTTPError is a non-2xx response from the web service.
type HTTPError struct {
	StatusCode int
	Body       string
	URL        string
}

// Error formats the failure the way Launchpad reports it: "[status] body".
func (e *HTTPError) Error() string {
	return fmt.Sprintf("[%d] %s", e.StatusCode, e.Body)
}

// HTTPStatus implements apierror.StatusCoder.
func (e *HTTPError) HTTPStatus() int { return e.StatusCode }

func newHTTPError(status int, url string, body []byte) *HTTPError {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return &HTTPError{StatusCode: status, Body: text, URL: url}
}

// mapError maps transport and HTTP failures to our domain errors with
// actionable messages.
func (c *Client) mapError(err error, target string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	// Check auth first, a 403 is never worth reporting as a plain request failure
	if c.inspector.IsAuthError(err) {
		return fmt.Errorf("%w: %w. Your cached credentials may have been revoked; delete them and log in again", mqerrors.ErrAuthentication, err)
	}

	if c.inspector.IsNetworkError(err) {
		return fmt.Errorf("%w: cannot reach %s: %w", mqerrors.ErrNetworkFailure, target, err)
	}

	if c.inspector.IsNotFoundError(err) {
		return fmt.Errorf("%w: %s not found: %w", mqerrors.ErrRemoteLookup, target, err)
	}

	if c.inspector.IsRateLimitError(err) {
		return fmt.Errorf("%w: rate limited by Launchpad, try again later: %w", mqerrors.ErrRemoteRequest, err)
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("%w: %w", mqerrors.ErrRemoteRequest, err)
	}

	return fmt.Errorf("request %s: %w", target, err)
}
