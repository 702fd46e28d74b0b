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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/sirseerhq/merge-queue/internal/apierror"
	mqerrors "github.com/sirseerhq/merge-queue/internal/errors"
	"github.com/sirseerhq/merge-queue/internal/resource"
)

// Client reads entries and collections from the Launchpad web service.
// Authentication is the job of the http.Client's transport.
type Client struct {
	httpClient *http.Client
	root       *url.URL
	inspector  apierror.Inspector
	logger     *zap.Logger
	onRequest  func(method, target string)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestHook registers fn to be called before every request.
func WithRequestHook(fn func(method, target string)) Option {
	return func(c *Client) {
		c.onRequest = fn
	}
}

// NewClient creates a client for the versioned service root, for example
// "https://api.launchpad.net/devel/".
func NewClient(versionedRoot string, httpClient *http.Client, opts ...Option) (*Client, error) {
	root, err := url.Parse(ensureSlash(versionedRoot))
	if err != nil {
		return nil, fmt.Errorf("parse service root %q: %w", versionedRoot, err)
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(nil)
	}
	c := &Client{
		httpClient: httpClient,
		root:       root,
		inspector:  apierror.NewInspector(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BranchByURL looks a branch up by any of its URLs (bzr+ssh, lp:, https).
// It returns (nil, nil) when Launchpad knows no such branch.
func (c *Client) BranchByURL(ctx context.Context, branchURL string) (resource.Object, error) {
	target := c.root.ResolveReference(&url.URL{Path: "branches"})
	query := url.Values{}
	query.Set("ws.op", "getByUrl")
	query.Set("url", branchURL)
	target.RawQuery = query.Encode()

	var rep map[string]any
	if err := c.getJSON(ctx, target.String(), &rep); err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, nil
	}
	return c.newEntry(rep), nil
}

// Get fetches a single entry by URL.
func (c *Client) Get(ctx context.Context, target string) (*Entry, error) {
	var rep map[string]any
	if err := c.getJSON(ctx, target, &rep); err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, fmt.Errorf("%w: %s returned no entry", mqerrors.ErrRemoteLookup, target)
	}
	return c.newEntry(rep), nil
}

// collectionPage is one batch of a Launchpad collection.
type collectionPage struct {
	TotalSize          *int             `json:"total_size"`
	Start              int              `json:"start"`
	Entries            []map[string]any `json:"entries"`
	NextCollectionLink string           `json:"next_collection_link"`
}

// GetCollection fetches every entry of the collection at target, following
// next_collection_link until the server reports no further batch.
func (c *Client) GetCollection(ctx context.Context, target string) ([]*Entry, error) {
	var entries []*Entry
	seen := map[string]bool{}

	for next := target; next != "" && !seen[next]; {
		seen[next] = true

		var page collectionPage
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		for _, rep := range page.Entries {
			entries = append(entries, c.newEntry(rep))
		}
		next = page.NextCollectionLink
	}

	return entries, nil
}

func (c *Client) getJSON(ctx context.Context, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.onRequest != nil {
		c.onRequest(http.MethodGet, target)
	}
	c.logger.Debug("launchpad request", zap.String("method", http.MethodGet), zap.String("url", target))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapError(err, target)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.mapError(err, target)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("launchpad error response",
			zap.String("url", target),
			zap.Int("status", resp.StatusCode))
		return c.mapError(newHTTPError(resp.StatusCode, target, body), target)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: decode response from %s: %w", mqerrors.ErrRemoteRequest, target, err)
	}
	return nil
}
