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

package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dghubble/oauth1"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	mqerrors "github.com/sirseerhq/merge-queue/internal/errors"
	"github.com/sirseerhq/merge-queue/internal/launchpad"
)

// Options control how Login acquires a session.
type Options struct {
	// AppName is the OAuth consumer key.
	AppName string

	// ServiceRoot is the unversioned web service root. Cached credentials
	// are keyed by its host.
	ServiceRoot string

	// WebRoot hosts the token endpoints. Derived from ServiceRoot when empty.
	WebRoot string

	// CredentialsDir caches access tokens between runs.
	CredentialsDir string

	// Anonymous skips OAuth entirely.
	Anonymous bool

	// Interactive must be true for the browser authorization step; without
	// it only cached credentials can be used.
	Interactive bool

	// Prompt receives login instructions; Input supplies the confirmation.
	Prompt io.Writer
	Input  io.Reader

	Fs         afero.Fs
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Login returns an anonymous session, a session from cached credentials,
// or runs the desktop authorization flow and caches the result.
func Login(ctx context.Context, opts Options) (*Session, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = launchpad.NewHTTPClient(nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Prompt == nil {
		opts.Prompt = io.Discard
	}

	if opts.Anonymous {
		opts.Logger.Debug("using anonymous session", zap.String("app", opts.AppName))
		return newSession(Credentials{ConsumerKey: opts.AppName}), nil
	}

	store := NewStore(opts.Fs, opts.CredentialsDir)
	cached, err := store.Load(opts.ServiceRoot, opts.AppName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mqerrors.ErrAuthentication, err)
	}
	if cached.Authorized() {
		opts.Logger.Debug("using cached credentials", zap.String("app", opts.AppName))
		return newSession(*cached), nil
	}

	if !opts.Interactive || opts.Input == nil {
		return nil, mqerrors.NewUserError(mqerrors.ErrAuthentication,
			"no cached Launchpad credentials for %s; run once from a terminal to authorize, or use --anonymous",
			opts.AppName)
	}

	webRoot := opts.WebRoot
	if webRoot == "" {
		webRoot, err = launchpad.WebRootFor(opts.ServiceRoot)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", mqerrors.ErrAuthentication, err)
		}
	}

	creds, err := authorize(ctx, opts, webRoot)
	if err != nil {
		return nil, err
	}
	if err := store.Save(opts.ServiceRoot, opts.AppName, creds); err != nil {
		// The session is still usable for this run.
		opts.Logger.Warn("failed to cache credentials", zap.Error(err))
	}
	return newSession(*creds), nil
}

// authorize runs the request token, browser approval and access token steps.
// Launchpad takes the OAuth parameters as form fields and does not confirm
// callbacks, so the token exchanges are plain form posts.
func authorize(ctx context.Context, opts Options, webRoot string) (*Credentials, error) {
	config := &oauth1.Config{
		ConsumerKey: opts.AppName,
		Endpoint: oauth1.Endpoint{
			RequestTokenURL: webRoot + "+request-token",
			AuthorizeURL:    webRoot + "+authorize-token?allow_permission=DESKTOP_INTEGRATION",
			AccessTokenURL:  webRoot + "+access-token",
		},
		Signer: plaintextSigner{},
	}

	signature, err := config.Signer.Sign("", "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mqerrors.ErrAuthentication, err)
	}
	token, secret, err := postToken(ctx, opts.HTTPClient, config.Endpoint.RequestTokenURL, url.Values{
		"oauth_consumer_key":     {opts.AppName},
		"oauth_signature_method": {config.Signer.Name()},
		"oauth_signature":        {signature},
	})
	if err != nil {
		return nil, err
	}

	authorizeURL, err := config.AuthorizationURL(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mqerrors.ErrAuthentication, err)
	}

	fmt.Fprintf(opts.Prompt, "Authorize %s to access Launchpad on your behalf by visiting:\n\n    %s\n\n", opts.AppName, authorizeURL)
	fmt.Fprint(opts.Prompt, "Press Enter once you have completed the authorization in your browser. ")

	if _, err := bufio.NewReader(opts.Input).ReadString('\n'); err != nil {
		return nil, mqerrors.NewUserError(mqerrors.ErrAuthentication, "authorization aborted: %v", err)
	}

	signature, err = config.Signer.Sign(secret, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mqerrors.ErrAuthentication, err)
	}
	accessToken, accessSecret, err := postToken(ctx, opts.HTTPClient, config.Endpoint.AccessTokenURL, url.Values{
		"oauth_consumer_key":     {opts.AppName},
		"oauth_token":            {token},
		"oauth_signature_method": {config.Signer.Name()},
		"oauth_signature":        {signature},
	})
	if err != nil {
		return nil, err
	}

	return &Credentials{
		ConsumerKey:  opts.AppName,
		AccessToken:  accessToken,
		AccessSecret: accessSecret,
	}, nil
}

// postToken posts an OAuth form and parses the token pair from the
// form-encoded response.
func postToken(ctx context.Context, client *http.Client, endpoint string, form url.Values) (token, secret string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: cannot reach %s: %w", mqerrors.ErrAuthentication, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("%w: read %s: %w", mqerrors.ErrAuthentication, endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", mqerrors.NewUserError(mqerrors.ErrAuthentication,
			"Launchpad refused the token request: [%d] %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return "", "", fmt.Errorf("%w: malformed token response: %w", mqerrors.ErrAuthentication, err)
	}
	token, secret = values.Get("oauth_token"), values.Get("oauth_token_secret")
	if token == "" {
		return "", "", fmt.Errorf("%w: token response from %s has no oauth_token", mqerrors.ErrAuthentication, endpoint)
	}
	return token, secret, nil
}
