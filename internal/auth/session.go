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
	"context"
	"net/http"

	"github.com/dghubble/oauth1"
	"github.com/google/uuid"
)

// oauthRealm is the realm Launchpad expects in every Authorization header.
const oauthRealm = "https://api.launchpad.net/"

// plaintextSigner implements the OAuth PLAINTEXT method, the only one
// Launchpad accepts: the signature is the escaped consumer secret and token
// secret joined by "&".
type plaintextSigner struct {
	consumerSecret string
}

func (s plaintextSigner) Name() string { return "PLAINTEXT" }

func (s plaintextSigner) Sign(tokenSecret, _ string) (string, error) {
	return oauth1.PercentEncode(s.consumerSecret) + "&" + oauth1.PercentEncode(tokenSecret), nil
}

type uuidNoncer struct{}

func (uuidNoncer) Nonce() string { return uuid.NewString() }

// Session signs web service requests for one application.
type Session struct {
	Credentials Credentials

	noncer oauth1.Noncer
}

func newSession(creds Credentials) *Session {
	return &Session{Credentials: creds, noncer: uuidNoncer{}}
}

// Anonymous reports whether the session reads public data only.
func (s *Session) Anonymous() bool {
	return !s.Credentials.Authorized()
}

func (s *Session) config() *oauth1.Config {
	return &oauth1.Config{
		ConsumerKey:    s.Credentials.ConsumerKey,
		ConsumerSecret: s.Credentials.ConsumerSecret,
		Realm:          oauthRealm,
		Signer:         plaintextSigner{consumerSecret: s.Credentials.ConsumerSecret},
		Noncer:         s.noncer,
	}
}

// Transport returns a RoundTripper that adds the OAuth Authorization header
// before delegating to base. Anonymous sessions sign with an empty token.
func (s *Session) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, &http.Client{Transport: base})
	token := oauth1.NewToken(s.Credentials.AccessToken, s.Credentials.AccessSecret)
	return s.config().Client(ctx, token).Transport
}
