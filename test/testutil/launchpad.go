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

// Package testutil provides common test helpers for merge-queue
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// OAuth tokens handed out by the fake server.
const (
	RequestToken       = "req-token"
	RequestTokenSecret = "req-secret"
	AccessToken        = "acc-token"
	AccessTokenSecret  = "acc-secret"
)

// FakeLaunchpad serves a tiny Launchpad web service from memory: entries,
// paginated collections, branches.getByUrl and the OAuth token endpoints.
type FakeLaunchpad struct {
	*httptest.Server

	// PageSize splits collections into batches linked by next_collection_link.
	// Zero serves each collection in one batch.
	PageSize int

	// RequireOAuth rejects API requests that are not signed with AccessToken.
	RequireOAuth bool

	// DenyAccess makes +access-token refuse to exchange the request token.
	DenyAccess bool

	// FailPaths forces an error status for specific API paths.
	FailPaths map[string]int

	mu          sync.Mutex
	entries     map[string]map[string]any
	collections map[string][]string
	byURL       map[string]string
	counter     int
	requests    []string
	authHeaders []string
}

// NewFakeLaunchpad starts a fake server that is closed when the test ends.
func NewFakeLaunchpad(t *testing.T) *FakeLaunchpad {
	t.Helper()
	f := &FakeLaunchpad{
		FailPaths:   map[string]int{},
		entries:     map[string]map[string]any{},
		collections: map[string][]string{},
		byURL:       map[string]string{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

// ServiceRoot is the unversioned service root, usable as --lp-instance.
func (f *FakeLaunchpad) ServiceRoot() string { return f.URL + "/" }

// APIRoot is the "devel" versioned root.
func (f *FakeLaunchpad) APIRoot() string { return f.URL + "/devel/" }

// Link returns the absolute URL of an API path such as "/~alice".
func (f *FakeLaunchpad) Link(path string) string { return f.URL + "/devel" + path }

// Requests returns the API paths requested so far, in order.
func (f *FakeLaunchpad) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// AuthHeaders returns the Authorization headers of API requests, in order.
func (f *FakeLaunchpad) AuthHeaders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authHeaders...)
}

// AddPerson registers a person and returns its path.
func (f *FakeLaunchpad) AddPerson(name, displayName string) string {
	path := "/~" + name
	f.put(path, "person", map[string]any{
		"name":         name,
		"display_name": displayName,
		"is_team":      false,
		"karma":        json.Number("1234"),
	})
	return path
}

// AddBranch registers a branch reachable through its lp: shorthand, its
// code.launchpad.net URL and its bzr+ssh URL. It returns the branch path.
func (f *FakeLaunchpad) AddBranch(uniqueName string) string {
	path := "/" + uniqueName
	f.put(path, "branch", map[string]any{
		"unique_name":                        uniqueName,
		"bzr_identity":                       "lp:" + uniqueName,
		"lifecycle_status":                   "Development",
		"landing_candidates_collection_link": f.Link(path + "/landing_candidates"),
		"owner_link":                         f.Link("/" + strings.SplitN(uniqueName, "/", 2)[0]),
	})
	f.mu.Lock()
	f.collections[path+"/landing_candidates"] = []string{}
	f.byURL["lp:"+uniqueName] = path
	f.byURL["https://code.launchpad.net/"+uniqueName] = path
	f.byURL["bzr+ssh://bazaar.launchpad.net/"+uniqueName] = path
	f.mu.Unlock()
	return path
}

// Proposal starts building a merge proposal of source into target.
func (f *FakeLaunchpad) Proposal(target, source string) *ProposalBuilder {
	f.mu.Lock()
	f.counter++
	id := f.counter
	f.mu.Unlock()
	return &ProposalBuilder{
		fake:   f,
		path:   fmt.Sprintf("%s/+merge/%d", source, id),
		target: target,
		source: source,
		fields: map[string]any{
			"queue_status":   "Needs review",
			"date_created":   "2024-01-15T10:30:00.123456+00:00",
			"commit_message": nil,
			"description":    fmt.Sprintf("Merge proposal %d", id),
		},
	}
}

// ProposalBuilder assembles a merge proposal and its votes.
type ProposalBuilder struct {
	fake   *FakeLaunchpad
	path   string
	target string
	source string
	fields map[string]any
	votes  []voteSpec
}

type voteSpec struct {
	reviewer string
	verdict  string
}

// WithField sets a scalar attribute.
func (b *ProposalBuilder) WithField(key string, value any) *ProposalBuilder {
	b.fields[key] = value
	return b
}

// WithVote adds a vote by reviewer (a person path). An empty verdict records
// a pending review with no comment.
func (b *ProposalBuilder) WithVote(reviewer, verdict string) *ProposalBuilder {
	b.votes = append(b.votes, voteSpec{reviewer: reviewer, verdict: verdict})
	return b
}

// Build registers the proposal, appends it to the target's landing
// candidates and returns its path.
func (b *ProposalBuilder) Build() string {
	f := b.fake
	fields := map[string]any{
		"source_branch_link":       f.Link(b.source),
		"target_branch_link":       f.Link(b.target),
		"prerequisite_branch_link": nil,
		"votes_collection_link":    f.Link(b.path + "/votes"),
	}
	for k, v := range b.fields {
		fields[k] = v
	}
	f.put(b.path, "branch_merge_proposal", fields)

	votePaths := make([]string, 0, len(b.votes))
	for i, v := range b.votes {
		votePath := fmt.Sprintf("%s/votes/%d", b.path, i+1)
		vote := map[string]any{
			"reviewer_link": f.Link(v.reviewer),
			"review_type":   nil,
			"comment_link":  nil,
		}
		if v.verdict != "" {
			commentPath := fmt.Sprintf("%s/comments/%d", b.path, i+1)
			f.put(commentPath, "code_review_comment", map[string]any{
				"vote":         v.verdict,
				"title":        "Re: " + b.fields["description"].(string),
				"author_link":  f.Link(v.reviewer),
				"date_created": "2024-01-16T08:00:00+00:00",
			})
			vote["comment_link"] = f.Link(commentPath)
		}
		f.put(votePath, "code_review_vote_reference", vote)
		votePaths = append(votePaths, votePath)
	}

	f.mu.Lock()
	f.collections[b.path+"/votes"] = votePaths
	f.collections[b.target+"/landing_candidates"] = append(f.collections[b.target+"/landing_candidates"], b.path)
	f.mu.Unlock()
	return b.path
}

func (f *FakeLaunchpad) put(path, resourceType string, fields map[string]any) {
	rep := map[string]any{
		"self_link":          f.Link(path),
		"web_link":           "https://code.launchpad.net" + path,
		"resource_type_link": f.APIRoot() + "#" + resourceType,
		"http_etag":          fmt.Sprintf(`"%x"`, len(path)),
	}
	for k, v := range fields {
		rep[k] = v
	}
	f.mu.Lock()
	f.entries[path] = rep
	f.mu.Unlock()
}

func (f *FakeLaunchpad) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/+request-token":
		f.handleRequestToken(w, r)
		return
	case "/+access-token":
		f.handleAccessToken(w, r)
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/devel/") {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/devel")

	f.mu.Lock()
	f.requests = append(f.requests, path)
	f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
	status, fail := f.FailPaths[path]
	f.mu.Unlock()

	if f.RequireOAuth && !strings.Contains(r.Header.Get("Authorization"), `oauth_token="`+AccessToken+`"`) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if fail {
		http.Error(w, http.StatusText(status), status)
		return
	}

	if path == "/branches" && r.URL.Query().Get("ws.op") == "getByUrl" {
		f.mu.Lock()
		branchPath, ok := f.byURL[r.URL.Query().Get("url")]
		var rep map[string]any
		if ok {
			rep = f.entries[branchPath]
		}
		f.mu.Unlock()
		writeJSON(w, rep)
		return
	}

	f.mu.Lock()
	members, isCollection := f.collections[path]
	rep, isEntry := f.entries[path]
	f.mu.Unlock()

	switch {
	case isCollection:
		f.writeCollection(w, r, path, members)
	case isEntry:
		writeJSON(w, rep)
	default:
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprintf(w, "Object: %s, name: %q", f.APIRoot(), path)
	}
}

func (f *FakeLaunchpad) writeCollection(w http.ResponseWriter, r *http.Request, path string, members []string) {
	start, _ := strconv.Atoi(r.URL.Query().Get("ws.start"))
	size := len(members)
	if f.PageSize > 0 {
		size = f.PageSize
	}
	if s, err := strconv.Atoi(r.URL.Query().Get("ws.size")); err == nil && s > 0 {
		size = s
	}
	if start > len(members) {
		start = len(members)
	}
	end := start + size
	if end > len(members) {
		end = len(members)
	}

	entries := make([]map[string]any, 0, end-start)
	f.mu.Lock()
	for _, member := range members[start:end] {
		entries = append(entries, f.entries[member])
	}
	f.mu.Unlock()

	page := map[string]any{
		"total_size":         len(members),
		"start":              start,
		"entries":            entries,
		"resource_type_link": f.APIRoot() + "#collection",
	}
	if end < len(members) {
		next := url.Values{}
		next.Set("ws.start", strconv.Itoa(end))
		next.Set("ws.size", strconv.Itoa(size))
		page["next_collection_link"] = f.Link(path) + "?" + next.Encode()
	}
	writeJSON(w, page)
}

func (f *FakeLaunchpad) handleRequestToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil || r.PostForm.Get("oauth_consumer_key") == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
	_, _ = fmt.Fprintf(w, "oauth_token=%s&oauth_token_secret=%s", RequestToken, RequestTokenSecret)
}

func (f *FakeLaunchpad) handleAccessToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if f.DenyAccess {
		http.Error(w, "Request token has not yet been reviewed. Try again later.", http.StatusUnauthorized)
		return
	}
	if r.PostForm.Get("oauth_token") != RequestToken || r.PostForm.Get("oauth_signature") != "&"+RequestTokenSecret {
		http.Error(w, "Invalid OAuth signature.", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
	_, _ = fmt.Fprintf(w, "oauth_token=%s&oauth_token_secret=%s", AccessToken, AccessTokenSecret)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if v == nil {
		_, _ = w.Write([]byte("null"))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
