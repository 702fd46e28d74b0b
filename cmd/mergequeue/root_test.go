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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/merge-queue/internal/auth"
	mqerrors "github.com/sirseerhq/merge-queue/internal/errors"
	"github.com/sirseerhq/merge-queue/internal/metadata"
	"github.com/sirseerhq/merge-queue/internal/resource"
	"github.com/sirseerhq/merge-queue/pkg/version"
	"github.com/sirseerhq/merge-queue/test/testutil"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// isolate keeps the user's config and credentials out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"MERGE_QUEUE_LP_INSTANCE",
		"MERGE_QUEUE_API_VERSION",
		"MERGE_QUEUE_CREDENTIALS_DIR",
		"MERGE_QUEUE_ANONYMOUS",
		"MERGE_QUEUE_PRETTY",
		"MERGE_QUEUE_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, env environment, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	env.stdout = &stdout
	env.stderr = &stderr
	if env.stdin == nil {
		env.stdin = strings.NewReader("")
	}
	if env.fs == nil {
		env.fs = afero.NewMemMapFs()
	}
	code := run(args, env)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func anonymous(fake *testutil.FakeLaunchpad, args ...string) []string {
	return append([]string{"--lp-instance", fake.ServiceRoot(), "--anonymous"}, args...)
}

// reviewedBranch sets up a branch with one proposal reviewed by Alice and Bob.
func reviewedBranch(fake *testutil.FakeLaunchpad) string {
	alice := fake.AddPerson("alice", "Alice")
	bob := fake.AddPerson("bob", "Bob")
	target := fake.AddBranch("~alice/project/trunk")
	source := fake.AddBranch("~bob/project/fix")
	fake.Proposal(target, source).
		WithVote(alice, "Approve").
		WithVote(bob, "Needs Fixing").
		Build()
	return "lp:~alice/project/trunk"
}

func TestRun_NoProposals(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeLaunchpad(t)
	fake.AddBranch("~alice/project/trunk")

	res := execute(t, environment{}, anonymous(fake, "lp:~alice/project/trunk")...)

	assert.Equal(t, 0, res.code)
	assert.Equal(t, "[]\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestRun_InvalidBranch(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeLaunchpad(t)

	res := execute(t, environment{}, anonymous(fake, "lp:~nobody/nothing/here")...)

	assert.Equal(t, 2, res.code)
	assert.Empty(t, res.stdout)
	testutil.AssertSingleErrorLine(t, res.stderr, "lp:~nobody/nothing/here")
	assert.Equal(t, "ERROR: Not a valid branch: \"lp:~nobody/nothing/here\"\n", res.stderr)
}

func TestRun_ReviewedProposal(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeLaunchpad(t)
	branch := reviewedBranch(fake)

	res := execute(t, environment{}, anonymous(fake, branch)...)
	require.Equal(t, 0, res.code, res.stderr)

	proposals := testutil.AssertProposalsOutput(t, res.stdout, 1)
	want := []any{
		map[string]any{"reviewer": "Alice", "vote": "Approve"},
		map[string]any{"reviewer": "Bob", "vote": "Needs Fixing"},
	}
	if diff := cmp.Diff(want, proposals[0]["reviews"]); diff != "" {
		t.Errorf("reviews mismatch (-want +got):\n%s", diff)
	}
	votes := proposals[0]["votes"].([]any)
	require.Len(t, votes, 2)
	assert.Equal(t, "Alice", votes[0].(map[string]any)["reviewer"].(map[string]any)["display_name"])
	assert.Equal(t, "Needs Fixing", votes[1].(map[string]any)["comment"].(map[string]any)["vote"])
}

func TestRun_PrettyMatchesCompact(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeLaunchpad(t)
	branch := reviewedBranch(fake)

	compact := execute(t, environment{}, anonymous(fake, branch)...)
	pretty := execute(t, environment{}, anonymous(fake, "--pretty", branch)...)
	require.Equal(t, 0, compact.code, compact.stderr)
	require.Equal(t, 0, pretty.code, pretty.stderr)

	assert.NotEqual(t, compact.stdout, pretty.stdout)
	assert.True(t, strings.HasPrefix(pretty.stdout, "[\n    {\n        \""), "four-space indentation")
	assert.Equal(t, 1, strings.Count(compact.stdout, "\n"), "compact output is one line")

	var a, b any
	require.NoError(t, json.Unmarshal([]byte(compact.stdout), &a))
	require.NoError(t, json.Unmarshal([]byte(pretty.stdout), &b))
	assert.Equal(t, a, b)
}

func TestRun_UserErrors(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeLaunchpad(t)
	fake.AddBranch("~alice/project/trunk")

	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"no branch", []string{"--anonymous"}, "expected exactly one branch URL"},
		{"two branches", []string{"--anonymous", "lp:a", "lp:b"}, "expected exactly one branch URL"},
		{"unknown flag", []string{"--colour", "lp:a"}, "unknown flag: --colour"},
		{"unknown instance", []string{"--lp-instance", "moon", "--anonymous", "lp:a"}, "unknown Launchpad instance \"moon\""},
		{"missing config", []string{"--config", "/does/not/exist.yaml", "lp:a"}, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, environment{}, tt.args...)
			assert.Equal(t, 2, res.code)
			assert.Empty(t, res.stdout)
			testutil.AssertSingleErrorLine(t, res.stderr, tt.wantMsg)
		})
	}
}

func TestRun_RemoteFailure(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeLaunchpad(t)
	branch := reviewedBranch(fake)
	fake.FailPaths["/~bob"] = http.StatusServiceUnavailable

	res := execute(t, environment{}, anonymous(fake, branch)...)

	assert.Equal(t, 2, res.code)
	assert.Empty(t, res.stdout, "no partial output")
	testutil.AssertSingleErrorLine(t, res.stderr, "[503] Service Unavailable")
	assert.Contains(t, res.stderr, "landing_candidates[0].votes[1].reviewer")
}

// brokenBodyTransport serves every response normally except those for paths
// ending in suffix, whose bodies fail mid-read.
type brokenBodyTransport struct {
	base   http.RoundTripper
	suffix string
}

func (t brokenBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || !strings.HasSuffix(req.URL.Path, t.suffix) {
		return resp, err
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(iotest.ErrReader(errors.New("stream reset")))
	return resp, nil
}

func TestRun_UnexpectedFailureDuringExpansion(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeLaunchpad(t)
	branch := reviewedBranch(fake)

	env := environment{transport: brokenBodyTransport{base: http.DefaultTransport, suffix: "/~bob"}}
	res := execute(t, env, anonymous(fake, branch)...)

	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout, "no partial output")
	assert.True(t, strings.HasPrefix(res.stderr, "Error: "), "unexpected failures are not user errors: %q", res.stderr)
	assert.Contains(t, res.stderr, "landing_candidates[0].votes[1].reviewer")
	assert.Contains(t, res.stderr, "stream reset")
}

func TestRun_OutputAndMetadataFiles(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeLaunchpad(t)
	branch := reviewedBranch(fake)
	fs := afero.NewMemMapFs()

	res := execute(t, environment{fs: fs}, anonymous(fake,
		"--output", "/out/queue.json",
		"--metadata-file", "/out/run.json",
		branch)...)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)

	data, err := afero.ReadFile(fs, "/out/queue.json")
	require.NoError(t, err)
	testutil.AssertProposalsOutput(t, string(data), 1)

	meta, err := metadata.LoadMetadata(fs, "/out/run.json")
	require.NoError(t, err)
	assert.Equal(t, branch, meta.Parameters.Branch)
	assert.Equal(t, fake.ServiceRoot(), meta.Parameters.ServiceRoot)
	assert.True(t, meta.Parameters.Anonymous)
	assert.Equal(t, 1, meta.Results.Proposals)
	assert.Equal(t, 2, meta.Results.Votes)
	assert.Equal(t, 2, meta.Results.Reviews)
	assert.Equal(t, len(fake.Requests()), meta.Results.APICallCount)
}

func TestRun_LoginFlow(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeLaunchpad(t)
	branch := reviewedBranch(fake)
	fake.RequireOAuth = true
	fs := afero.NewMemMapFs()
	args := []string{"--lp-instance", fake.ServiceRoot(), "--credentials-dir", "/creds", branch}

	// Without a terminal there is no way to authorize.
	res := execute(t, environment{fs: fs}, args...)
	assert.Equal(t, 2, res.code)
	testutil.AssertSingleErrorLine(t, res.stderr, "no cached Launchpad credentials")

	// Interactive run: prompt on stderr, JSON on stdout.
	res = execute(t, environment{fs: fs, interactive: true, stdin: strings.NewReader("\n")}, args...)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "+authorize-token?")
	testutil.AssertProposalsOutput(t, res.stdout, 1)

	creds, err := auth.NewStore(fs, "/creds").Load(fake.ServiceRoot(), "get-merge-queue")
	require.NoError(t, err)
	assert.Equal(t, testutil.AccessToken, creds.AccessToken)

	// Later runs use the cache without prompting.
	res = execute(t, environment{fs: fs}, args...)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stderr)
	testutil.AssertProposalsOutput(t, res.stdout, 1)
}

func TestRun_ConfigFileAndEnv(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeLaunchpad(t)
	fake.AddBranch("~alice/project/trunk")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf("launchpad:\n  instance: %s\n  anonymous: true\noutput:\n  pretty: true\n", fake.ServiceRoot())
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	res := execute(t, environment{}, "--config", cfgPath, "lp:~alice/project/trunk")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "[]\n", res.stdout)

	// An explicit flag wins over the file.
	t.Setenv("MERGE_QUEUE_LP_INSTANCE", "moon")
	res = execute(t, environment{}, "--config", cfgPath, "--lp-instance", fake.ServiceRoot(), "lp:~alice/project/trunk")
	require.Equal(t, 0, res.code, res.stderr)

	// The environment wins over the file.
	res = execute(t, environment{}, "--config", cfgPath, "lp:~alice/project/trunk")
	assert.Equal(t, 2, res.code)
	testutil.AssertSingleErrorLine(t, res.stderr, "moon")
}

func TestRun_VerboseLogsToStderr(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeLaunchpad(t)
	fake.AddBranch("~alice/project/trunk")

	res := execute(t, environment{}, anonymous(fake, "--verbose", "lp:~alice/project/trunk")...)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "[]\n", res.stdout)
	assert.Contains(t, res.stderr, "launchpad request")
	assert.Contains(t, res.stderr, "\"level\":\"debug\"")
}

func TestRun_Version(t *testing.T) {
	isolate(t)
	res := execute(t, environment{}, "--version")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, version.Version)
}

func TestMapErrorToExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"branch not found", mqerrors.NewUserError(mqerrors.ErrBranchNotFound, "Not a valid branch: %q", "x"), 2},
		{"wrapped auth", fmt.Errorf("login: %w", mqerrors.ErrAuthentication), 2},
		{"remote lookup", fmt.Errorf("%w: gone", mqerrors.ErrRemoteLookup), 2},
		{"usage", mqerrors.ErrUsage, 2},
		{"unexpected", errors.New("boom"), 1},
		{"lookup of missing attribute", &resource.LookupError{Path: "votes[0].reviewer", Err: fmt.Errorf("%w: no reviewer_link", mqerrors.ErrRemoteLookup)}, 2},
		{"lookup with network cause", &resource.LookupError{Path: "source_branch", Err: mqerrors.ErrNetworkFailure}, 2},
		{"lookup with unclassified cause", &resource.LookupError{Path: "votes", Err: errors.New("response size exceeded limit")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorToExitCode(tt.err))
		})
	}
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, mqerrors.NewUserError(mqerrors.ErrBranchNotFound, "line one\nline two"), false)
	assert.Equal(t, "ERROR: line one line two\n", buf.String())

	buf.Reset()
	reportError(&buf, errors.New("boom"), false)
	assert.Equal(t, "Error: boom\n", buf.String())

	buf.Reset()
	reportError(&buf, mqerrors.ErrUsage, true)
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "invalid usage")
}
