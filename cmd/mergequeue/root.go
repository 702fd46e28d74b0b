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
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sirseerhq/merge-queue/internal/auth"
	"github.com/sirseerhq/merge-queue/internal/config"
	mqerrors "github.com/sirseerhq/merge-queue/internal/errors"
	"github.com/sirseerhq/merge-queue/internal/launchpad"
	"github.com/sirseerhq/merge-queue/internal/logging"
	"github.com/sirseerhq/merge-queue/internal/mergequeue"
	"github.com/sirseerhq/merge-queue/internal/metadata"
	"github.com/sirseerhq/merge-queue/internal/output"
	"github.com/sirseerhq/merge-queue/pkg/version"
)

// environment is everything the command touches outside its arguments.
type environment struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	fs          afero.Fs
	interactive bool
	colorize    bool
	transport   http.RoundTripper
}

// flags holds the command-line options.
type flags struct {
	pretty         bool
	instance       string
	configPath     string
	credentialsDir string
	anonymous      bool
	outputFile     string
	metadataFile   string
	verbose        bool
	timeout        time.Duration
}

// run executes the command and returns the process exit code.
func run(args []string, env environment) int {
	cmd := newRootCommand(env)
	cmd.SetArgs(args)
	cmd.SetIn(env.stdin)
	cmd.SetOut(env.stdout)
	cmd.SetErr(env.stderr)

	if err := cmd.Execute(); err != nil {
		reportError(env.stderr, err, env.colorize)
		return mapErrorToExitCode(err)
	}
	return 0
}

func newRootCommand(env environment) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "merge-queue [flags] <branch>",
		Short: "List the merge proposals targeting a Launchpad branch as JSON",
		Long: `merge-queue prints every merge proposal (landing candidate) that targets
a Launchpad branch as a JSON array. Each proposal includes its votes with
the reviewer and review comment expanded, its source branch, and a
"reviews" summary of who voted what.

The branch may be given as any URL Launchpad knows it by, for example
lp:~user/project/trunk or https://code.launchpad.net/~user/project/trunk.`,
		Version:       version.Version,
		Args:          exactlyOneBranch,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
			defer cancel()

			return runQuery(ctx, cmd.Flags(), f, args[0], env)
		},
	}

	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Pretty-print the JSON output with sorted keys")
	cmd.Flags().StringVar(&f.instance, "lp-instance", "production",
		fmt.Sprintf("Launchpad instance to use (%s, or a service root URL)", strings.Join(launchpad.InstanceNames(), ", ")))
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to configuration file")
	cmd.Flags().StringVar(&f.credentialsDir, "credentials-dir", "", "Directory for cached Launchpad credentials (default ~/.launchpadlib/cache)")
	cmd.Flags().BoolVar(&f.anonymous, "anonymous", false, "Skip login and read public data only")
	cmd.Flags().StringVar(&f.outputFile, "output", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&f.metadataFile, "metadata-file", "", "Write run statistics as JSON to this file")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log requests and progress to stderr")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 5*time.Minute, "Give up after this long")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", mqerrors.ErrUsage, err)
	})

	return cmd
}

func exactlyOneBranch(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return mqerrors.NewUserError(mqerrors.ErrUsage, "expected exactly one branch URL, got %d arguments", len(args))
	}
	if strings.TrimSpace(args[0]) == "" {
		return mqerrors.NewUserError(mqerrors.ErrUsage, "branch URL cannot be empty")
	}
	return nil
}

// resolveConfig layers explicitly set flags over file, environment and defaults.
func resolveConfig(fs *pflag.FlagSet, f flags) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mqerrors.ErrInvalidConfig, err)
	}

	if fs.Changed("lp-instance") {
		cfg.Launchpad.Instance = f.instance
	}
	if fs.Changed("credentials-dir") {
		cfg.Launchpad.CredentialsDir = config.ExpandPath(f.credentialsDir)
	}
	if fs.Changed("anonymous") {
		cfg.Launchpad.Anonymous = f.anonymous
	}
	if fs.Changed("pretty") {
		cfg.Output.Pretty = f.pretty
	}
	if f.verbose {
		cfg.Log.Level = logging.LevelDebug
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", mqerrors.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// runQuery executes the query
func runQuery(ctx context.Context, fs *pflag.FlagSet, f flags, branch string, env environment) error {
	cfg, err := resolveConfig(fs, f)
	if err != nil {
		return err
	}

	logger, err := logging.New(env.stderr, strings.ToLower(cfg.Log.Level), env.colorize)
	if err != nil {
		return fmt.Errorf("%w: %w", mqerrors.ErrInvalidConfig, err)
	}
	defer func() { _ = logger.Sync() }()

	serviceRoot, err := launchpad.LookupServiceRoot(cfg.Launchpad.Instance)
	if err != nil {
		return err
	}

	base := env.transport
	if base == nil {
		base = launchpad.DefaultTransport()
	}

	session, err := auth.Login(ctx, auth.Options{
		AppName:        cfg.Launchpad.AppName,
		ServiceRoot:    serviceRoot,
		CredentialsDir: cfg.Launchpad.CredentialsDir,
		Anonymous:      cfg.Launchpad.Anonymous,
		Interactive:    env.interactive,
		Prompt:         env.stderr,
		Input:          env.stdin,
		Fs:             env.fs,
		HTTPClient:     launchpad.NewHTTPClient(base),
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	tracker := metadata.New()
	client, err := launchpad.NewClient(
		launchpad.VersionedRoot(serviceRoot, cfg.Launchpad.APIVersion),
		launchpad.NewHTTPClient(session.Transport(base)),
		launchpad.WithLogger(logger),
		launchpad.WithRequestHook(tracker.IncrementAPICall),
	)
	if err != nil {
		return err
	}

	logger.Debug("querying merge proposals",
		zap.String("branch", branch),
		zap.String("service_root", serviceRoot),
		zap.Bool("anonymous", session.Anonymous()))

	proposals, err := mergequeue.NewQuery(client, logger).GetMergeProposals(ctx, branch)
	if err != nil {
		return err
	}
	tracker.RecordProposals(proposals)

	if err := writeProposals(env, f.outputFile, cfg.Output.Pretty, proposals); err != nil {
		return err
	}

	if f.metadataFile != "" {
		meta := tracker.GenerateMetadata(version.Version, metadata.QueryParams{
			Branch:      branch,
			Instance:    cfg.Launchpad.Instance,
			ServiceRoot: serviceRoot,
			APIVersion:  cfg.Launchpad.APIVersion,
			Anonymous:   session.Anonymous(),
			Pretty:      cfg.Output.Pretty,
		})
		if err := metadata.SaveMetadata(env.fs, meta, f.metadataFile); err != nil {
			return fmt.Errorf("failed to save metadata: %w", err)
		}
	}

	logger.Debug("done",
		zap.Int("proposals", len(proposals)),
		zap.Int("api_calls", tracker.APICalls()))
	return nil
}

// writeProposals writes the document only once the whole query succeeded,
// so a failure never leaves partial output behind.
func writeProposals(env environment, outputFile string, pretty bool, proposals any) error {
	var writer output.OutputWriter
	if outputFile == "" {
		writer = output.NewWriter(env.stdout, output.WithPretty(pretty))
	} else {
		fileWriter, err := output.NewFileWriter(env.fs, outputFile, output.WithPretty(pretty))
		if err != nil {
			return err
		}
		writer = fileWriter
	}

	if err := writer.Write(proposals); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}
