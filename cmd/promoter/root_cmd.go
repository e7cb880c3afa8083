package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/artpar/promoter/internal/shell/codedeploy"
	"github.com/artpar/promoter/internal/shell/gitinfo"
	"github.com/artpar/promoter/internal/shell/promotion"
	"github.com/artpar/promoter/internal/shell/store"
)

// serviceFactory builds the deployment service and reports its region.
type serviceFactory func(ctx context.Context, cfg *Config, logger *slog.Logger) (promotion.DeploymentService, string, error)

type rootOpts struct {
	configPath string

	cfg    *Config
	logger *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	newService serviceFactory
	openStore  func(dsn string) (store.Store, error)
	gitRunner  gitinfo.Runner
}

func newRoot(stdin io.Reader, stdout, stderr io.Writer) *rootOpts {
	return &rootOpts{
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		getenv:     os.Getenv,
		newService: newCodeDeployService,
		openStore: func(dsn string) (store.Store, error) {
			return store.NewSQLiteStore(dsn)
		},
		gitRunner: gitinfo.ExecRunner,
	}
}

var rootLongHelp = strings.TrimSpace(`
promoter deploys a git commit to an AWS CodeDeploy deployment group.

The group and its settings come from the branch_config section of appspec.yml,
whose entries are case-insensitive regular expressions matched against the
branch name in document order.

Workflow:
  promoter deploy                  # in a GitHub Actions step: deploy the pushed commit
  promoter delete-group            # when a pull request closes: remove its group
  promoter ship                    # from a local checkout: deploy HEAD after confirmation
  promoter history --group main    # show past promotions from the local journal
`)

func (opts *rootOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "promoter",
		Short:             "Promote commits to AWS CodeDeploy deployment groups",
		Long:              rootLongHelp,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.PersistentPreRunE,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &CommandError{Op: "parse flags", Err: err, ExitCode: ExitConfigError}
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("region", "", "AWS region; defaults to the SDK configuration")
	flags.String("profile", "", "AWS shared config profile")
	flags.String("endpoint", "", "custom CodeDeploy endpoint")
	flags.String("appspec", "./appspec.yml", "path to appspec.yml")
	flags.String("journal", "", "SQLite file recording every promotion; empty disables it")

	cmd.AddCommand(
		newDeploy(opts).Command(),
		newDeleteGroup(opts).Command(),
		newShip(opts).Command(),
		newHistory(opts).Command(),
		newVersion(opts).Command(),
	)

	return cmd
}

func (opts *rootOpts) PersistentPreRunE(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(opts.configPath, cmd.Flags())
	if err != nil {
		return &CommandError{Op: "load config", Err: err, ExitCode: ExitConfigError}
	}
	opts.cfg = cfg
	opts.logger = SetupLogger(cfg, opts.stderr).With("invocation_id", uuid.New().String())
	return nil
}

// =============================================================================
// Wiring
// =============================================================================

func newCodeDeployService(ctx context.Context, cfg *Config, logger *slog.Logger) (promotion.DeploymentService, string, error) {
	client, err := codedeploy.NewClient(ctx, codedeploy.Config{
		Region:          cfg.AWS.Region,
		Profile:         cfg.AWS.Profile,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		SessionToken:    cfg.AWS.SessionToken,
		Endpoint:        cfg.AWS.Endpoint,
		PollInterval:    cfg.Deploy.PollInterval,
		MaxRetries:      cfg.AWS.MaxRetries,
	}, logger)
	if err != nil {
		return nil, "", &CommandError{Op: "create codedeploy client", Err: err, ExitCode: ExitConfigError}
	}
	return client, client.Region(), nil
}

// orchestrator wires the deployment service and, when configured, the journal.
// The returned func releases the journal.
func (opts *rootOpts) orchestrator(ctx context.Context) (*promotion.Orchestrator, func(), error) {
	svc, region, err := opts.newService(ctx, opts.cfg, opts.logger)
	if err != nil {
		return nil, nil, err
	}

	o := promotion.NewOrchestrator(svc, promotion.Options{
		AppSpecPath:       opts.cfg.Deploy.AppSpecPath,
		ConflictWait:      opts.cfg.Deploy.ConflictWait,
		CompletionWait:    opts.cfg.Deploy.CompletionWait,
		DescriptionPrefix: opts.cfg.Deploy.DescriptionPrefix,
		Region:            region,
	}, opts.logger)

	if opts.cfg.Journal.DSN == "" {
		return o, func() {}, nil
	}

	journal, err := opts.openStore(opts.cfg.Journal.DSN)
	if err != nil {
		// The journal is optional; a broken one must not block a deployment.
		opts.logger.Warn("journal unavailable", "dsn", opts.cfg.Journal.DSN, "error", err)
		return o, func() {}, nil
	}
	return o.WithJournal(journal), func() { journal.Close() }, nil
}
