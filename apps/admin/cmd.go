package main

import (
	"errors"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/district"
	"github.com/trezcool/kipimo/core/goal"
	"github.com/trezcool/kipimo/core/metric"
	"github.com/trezcool/kipimo/core/report"
	archivesvc "github.com/trezcool/kipimo/services/archive"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// services is the set of domain services a command works with.
type services struct {
	districts *district.Service
	goals     *goal.Service
	metrics   *metric.Service
}

func newServices(conf *core.Config, logger core.Logger, mailSvc core.EmailService,
	dRepo district.Repository, gRepo goal.Repository, mRepo metric.Repository) services {
	goalSvc := goal.NewService(gRepo, mRepo, logger)
	return services{
		districts: district.NewService(dRepo, goalSvc, mailSvc, logger),
		goals:     goalSvc,
		metrics:   metric.NewService(mRepo, conf),
	}
}

type commandLine struct {
	conf     *core.Config
	db       *sqlx.DB
	logger   core.Logger
	mail     core.EmailService
	svc      services
	reports  *report.Service
	validate *validator.Validate
	out      io.Writer
}

func newCommandLine(
	conf *core.Config,
	db *sqlx.DB,
	logger core.Logger,
	mailSvc core.EmailService,
	archiver archivesvc.Archiver,
	dRepo district.Repository,
	gRepo goal.Repository,
	mRepo metric.Repository,
) *commandLine {
	svc := newServices(conf, logger, mailSvc, dRepo, gRepo, mRepo)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	goal.InitValidators(validate, translator)
	metric.InitValidators(validate, translator)

	return &commandLine{
		conf:     conf,
		db:       db,
		logger:   logger,
		mail:     mailSvc,
		svc:      svc,
		reports:  report.NewService(svc.districts, svc.goals, svc.metrics.DefaultThresholds(), mailSvc, archiver, logger),
		validate: validate,
		out:      os.Stdout,
	}
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         cli.conf.AppName + " administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.AddCommand(
		cli.migrateCmd(),
		cli.hashPasswordCmd(),
		cli.tokenCmd(),
		cli.importCmd(),
		cli.exportCmd(),
	)
	return root
}

// run executes the command line `args`, program name included.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.Execute()
}

// usageError prints the usage of `cmd` and returns errHelp.
func usageError(cmd *cobra.Command) error {
	_ = cmd.Usage()
	return errHelp
}
