// Package cli implements the classroom command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/classroom/internal/apiclient"
	"github.com/me/classroom/internal/config"
	"github.com/me/classroom/internal/logging"
	"github.com/me/classroom/internal/notify"
	"github.com/me/classroom/internal/router"
	"github.com/me/classroom/internal/session"
	"github.com/me/classroom/internal/store"
)

// Version is reported to Rollbar as the code version.
var Version = "dev"

// flags are the global flags. Zero values mean "use the config".
type flags struct {
	server    string
	config    string
	debug     bool
	logLevel  string
	logFormat string
	output    string
	timeout   time.Duration
}

// app carries everything a command needs. It is built once per invocation
// by the root command's PersistentPreRunE.
type app struct {
	flags flags

	cfg      config.ClientConfig
	logger   *slog.Logger
	storage  store.Store
	client   *apiclient.Client
	notifier notify.Sink
	rollbar  *notify.Rollbar
	history  *router.History
	session  *session.Store

	out    io.Writer
	errOut io.Writer
	in     io.Reader
}

// reportedError is returned when the failure was already shown to the user
// as a notification; main should exit non-zero without printing it again.
type reportedError struct{ msg string }

func (e *reportedError) Error() string { return e.msg }

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// NewRootCmd creates the root cobra command for the classroom CLI.
func NewRootCmd() *cobra.Command {
	root, _ := newRoot()
	return root
}

// Execute runs the CLI with args and releases storage and reporters even
// when the command fails.
func Execute(ctx context.Context, args []string) error {
	root, a := newRoot()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func newRoot() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "classroom",
		Short: "classroom — school management from the terminal",
		Long:  "classroom signs administrators, teachers and students in to the school service and lists their courses, assignments, announcements and attendance.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.server, "server", "", "Classroom service URL (or CLASSROOM_SERVER_URL env)")
	pf.StringVar(&a.flags.config, "config", "", "Config file (default ~/.classroom/config.yaml)")
	pf.BoolVar(&a.flags.debug, "debug", false, "Enable debug logging")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "Log format (text, json)")
	pf.StringVarP(&a.flags.output, "output", "o", "text", "Output format (text, json, yaml)")
	pf.DurationVar(&a.flags.timeout, "timeout", 0, "Per-command timeout (default from config)")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newRegisterCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newCoursesCmd(a),
		newAssignmentsCmd(a),
		newAnnouncementsCmd(a),
		newAttendanceCmd(a),
	)

	return root, a
}

// setup loads configuration and builds the session core.
func (a *app) setup(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()
	a.in = cmd.InOrStdin()

	switch a.flags.output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", a.flags.output)
	}

	cfg, err := config.Load(config.LoadOptions{ConfigFile: a.flags.config})
	if err != nil {
		return err
	}
	if a.flags.server != "" {
		cfg.ServerURL = a.flags.server
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if a.flags.debug {
		cfg.LogLevel = "debug"
	}
	if a.flags.logFormat != "" {
		cfg.LogFormat = a.flags.logFormat
	}
	if a.flags.timeout > 0 {
		cfg.Timeout = a.flags.timeout
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg

	a.logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, a.errOut)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	a.storage, err = store.Open(ctx, cfg.StoreOptions(), a.logger)
	if err != nil {
		return fmt.Errorf("open session storage: %w", err)
	}

	a.client = apiclient.NewClient(cfg.ServerURL, a.logger)
	a.client.HTTPClient.Timeout = cfg.Timeout

	a.rollbar = notify.NewRollbar(
		notify.Multi{notify.NewConsole(a.errOut), notify.NewLogger(a.logger)},
		notify.RollbarOptions{Token: cfg.Rollbar.Token, Environment: cfg.Rollbar.Environment, CodeVersion: Version},
	)
	a.notifier = a.rollbar

	a.history = router.NewHistory("")
	a.history.OnNavigate = a.recordRoute

	a.session = session.New(session.Deps{
		Storage:  a.storage,
		HTTP:     a.client,
		Notifier: a.notifier,
		Router:   a.history,
		Roles:    cfg.Roles(),
		Logger:   a.logger,
	})
	a.session.Init(ctx)
	return nil
}

// recordRoute shows a navigation and remembers it for whoami.
func (a *app) recordRoute(path string, _ router.NavigateOptions) {
	fmt.Fprintf(a.errOut, "→ %s\n", path)
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Timeout)
	defer cancel()
	if err := a.storage.Set(ctx, store.KeyRoute, []byte(path)); err != nil {
		a.logger.Warn("saving route", "error", err)
	}
}

// close is safe to call more than once.
func (a *app) close() error {
	var errs []error
	if a.rollbar != nil {
		errs = append(errs, a.rollbar.Close())
		a.rollbar = nil
	}
	if a.storage != nil {
		errs = append(errs, a.storage.Close())
		a.storage = nil
	}
	return errors.Join(errs...)
}

// context returns the command context bounded by the configured timeout.
func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.cfg.Timeout)
}

// requireSession fails with a notification when nobody is signed in.
func (a *app) requireSession() error {
	if a.session.Authenticated() {
		return nil
	}
	a.notifier.Error(session.NotSignedInMessage)
	return &reportedError{msg: session.NotSignedInMessage}
}
