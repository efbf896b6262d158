// Command bankcli drives the banking API from a terminal. The session is kept in the
// configured credential file, so each invocation continues where the last one left off.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-bank-client/bank"
	"github.com/jrsteele09/go-bank-client/credentials"
	"github.com/jrsteele09/go-bank-client/gateway"
	"github.com/jrsteele09/go-bank-client/internal/config"
	"github.com/jrsteele09/go-bank-client/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand.
type app struct {
	cfg      config.Config
	client   *bank.Client
	location *gateway.Location
	out      io.Writer
	errOut   io.Writer
	in       *bufio.Reader
}

func main() {
	_ = godotenv.Load()
	a := &app{out: os.Stdout, errOut: os.Stderr, in: bufio.NewReader(os.Stdin)}
	if err := a.rootCommand().Execute(); err != nil {
		var r reportedError
		if !errors.As(err, &r) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func (a *app) rootCommand() *cobra.Command {
	var banner bool
	root := &cobra.Command{
		Use:           "bankcli",
		Short:         "Banking API client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return a.fail(err)
			}
			if banner {
				figure.NewFigure(a.cfg.GetAppName(), "cybermedium", true).Print()
				fmt.Fprintln(a.out)
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&banner, "banner", false, "print the application banner")

	root.AddCommand(a.authCommands()...)
	root.AddCommand(a.bankingCommands()...)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	logging.Setup(cfg)

	store, err := credentials.New(cfg.GetCredentialMode(), cfg.GetCredentialFile(), bank.PathVerifyOTP, cfg.GetRefreshPath())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.location = gateway.NewLocation("/", func(path string) {
		if path == cfg.GetLoginPath() {
			fmt.Fprintln(a.errOut, "Session expired. Sign in again with `bankcli login`.")
		}
	})
	a.client = bank.New(gateway.New(cfg, store, a.location))
	return nil
}

// reportedError is an error already shown to the user.
type reportedError struct{ error }

func (r reportedError) Unwrap() error { return r.error }

// fail prints err the way a user should see it and returns it for the exit status.
func (a *app) fail(err error) error {
	fmt.Fprintln(a.errOut, bank.ErrorMessage(err, "Request failed"))
	fields := bank.FieldErrors(err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.errOut, "  %s: %s\n", k, fields[k])
	}
	log.Debug().Err(err).Msg("command failed")
	return reportedError{err}
}

// run executes fn with a background context and reports its error.
func (a *app) run(fn func(ctx context.Context) error) error {
	if err := fn(context.Background()); err != nil {
		return a.fail(err)
	}
	return nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) println(msg string) {
	if msg != "" {
		fmt.Fprintln(a.out, msg)
	}
}

// prompt reads one line from stdin after printing label.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSpace(strings.TrimSuffix(label, ":")), err)
	}
	return strings.TrimSpace(line), nil
}
