// Package commands implements the atm operator CLI.
package commands

import (
	"fmt"
	"io"

	"github.com/amirasaad/atm/infra/initializer"
	"github.com/amirasaad/atm/pkg/app"
	"github.com/amirasaad/atm/pkg/config"
	accountsvc "github.com/amirasaad/atm/pkg/service/account"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ServiceFactory builds the account service the commands run against. The returned
// func releases whatever the service holds.
type ServiceFactory func(envFile string) (*accountsvc.Service, func(), error)

// FromConfig builds the service from the environment, the same way the server does.
func FromConfig(envFile string) (*accountsvc.Service, func(), error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing dependencies: %w", err)
	}
	return app.New(deps, cfg).AccountService, cleanup, nil
}

type runtime struct {
	factory ServiceFactory
	envFile string
}

// withService builds the service, runs fn against it and releases it afterwards.
func (r *runtime) withService(fn func(svc *accountsvc.Service) error) error {
	svc, cleanup, err := r.factory(r.envFile)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	return fn(svc)
}

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	headColor = color.New(color.FgCyan, color.Bold)
)

func printResult(w io.Writer, success bool, message string) {
	if success {
		_, _ = okColor.Fprintln(w, "✔ "+message)
		return
	}
	_, _ = failColor.Fprintln(w, "✘ "+message)
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(factory ServiceFactory) *cobra.Command {
	rt := &runtime{factory: factory}

	rootCmd := &cobra.Command{
		Use:   "atm",
		Short: "Operate the Checking/Savings ledger from the terminal",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&rt.envFile, "env-file", ".env", "environment file to load")

	rootCmd.AddCommand(
		newAccountsCommand(rt),
		newHistoryCommand(rt),
		newDepositCommand(rt),
		newWithdrawCommand(rt),
		newTransferCommand(rt),
	)
	return rootCmd
}
