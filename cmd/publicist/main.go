package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/publicist/internal/domain/entities"
	"github.com/rios0rios0/publicist/internal/support"
)

// cliConfig holds the CLI-level configuration flags.
type cliConfig struct {
	configPath string
	dir        string
	preid      string
	verbose    bool
}

// buildCommand binds a controller to a cobra command.
func buildCommand(controller entities.Controller) *cobra.Command {
	bind := controller.GetBind()
	return &cobra.Command{
		Use:           bind.Use,
		Short:         bind.Short,
		Long:          bind.Long,
		Example:       bind.Example,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          controller.Execute,
	}
}

func initRootCmd(cfg *cliConfig) *cobra.Command {
	rootCmd := buildCommand(injectReleaseController())
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if cfg.verbose {
			log.SetLevel(log.DebugLevel)
		}
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfg.configPath, "config", "c", "", "settings file path")
	flags.StringVarP(&cfg.dir, "dir", "C", ".", "package working directory")
	flags.StringVar(&cfg.preid, "preid", "", "prerelease identifier used by the pre* increments")
	flags.BoolVarP(&cfg.verbose, "verbose", "v", false, "enable debug logging")

	for _, controller := range injectAppContext().GetControllers() {
		rootCmd.AddCommand(buildCommand(controller))
	}
	return rootCmd
}

// reportFailure logs the failure notice and prints the error with its stack.
func reportFailure(rootCmd, cmd *cobra.Command, err error) {
	title := "Release failed"
	if cmd != nil && cmd != rootCmd {
		title = fmt.Sprintf("%s failed", cmd.Name())
	}
	log.Error(support.Prefix(support.Alert(title)))
	_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := initRootCmd(&cliConfig{})
	cmd, err := rootCmd.ExecuteContextC(ctx)
	stop()

	if err != nil {
		reportFailure(rootCmd, cmd, err)
		os.Exit(1)
	}
}
