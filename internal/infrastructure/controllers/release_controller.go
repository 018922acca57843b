package controllers

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/publicist/internal/domain/commands"
	"github.com/rios0rios0/publicist/internal/domain/entities"
	"github.com/rios0rios0/publicist/internal/support"
)

// ReleaseController handles the root "publicist" command.
type ReleaseController struct {
	command *commands.ReleaseCommand
}

// NewReleaseController creates a new ReleaseController.
func NewReleaseController(command *commands.ReleaseCommand) *ReleaseController {
	return &ReleaseController{command: command}
}

// GetBind returns the Cobra command metadata.
func (it *ReleaseController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "publicist <version|increment>",
		Short: "Increment the package version and generate a tagged UMD build",
		Long: `Bump the manifest version (a literal version, or one of major, minor, patch,
premajor, preminor, prepatch, prerelease), commit it on the mainline branch,
bundle the package entry point into the release directory on a scratch branch,
commit and tag the bundle, then restore the mainline and delete the scratch branch.`,
		Example: "  publicist patch\n  publicist 2.0.0\n  publicist prerelease --preid beta",
	}
}

// Execute runs the release.
func (it *ReleaseController) Execute(cmd *cobra.Command, arguments []string) error {
	target, err := entities.ParseTarget(firstArgument(arguments))
	if err != nil {
		return err
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	release, err := it.command.Execute(commandContext(cmd), settings, target)
	if err != nil {
		return err
	}

	log.Info(support.Prefix(fmt.Sprintf("Released %s@%s", release.Name, release.Version)))
	return nil
}

// loadSettings finds, reads and validates the settings, applying the command line overrides.
func loadSettings(cmd *cobra.Command) (*entities.Settings, error) {
	settingsPath, _ := cmd.Flags().GetString("config")
	dir, _ := cmd.Flags().GetString("dir")
	preid, _ := cmd.Flags().GetString("preid")

	workDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve the working directory")
	}

	settings, err := entities.ReadSettings(entities.FindSettingsOnMissing(settingsPath, workDir))
	if err != nil {
		return nil, err
	}

	settings.WorkDir = workDir
	if preid != "" {
		settings.PreID = preid
	}

	if err = entities.ValidateSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func firstArgument(arguments []string) string {
	if len(arguments) == 0 {
		return ""
	}
	return arguments[0]
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
