package controllers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/publicist/internal/domain/commands"
	"github.com/rios0rios0/publicist/internal/domain/entities"
)

// NextController handles the "next" subcommand.
type NextController struct {
	command *commands.NextCommand
}

// NewNextController creates a new NextController.
func NewNextController(command *commands.NextCommand) *NextController {
	return &NextController{command: command}
}

// GetBind returns the Cobra command metadata.
func (it *NextController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:     "next <version|increment>",
		Short:   "Print the version a release would produce, without changing anything",
		Example: "  publicist next minor",
	}
}

// Execute prints the computed version.
func (it *NextController) Execute(cmd *cobra.Command, arguments []string) error {
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

	_, err = fmt.Fprintln(cmd.OutOrStdout(), release.Version)
	return err
}
