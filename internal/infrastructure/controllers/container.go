package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/publicist/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(NewReleaseController); err != nil {
		return err
	}
	if err := container.Provide(NewNextController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}
	return nil
}

// NewControllers aggregates the subcommand controllers into a slice for the AppInternal.
func NewControllers(
	nextController *NextController,
) *[]entities.Controller {
	return &[]entities.Controller{
		nextController,
	}
}
