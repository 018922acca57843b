package internal

import "github.com/rios0rios0/publicist/internal/domain/entities"

// AppInternal aggregates the subcommand controllers mounted under the release command.
type AppInternal struct {
	controllers []entities.Controller
}

// NewAppInternal creates a new AppInternal with the given controllers.
func NewAppInternal(controllers *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: *controllers}
}

// GetControllers returns the registered controllers.
func (it *AppInternal) GetControllers() []entities.Controller {
	return it.controllers
}
