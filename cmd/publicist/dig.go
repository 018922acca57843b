package main

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/publicist/internal"
	"github.com/rios0rios0/publicist/internal/infrastructure/controllers"
)

func newContainer() *dig.Container {
	container := dig.New()

	if err := internal.RegisterProviders(container); err != nil {
		panic(err)
	}
	return container
}

func injectAppContext() *internal.AppInternal {
	var appInternal *internal.AppInternal
	if err := newContainer().Invoke(func(ai *internal.AppInternal) {
		appInternal = ai
	}); err != nil {
		panic(err)
	}

	return appInternal
}

func injectReleaseController() *controllers.ReleaseController {
	var controller *controllers.ReleaseController
	if err := newContainer().Invoke(func(c *controllers.ReleaseController) {
		controller = c
	}); err != nil {
		panic(err)
	}

	return controller
}
