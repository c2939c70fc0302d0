//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"chefgpt-server/internal/config"
)

var infrastructureSet = wire.NewSet(
	newStore,
	newLocker,
	newGateway,
	newResolver,
	newSanitizer,
)

// BuildApplication assembles the chat service. Run `wire` in this directory
// after changing the provider graph.
func BuildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	wire.Build(
		infrastructureSet,
		newService,
		newHTTPServer,
		NewApplication,
	)
	return nil, nil, nil
}
