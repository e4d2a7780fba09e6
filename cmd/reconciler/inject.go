//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/castlebay/reconcile-go/match"
	"github.com/castlebay/reconcile-go/pipeline"
	"github.com/castlebay/reconcile-go/store"
)

func storeBackedPipeline(log *zerolog.Logger, matches match.Service) (*runPipeline, error) {
	panic(wire.Build(
		store.Live,
		pipeline.Reconciliation,
		wire.Struct(new(runPipeline), "*"),
	))
}
