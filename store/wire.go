package store

import (
	"github.com/google/wire"

	"github.com/castlebay/reconcile-go/connectors/review"
	"github.com/castlebay/reconcile-go/pipeline"
)

// Org exposes the configured org id for the authentication failure log.
func Org(config Config) pipeline.OrgID {
	return pipeline.OrgID(config.OrgID)
}

// Live wires the HTTP store client from environment configuration.
var Live = wire.NewSet(
	ConfigFromEnv,
	NewClient,
	Org,
	wire.Bind(new(pipeline.EntityStore), new(*Client)),
	wire.Bind(new(review.ProposalStore), new(*Client)),
)
