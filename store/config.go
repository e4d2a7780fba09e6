package store

import (
	"os"

	"github.com/pkg/errors"

	"github.com/castlebay/reconcile-go/cdc"
)

// Config is the externally supplied connection configuration for the entity
// store. A missing base URL or access token is a startup fault, never a
// per-event error.
type Config struct {
	BaseURL   string
	Token     string
	OrgID     string
	Namespace cdc.Namespace
}

func ConfigFromEnv() (Config, error) {
	base := os.Getenv("STORE_BASE_URL")
	if base == "" {
		return Config{}, errors.New("STORE_BASE_URL is not set")
	}

	token := os.Getenv("STORE_ACCESS_TOKEN")
	if token == "" {
		return Config{}, errors.New("STORE_ACCESS_TOKEN is not set")
	}

	return Config{
		BaseURL:   base,
		Token:     token,
		OrgID:     os.Getenv("STORE_ORG_ID"),
		Namespace: cdc.Namespace(os.Getenv("STORE_NAMESPACE")),
	}, nil
}
