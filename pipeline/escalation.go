package pipeline

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Escalation watches subscription errors for the one failure class that
// cannot be contained per event: loss of authentication. Once the process
// can no longer prove its identity to the feed, continuing would silently
// drop every subsequent event, so the run loop must shut down.
//
// Escalation only signals; it never terminates the process itself. The run
// loop owns the single controlled shutdown sequence.
type Escalation struct {
	log  *zerolog.Logger
	org  OrgID
	once sync.Once
	done chan struct{}
}

// OrgID identifies the store org the credentials belong to. It is recorded
// on the authentication failure log so a credential mix-up across orgs can
// be spotted from the shutdown line alone.
type OrgID string

func NewEscalation(log *zerolog.Logger, org OrgID) *Escalation {
	return &Escalation{log: log, org: org, done: make(chan struct{})}
}

// Observe classifies a subscription error. Authentication failures trigger
// the shutdown signal exactly once, no matter how often they are delivered;
// everything else is logged and left to the transport's reconnect policy.
func (e *Escalation) Observe(err error) {
	if err == nil {
		return
	}

	if !AuthenticationFailure(err) {
		e.log.Error().Err(err).Msg("subscription error")
		return
	}

	e.once.Do(func() {
		e.log.Error().Err(err).
			Str("orgId", string(e.org)).
			Bool("orgIdConfigured", e.org != "").
			Msg("authentication failure detected, shutting down")
		close(e.done)
	})
}

// Done is closed when an authentication failure has been observed.
func (e *Escalation) Done() <-chan struct{} {
	return e.done
}

// AuthenticationFailure reports whether err carries the authentication
// failure signature: the unauthenticated status code, or error details
// naming authentication.
func AuthenticationFailure(err error) bool {
	if err == nil {
		return false
	}

	if s, ok := status.FromError(err); ok && s.Code() == codes.Unauthenticated {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "authentication")
}
