// Package review exposes match proposal records over HTTP for the human
// review surface. It is a thin adapter over the proposal store; the state
// machine in the proposal package guards every transition.
package review

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/castlebay/reconcile-go/match"
	"github.com/castlebay/reconcile-go/proposal"
)

// ProposalStore is the slice of the record store the review surface uses.
type ProposalStore interface {
	GetProposal(ctx context.Context, id string) (*proposal.Record, error)
	UpdateProposal(ctx context.Context, id string, p *proposal.Proposal) error
}

type HandlerOption func(*reviewService)

func Logger(logger *zerolog.Logger) HandlerOption {
	return func(service *reviewService) {
		service.log = logger
	}
}

func NewHandler(store ProposalStore, options ...HandlerOption) http.Handler {
	service := &reviewService{store: store}
	for _, option := range options {
		option(service)
	}
	if service.log == nil {
		service.log = &log.Logger
	}

	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Method("GET", "/proposals/{id}", service.getProposal())
	r.Method("GET", "/proposals/{id}/candidates", service.getCandidates())
	r.Method("POST", "/proposals/{id}/resolve", service.resolveProposal())
	r.Method("POST", "/proposals/{id}/complete", service.completeProposal())

	return otelhttp.NewHandler(r, "proposal-review")
}

type reviewService struct {
	log   *zerolog.Logger
	store ProposalStore
}

func (service *reviewService) load(w http.ResponseWriter, r *http.Request) (string, *proposal.Proposal, bool) {
	id := chi.URLParam(r, "id")

	record, err := service.store.GetProposal(r.Context(), id)
	if err != nil {
		service.log.Info().Err(err).Str("proposalId", id).Msg("failed to load proposal")
		http.Error(w, "failed to load proposal", http.StatusInternalServerError)
		return "", nil, false
	}

	p, err := proposal.FromRecord(record)
	if err != nil {
		service.log.Info().Err(err).Str("proposalId", id).Msg("stored proposal is invalid")
		http.Error(w, "stored proposal is invalid", http.StatusInternalServerError)
		return "", nil, false
	}

	return id, p, true
}

func (service *reviewService) getProposal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, p, ok := service.load(w, r)
		if !ok {
			return
		}

		render.JSON(w, r, p.ToRecord())
	}
}

func (service *reviewService) getCandidates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, p, ok := service.load(w, r)
		if !ok {
			return
		}

		if p.SuggestedMatches == nil {
			http.NotFound(w, r)
			return
		}

		var result match.Result
		if err := json.Unmarshal([]byte(*p.SuggestedMatches), &result); err != nil {
			service.log.Info().Err(err).Str("proposalId", id).Msg("failed to decode matches payload")
			http.Error(w, "matches payload is invalid", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, result)
	}
}

type resolveRequest struct {
	Decision           proposal.Decision `json:"decision"`
	Reason             string            `json:"reason"`
	SelectedExternalID string            `json:"selectedExternalId"`
}

func (service *reviewService) resolveProposal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, p, ok := service.load(w, r)
		if !ok {
			return
		}

		var request resolveRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if request.Decision != proposal.UseExisting && request.Decision != proposal.CreateNew {
			http.Error(w, "unknown decision", http.StatusBadRequest)
			return
		}

		if err := p.Resolve(request.Decision, request.Reason, request.SelectedExternalID, time.Now()); err != nil {
			service.log.Info().Err(err).Str("proposalId", id).Msg("resolution rejected")
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		service.save(w, r, id, p)
	}
}

func (service *reviewService) completeProposal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, p, ok := service.load(w, r)
		if !ok {
			return
		}

		if err := p.Complete(); err != nil {
			service.log.Info().Err(err).Str("proposalId", id).Msg("completion rejected")
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		service.save(w, r, id, p)
	}
}

func (service *reviewService) save(w http.ResponseWriter, r *http.Request, id string, p *proposal.Proposal) {
	if err := service.store.UpdateProposal(r.Context(), id, p); err != nil {
		service.log.Info().Err(err).Str("proposalId", id).Msg("failed to update proposal")
		http.Error(w, "failed to update proposal", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, p.ToRecord())
}
