package proposal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLifecycle(t *testing.T) {
	assert.True(t, PendingMiddleware.CanTransition(PendingReview))
	assert.True(t, PendingReview.CanTransition(ApprovedUseExisting))
	assert.True(t, PendingReview.CanTransition(ApprovedCreateNew))
	assert.True(t, ApprovedUseExisting.CanTransition(Completed))
	assert.True(t, ApprovedCreateNew.CanTransition(Completed))

	// Error is reachable from every non-terminal state.
	for _, from := range []Status{PendingMiddleware, PendingReview, ApprovedUseExisting, ApprovedCreateNew} {
		assert.True(t, from.CanTransition(Failed), "from %s", from)
	}

	assert.False(t, PendingMiddleware.CanTransition(Completed))
	assert.False(t, PendingReview.CanTransition(Completed))
	assert.False(t, ApprovedUseExisting.CanTransition(PendingReview))
}

func TestTerminalStatesAllowNoTransitions(t *testing.T) {
	for _, terminal := range []Status{Completed, Failed} {
		assert.True(t, terminal.Terminal())
		for _, to := range []Status{PendingMiddleware, PendingReview, ApprovedUseExisting, ApprovedCreateNew, Completed, Failed} {
			assert.False(t, terminal.CanTransition(to), "%s -> %s", terminal, to)
		}
	}
}

func pendingProposal(t *testing.T) *Proposal {
	t.Helper()
	p, err := FromMatchResult("001xx", `{}`)
	require.NoError(t, err)
	return p
}

func TestResolveUseExisting(t *testing.T) {
	p := pendingProposal(t)

	err := p.Resolve(UseExisting, "exact name match", "12345", time.Now())
	require.NoError(t, err)

	assert.Equal(t, ApprovedUseExisting, p.Status)
	require.NotNil(t, p.Decision)
	assert.Equal(t, UseExisting, *p.Decision)
	require.NotNil(t, p.SelectedExternalID)
	assert.Equal(t, "12345", *p.SelectedExternalID)
	assert.NotNil(t, p.ResolvedAt)
}

func TestResolveUseExistingRequiresASelection(t *testing.T) {
	p := pendingProposal(t)

	err := p.Resolve(UseExisting, "", "", time.Now())
	require.Error(t, err)
	assert.Equal(t, PendingReview, p.Status)
}

func TestResolveCreateNewRejectsASelection(t *testing.T) {
	p := pendingProposal(t)

	err := p.Resolve(CreateNew, "", "NS-1001", time.Now())
	require.Error(t, err)
	assert.Equal(t, PendingReview, p.Status)
	assert.Nil(t, p.SelectedExternalID)
}

func TestResolveCreateNew(t *testing.T) {
	p := pendingProposal(t)

	err := p.Resolve(CreateNew, "no candidate fits", "", time.Now())
	require.NoError(t, err)

	assert.Equal(t, ApprovedCreateNew, p.Status)
	assert.Nil(t, p.SelectedExternalID)
	require.NotNil(t, p.Reason)
	assert.Equal(t, "no candidate fits", *p.Reason)
}

func TestResolveRejectsDoubleResolution(t *testing.T) {
	p := pendingProposal(t)
	require.NoError(t, p.Resolve(CreateNew, "", "", time.Now()))

	err := p.Resolve(UseExisting, "", "12345", time.Now())
	require.Error(t, err)

	var transition *TransitionError
	assert.ErrorAs(t, err, &transition)
}

func TestCompleteRequiresApproval(t *testing.T) {
	p := pendingProposal(t)

	err := p.Complete()
	require.Error(t, err)

	require.NoError(t, p.Resolve(UseExisting, "", "12345", time.Now()))
	require.NoError(t, p.Complete())
	assert.Equal(t, Completed, p.Status)
}

func TestFailRecordsReasonAndTerminates(t *testing.T) {
	p := pendingProposal(t)

	require.NoError(t, p.Fail("match service unreachable"))
	assert.Equal(t, Failed, p.Status)
	require.NotNil(t, p.Reason)
	assert.Equal(t, "match service unreachable", *p.Reason)

	assert.Error(t, p.Fail("again"))
}
