package application

import (
	"context"
	"testing"
	"time"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestLifecycle_ActivateDraft(t *testing.T) {
	a := domain.NewAuction(uuid.New(), "a1b2c3d4e", "Spring sale", "", nil, nil)
	repo := newFakeAuctionRepo(a)
	broadcaster := &fakeBroadcaster{}
	svc := NewLifecycleService(repo, broadcaster)

	assert.NoError(t, svc.Activate(context.Background(), a.ID))

	got, err := repo.GetByID(context.Background(), a.ID)
	assert.NoError(t, err)
	check.Equal(t, domain.StatusLive, got.Status)
	check.True(t, got.StartTime != nil)
	check.Equal(t, []domain.AuctionStatus{domain.StatusLive}, broadcaster.statuses)
}

func TestLifecycle_ActivateIsIdempotent(t *testing.T) {
	a := domain.NewAuction(uuid.New(), "a1b2c3d4e", "Spring sale", "", nil, nil)
	repo := newFakeAuctionRepo(a)
	broadcaster := &fakeBroadcaster{}
	svc := NewLifecycleService(repo, broadcaster)

	assert.NoError(t, svc.Activate(context.Background(), a.ID))
	started := *a.StartTime

	// Second activation: no error, no second broadcast, start time untouched.
	assert.NoError(t, svc.Activate(context.Background(), a.ID))
	check.Equal(t, 1, len(broadcaster.statuses))
	check.Equal(t, started, *a.StartTime)

	// Activation after ending stays a no-op too.
	assert.NoError(t, svc.End(context.Background(), a.ID))
	assert.NoError(t, svc.Activate(context.Background(), a.ID))
	check.Equal(t, domain.StatusEnded, a.Status)
}

func TestLifecycle_PauseAndResume(t *testing.T) {
	a := domain.NewAuction(uuid.New(), "a1b2c3d4e", "Spring sale", "", nil, nil)
	repo := newFakeAuctionRepo(a)
	broadcaster := &fakeBroadcaster{}
	svc := NewLifecycleService(repo, broadcaster)

	assert.NoError(t, svc.Activate(context.Background(), a.ID))
	assert.NoError(t, svc.Pause(context.Background(), a.ID))
	check.Equal(t, domain.StatusPaused, a.Status)

	assert.NoError(t, svc.Activate(context.Background(), a.ID))
	check.Equal(t, domain.StatusLive, a.Status)

	check.Equal(t, []domain.AuctionStatus{
		domain.StatusLive, domain.StatusPaused, domain.StatusLive,
	}, broadcaster.statuses)
}

func TestLifecycle_InvalidTransitions(t *testing.T) {
	a := domain.NewAuction(uuid.New(), "a1b2c3d4e", "Spring sale", "", nil, nil)
	repo := newFakeAuctionRepo(a)
	svc := NewLifecycleService(repo, &fakeBroadcaster{})

	// Draft cannot pause or end.
	check.Error(t, svc.Pause(context.Background(), a.ID))
	check.Error(t, svc.End(context.Background(), a.ID))
	check.Equal(t, domain.StatusDraft, a.Status)
}

func TestLifecycle_ChangeStatusRejectsUnknown(t *testing.T) {
	a := domain.NewAuction(uuid.New(), "a1b2c3d4e", "Spring sale", "", nil, nil)
	svc := NewLifecycleService(newFakeAuctionRepo(a), &fakeBroadcaster{})

	err := svc.ChangeStatus(context.Background(), a.ID, domain.AuctionStatus("archived"))
	check.Error(t, err)
	// Draft is not a transition target either.
	err = svc.ChangeStatus(context.Background(), a.ID, domain.StatusDraft)
	check.Error(t, err)
}

func TestLifecycle_ActivateUnknownAuction(t *testing.T) {
	svc := NewLifecycleService(newFakeAuctionRepo(), &fakeBroadcaster{})
	check.Error(t, svc.Activate(context.Background(), uuid.New()))
}

func TestLifecycle_CurrentStatus(t *testing.T) {
	a := domain.NewAuction(uuid.New(), "a1b2c3d4e", "Spring sale", "", nil, nil)
	svc := NewLifecycleService(newFakeAuctionRepo(a), &fakeBroadcaster{})

	status, err := svc.CurrentStatus(context.Background(), a.ID)
	assert.NoError(t, err)
	check.Equal(t, domain.StatusDraft, status)
}

func TestLifecycle_StatusChangeCarriesStartTime(t *testing.T) {
	a := domain.NewAuction(uuid.New(), "a1b2c3d4e", "Spring sale", "", nil, nil)
	repo := newFakeAuctionRepo(a)
	broadcaster := &fakeBroadcaster{}
	svc := NewLifecycleService(repo, broadcaster)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	assert.NoError(t, svc.Activate(context.Background(), a.ID))
	assert.True(t, a.StartTime != nil)
	check.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), *a.StartTime)
}
