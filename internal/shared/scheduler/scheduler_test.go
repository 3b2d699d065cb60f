package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/check"
)

type activationRecorder struct {
	mu    sync.Mutex
	fired []uuid.UUID
	ch    chan uuid.UUID
}

func newActivationRecorder() *activationRecorder {
	return &activationRecorder{ch: make(chan uuid.UUID, 16)}
}

func (r *activationRecorder) activate(_ context.Context, auctionID uuid.UUID) error {
	r.mu.Lock()
	r.fired = append(r.fired, auctionID)
	r.mu.Unlock()
	r.ch <- auctionID
	return nil
}

func (r *activationRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

func (r *activationRecorder) waitOne(t *testing.T) uuid.UUID {
	t.Helper()
	select {
	case id := <-r.ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("activation never fired")
	}
	return uuid.Nil
}

func TestScheduler_FiresAtDueTime(t *testing.T) {
	rec := newActivationRecorder()
	s := New(rec.activate)
	defer s.Stop()

	id := uuid.New()
	s.ScheduleActivation(id, time.Now().Add(20*time.Millisecond))

	check.Equal(t, id, rec.waitOne(t))
}

func TestScheduler_PastTimeFiresImmediately(t *testing.T) {
	rec := newActivationRecorder()
	s := New(rec.activate)
	defer s.Stop()

	id := uuid.New()
	s.ScheduleActivation(id, time.Now().Add(-time.Minute))

	check.Equal(t, id, rec.waitOne(t))
}

func TestScheduler_CancelPreventsFiring(t *testing.T) {
	rec := newActivationRecorder()
	s := New(rec.activate)
	defer s.Stop()

	id := uuid.New()
	s.ScheduleActivation(id, time.Now().Add(50*time.Millisecond))
	s.CancelActivation(id)

	time.Sleep(150 * time.Millisecond)
	check.Equal(t, 0, rec.count())
}

func TestScheduler_RescheduleReplacesTimer(t *testing.T) {
	rec := newActivationRecorder()
	s := New(rec.activate)
	defer s.Stop()

	id := uuid.New()
	s.ScheduleActivation(id, time.Now().Add(time.Hour))
	s.ScheduleActivation(id, time.Now().Add(20*time.Millisecond))

	rec.waitOne(t)
	// Only the re-armed timer fires; the original was replaced.
	time.Sleep(100 * time.Millisecond)
	check.Equal(t, 1, rec.count())
}

func TestScheduler_CancelUnknownIsNoop(t *testing.T) {
	s := New(newActivationRecorder().activate)
	defer s.Stop()
	s.CancelActivation(uuid.New())
}

func TestScheduler_StopDisarmsPendingTimers(t *testing.T) {
	rec := newActivationRecorder()
	s := New(rec.activate)

	s.ScheduleActivation(uuid.New(), time.Now().Add(50*time.Millisecond))
	s.ScheduleActivation(uuid.New(), time.Now().Add(60*time.Millisecond))
	s.Stop()

	time.Sleep(150 * time.Millisecond)
	check.Equal(t, 0, rec.count())

	// Scheduling after Stop is ignored.
	s.ScheduleActivation(uuid.New(), time.Now().Add(10*time.Millisecond))
	time.Sleep(100 * time.Millisecond)
	check.Equal(t, 0, rec.count())
}
