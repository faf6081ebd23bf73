package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"auction-board/internal/domain"
	"auction-board/pkg/logger"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func TestBidArchiver_StoresAcceptedBids(t *testing.T) {
	repo := &recordingBidRepository{}
	archiver := NewBidArchiver(repo, logger.NewNop())

	subscriber := &sliceSubscriber{events: []*domain.BidEvent{
		{ID: "e1", Type: domain.EventBidAccepted, ItemName: rolex, Bidder: "Alice", Amount: decimal.NewFromInt(1050), Timestamp: testStart},
		{ID: "e2", Type: domain.EventAuctionEnded, ItemName: rolex, Bidder: "Alice", Amount: decimal.NewFromInt(1050), Timestamp: testStart},
		{ID: "e3", Type: "bid_retracted", ItemName: rolex},
	}}

	assert.NoError(t, archiver.Start(context.Background(), subscriber))

	assert.Equal(t, 1, len(repo.saved))
	check.Equal(t, "e1", repo.saved[0].ID)

	assert.Equal(t, 3, len(subscriber.handlerErr))
	check.NoError(t, subscriber.handlerErr[0])
	check.NoError(t, subscriber.handlerErr[1])
	check.Error(t, subscriber.handlerErr[2])
}

func TestBidArchiver_RepositoryErrorSurfaces(t *testing.T) {
	repo := &recordingBidRepository{err: errBroken}
	archiver := NewBidArchiver(repo, logger.NewNop())

	err := archiver.handleBidEvent(context.Background(), &domain.BidEvent{Type: domain.EventBidAccepted, ItemName: rolex})
	check.True(t, errors.Is(err, errBroken))
}

type fakeElection struct {
	mu       sync.Mutex
	attempts int
	grantOn  int
	err      error
	demoted  bool
	released []string
	cancel   context.CancelFunc
}

func (e *fakeElection) BecomeLeader(ctx context.Context, _ string) (context.Context, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attempts++
	if e.err != nil {
		return nil, false, e.err
	}
	if e.attempts < e.grantOn {
		return nil, false, nil
	}
	leaderCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	return leaderCtx, true, nil
}

func (e *fakeElection) IsLeader(context.Context, string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.demoted, nil
}

func (e *fakeElection) ReleaseLeadership(_ context.Context, instanceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.released = append(e.released, instanceID)
	return nil
}

// loseLease ends the current leader context the way an expired heartbeat does.
func (e *fakeElection) loseLease() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancel()
}

// blockingSubscriber signals started and then waits for ctx.
type blockingSubscriber struct {
	started chan struct{}
}

func (s *blockingSubscriber) SubscribeToBidEvents(ctx context.Context, _ domain.EventHandler) error {
	s.started <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func TestBidArchiver_RunAsLeader(t *testing.T) {
	repo := &recordingBidRepository{}
	archiver := NewBidArchiver(repo, logger.NewNop())
	election := &fakeElection{grantOn: 3}
	subscriber := &sliceSubscriber{events: []*domain.BidEvent{
		{ID: "e1", Type: domain.EventBidAccepted, ItemName: rolex, Bidder: "Alice", Amount: decimal.NewFromInt(1050)},
	}}

	err := archiver.RunAsLeader(context.Background(), election, "archiver-1", time.Millisecond, subscriber)
	check.NoError(t, err)

	check.Equal(t, 3, election.attempts)
	check.Equal(t, []string{"archiver-1"}, election.released)
	check.Equal(t, 1, len(repo.saved))
}

func TestBidArchiver_RunAsLeaderSkipsWritesWithoutLease(t *testing.T) {
	repo := &recordingBidRepository{}
	archiver := NewBidArchiver(repo, logger.NewNop())
	election := &fakeElection{grantOn: 1, demoted: true}
	subscriber := &sliceSubscriber{events: []*domain.BidEvent{
		{ID: "e1", Type: domain.EventBidAccepted, ItemName: rolex, Bidder: "Alice", Amount: decimal.NewFromInt(1050)},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := archiver.RunAsLeader(ctx, election, "archiver-1", time.Millisecond, subscriber)
	check.True(t, errors.Is(err, context.DeadlineExceeded))

	check.Equal(t, 0, len(repo.saved))
	assert.True(t, len(subscriber.handlerErr) > 0)
	check.True(t, errors.Is(subscriber.handlerErr[0], errNotLeader))
	check.True(t, len(election.released) > 0)
}

func TestBidArchiver_RunAsLeaderStepsDownOnLostLease(t *testing.T) {
	archiver := NewBidArchiver(&recordingBidRepository{}, logger.NewNop())
	election := &fakeElection{grantOn: 1}
	subscriber := &blockingSubscriber{started: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- archiver.RunAsLeader(ctx, election, "archiver-1", time.Millisecond, subscriber)
	}()

	waitFor := func() {
		select {
		case <-subscriber.started:
		case <-time.After(2 * time.Second):
			t.Fatal("archiver did not start consuming")
		}
	}

	waitFor()
	election.loseLease()
	waitFor()
	cancel()

	select {
	case err := <-done:
		check.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("archiver did not stop")
	}

	check.Equal(t, 2, election.attempts)
	check.Equal(t, []string{"archiver-1", "archiver-1"}, election.released)
}

func TestBidArchiver_RunAsLeaderStopsWhileWaiting(t *testing.T) {
	repo := &recordingBidRepository{}
	archiver := NewBidArchiver(repo, logger.NewNop())
	election := &fakeElection{err: errBroken}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := archiver.RunAsLeader(ctx, election, "archiver-1", time.Millisecond, &sliceSubscriber{})
	check.True(t, errors.Is(err, context.DeadlineExceeded))
	check.Equal(t, 0, len(election.released))
	check.Equal(t, 0, len(repo.saved))
}
