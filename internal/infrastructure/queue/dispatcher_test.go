package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
)

type captureRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *captureRepo) Insert(_ context.Context, event domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *captureRepo) snapshot() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditEvent, len(r.events))
	copy(out, r.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition never satisfied")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAuditDispatcher_DeliversEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &captureRepo{}
	d := NewAuditDispatcher(4, repo, zerolog.Nop())
	d.Start(ctx)

	d.Record(domain.AuditEvent{Action: domain.AuditLogin, SessionID: "s1", Username: "siti", Success: true})
	d.Record(domain.AuditEvent{Action: domain.AuditLogout, SessionID: "s2", Username: "budi", Success: true})

	waitFor(t, func() bool { return len(repo.snapshot()) == 2 })

	for _, e := range repo.snapshot() {
		if e.Timestamp.IsZero() {
			t.Error("dispatcher must stamp events that carry no timestamp")
		}
	}
}

func TestAuditDispatcher_SameSessionKeepsOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &captureRepo{}
	d := NewAuditDispatcher(4, repo, zerolog.Nop())
	d.Start(ctx)

	actions := []domain.AuditAction{
		domain.AuditLogin,
		domain.AuditRevalidated,
		domain.AuditSessionRevoked,
	}
	for _, a := range actions {
		d.Record(domain.AuditEvent{Action: a, SessionID: "same-session"})
	}

	waitFor(t, func() bool { return len(repo.snapshot()) == len(actions) })

	// One session always hashes to one worker, so order is preserved.
	got := repo.snapshot()
	for i, a := range actions {
		if got[i].Action != a {
			t.Errorf("event %d out of order: got %s, want %s", i, got[i].Action, a)
		}
	}
}

func TestAuditDispatcher_ShardIsStable(t *testing.T) {
	d := NewAuditDispatcher(4, &captureRepo{}, zerolog.Nop())

	first := d.shardIndex("session-abc")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("session-abc"); got != first {
			t.Fatalf("shard for a session must be stable, got %d then %d", first, got)
		}
	}
}

func TestAuditDispatcher_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	// Workers are never started, so buffers fill and stay full.
	d := NewAuditDispatcher(1, &captureRepo{}, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < channelBuffer+10; i++ {
			d.Record(domain.AuditEvent{Action: domain.AuditLogin, SessionID: "s"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record must never block, even with a full buffer")
	}
}
