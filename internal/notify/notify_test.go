package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type stubChannel struct {
	name  string
	err   error
	calls int32
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Send(ctx context.Context, msg Message) error {
	atomic.AddInt32(&s.calls, 1)
	return s.err
}

func TestDispatcherSendCountsSuccessfulChannels(t *testing.T) {
	ok := &stubChannel{name: "ok"}
	failing := &stubChannel{name: "failing", err: errors.New("provider down")}
	skipped := &stubChannel{name: "skipped", err: ErrNoRecipient}

	d := NewDispatcher(ok, failing, skipped)
	sent := d.Send(context.Background(), Message{Phone: "+221770000000", Body: "hello"})

	if sent != 1 {
		t.Fatalf("expected 1 channel to deliver, got %d", sent)
	}
	for _, ch := range []*stubChannel{ok, failing, skipped} {
		if atomic.LoadInt32(&ch.calls) != 1 {
			t.Errorf("channel %s called %d times, want exactly 1 (no retries)", ch.name, ch.calls)
		}
	}
}

func TestDispatcherWithNoChannels(t *testing.T) {
	if sent := NewDispatcher().Send(context.Background(), Message{Body: "x"}); sent != 0 {
		t.Fatalf("expected 0, got %d", sent)
	}
}
