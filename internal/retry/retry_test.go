package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"gorm.io/gorm"
)

var fastPolicy = Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func TestDo_RetriesTransientFailures(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection reset by peer")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("expected ok, got %q", got)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_StopsAfterMaxAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("store unavailable")
	_, err := Do(context.Background(), fastPolicy, func(ctx context.Context) (int, error) {
		calls++
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected last error to surface, got %v", err)
	}
	if calls != fastPolicy.MaxAttempts {
		t.Fatalf("expected %d calls, got %d", fastPolicy.MaxAttempts, calls)
	}
}

func TestDo_DoesNotRetryPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "record not found", err: gorm.ErrRecordNotFound},
		{name: "context canceled", err: context.Canceled},
		{name: "marked permanent", err: Permanent(errors.New("validation failed"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := Do(context.Background(), fastPolicy, func(ctx context.Context) (struct{}, error) {
				calls++
				return struct{}{}, tt.err
			})
			if err == nil {
				t.Fatal("expected an error")
			}
			if calls != 1 {
				t.Fatalf("expected a single call, got %d", calls)
			}
			var perm *permanentError
			if errors.As(err, &perm) {
				t.Fatalf("permanent wrapper leaked to caller: %v", err)
			}
		})
	}
}

func TestDo_ZeroPolicyUsesDefaults(t *testing.T) {
	p := Policy{}.normalize()
	if p.MaxAttempts != DefaultPolicy.MaxAttempts {
		t.Fatalf("expected %d attempts, got %d", DefaultPolicy.MaxAttempts, p.MaxAttempts)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"permanent", Permanent(errors.New("bad input")), false},
		{"connection reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"unknown store error", errors.New("driver: bad connection"), true},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("%s: IsRetryable() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
