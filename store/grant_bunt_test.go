package store_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/credentix/credentix/store"
)

var hexCode = regexp.MustCompile(`^[0-9a-f]{64}$`)

func newBuntStore(t *testing.T) *store.BuntGrantStore {
	t.Helper()
	s, err := store.NewBuntGrantStore(":memory:")
	if err != nil {
		t.Fatalf("open bunt store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIssueProducesHexCode(t *testing.T) {
	s := newBuntStore(t)
	code, err := s.Issue(context.Background(), "c1", "u1", "https://app.example/cb", "openid")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !hexCode.MatchString(code) {
		t.Fatalf("code %q is not 64 hex chars", code)
	}
}

func TestIssueCodesAreUnique(t *testing.T) {
	s := newBuntStore(t)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := s.Issue(context.Background(), "c1", "u1", "https://app.example/cb", "openid")
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate code issued: %s", code)
		}
		seen[code] = true
	}
}

func TestRedeemReturnsGrantOnce(t *testing.T) {
	s := newBuntStore(t)
	ctx := context.Background()
	code, err := s.Issue(ctx, "c1", "u1", "https://app.example/cb", "openid email")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	grant, err := s.Redeem(ctx, code)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if grant.ClientID != "c1" || grant.UserID != "u1" {
		t.Fatalf("grant context mismatch: %+v", grant)
	}
	if grant.RedirectURI != "https://app.example/cb" || grant.Scope != "openid email" {
		t.Fatalf("grant context mismatch: %+v", grant)
	}

	// second redemption of the same code must fail
	if _, err := s.Redeem(ctx, code); err != store.ErrGrantNotFound {
		t.Fatalf("replay err = %v, want ErrGrantNotFound", err)
	}
}

func TestRedeemUnknownCode(t *testing.T) {
	s := newBuntStore(t)
	if _, err := s.Redeem(context.Background(), "deadbeef"); err != store.ErrGrantNotFound {
		t.Fatalf("err = %v, want ErrGrantNotFound", err)
	}
}

func TestRedeemExpiredCode(t *testing.T) {
	s := newBuntStore(t)
	s.SetTTL(10 * time.Millisecond)
	ctx := context.Background()
	code, err := s.Issue(ctx, "c1", "u1", "https://app.example/cb", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := s.Redeem(ctx, code); err != store.ErrGrantNotFound {
		t.Fatalf("expired err = %v, want ErrGrantNotFound", err)
	}
}

func TestConcurrentRedeemExactlyOneWinner(t *testing.T) {
	s := newBuntStore(t)
	ctx := context.Background()

	for round := 0; round < 10; round++ {
		code, err := s.Issue(ctx, "c1", "u1", "https://app.example/cb", "openid")
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}

		const racers = 16
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins, losses := 0, 0
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Redeem(ctx, code)
				mu.Lock()
				defer mu.Unlock()
				switch err {
				case nil:
					wins++
				case store.ErrGrantNotFound:
					losses++
				default:
					t.Errorf("unexpected redeem error: %v", err)
				}
			}()
		}
		wg.Wait()
		if wins != 1 || losses != racers-1 {
			t.Fatalf("round %d: wins=%d losses=%d, want exactly one winner", round, wins, losses)
		}
	}
}

func TestDefaultScopeApplied(t *testing.T) {
	s := newBuntStore(t)
	ctx := context.Background()
	code, err := s.Issue(ctx, "c1", "u1", "https://app.example/cb", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	grant, err := s.Redeem(ctx, code)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if grant.Scope != "openid email profile" {
		t.Fatalf("scope = %q, want default", grant.Scope)
	}
}
