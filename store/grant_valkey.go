package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	valkey "github.com/valkey-io/valkey-go"
	"gorm.io/gorm"

	"github.com/credentix/credentix/models"
)

// redeemScript atomically fetches and deletes a code in one server-side
// command. A plain GET followed by DEL from the client would let two
// concurrent redemptions both observe the grant.
const redeemScript = `
	local v = redis.call("get", KEYS[1])
	if v then
		redis.call("del", KEYS[1])
	end
	return v
`

// ValkeyGrantStore keeps authorization grants in Valkey (Redis
// compatible) with TTL expiry as the source of truth for liveness, and
// mirrors each grant into a durable table for audit. The mirror is
// never consulted on redemption.
type ValkeyGrantStore struct {
	client valkey.Client
	mirror *gorm.DB
	prefix string
	ttl    time.Duration
}

// NewValkeyGrantStore connects to addr and returns a grant store.
// mirror may be nil to disable the durable copy.
func NewValkeyGrantStore(addr, prefix string, mirror *gorm.DB) (*ValkeyGrantStore, error) {
	cli, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, err
	}
	return NewValkeyGrantStoreWithClient(cli, prefix, mirror), nil
}

// NewValkeyGrantStoreWithClient creates a store with an existing Valkey client.
func NewValkeyGrantStoreWithClient(client valkey.Client, prefix string, mirror *gorm.DB) *ValkeyGrantStore {
	if prefix == "" {
		prefix = "credentix:"
	}
	return &ValkeyGrantStore{
		client: client,
		mirror: mirror,
		prefix: prefix,
		ttl:    GrantTTL,
	}
}

// SetTTL overrides the grant TTL.
func (s *ValkeyGrantStore) SetTTL(ttl time.Duration) {
	s.ttl = ttl
}

// Close closes the Valkey connection.
func (s *ValkeyGrantStore) Close() {
	s.client.Close()
}

// key builds the cache key for an authorization code.
func (s *ValkeyGrantStore) key(code string) string {
	return fmt.Sprintf("%sauth_code:%s", s.prefix, code)
}

// Issue generates a code, stores the grant context in the cache with
// TTL, and writes the durable mirror row.
func (s *ValkeyGrantStore) Issue(ctx context.Context, clientID, userID, redirectURI, scope string) (string, error) {
	code, err := NewCode()
	if err != nil {
		return "", err
	}
	grant := newGrant(code, clientID, userID, redirectURI, scope, s.ttl)

	data, err := json.Marshal(grant)
	if err != nil {
		return "", fmt.Errorf("marshal grant: %w", err)
	}
	if err := s.client.Do(ctx, s.client.B().Set().Key(s.key(code)).Value(string(data)).Ex(s.ttl).Build()).Error(); err != nil {
		return "", err
	}

	if s.mirror != nil {
		err := s.mirror.WithContext(ctx).Exec(
			`INSERT INTO authorization_codes(code, client_id, user_id, redirect_uri, scope, created_at, expires_at)
			 VALUES(?,?,?,?,?,?,?)`,
			grant.Code, grant.ClientID, grant.UserID, grant.RedirectURI, grant.Scope, grant.CreatedAt, grant.ExpiresAt,
		).Error
		if err != nil {
			// Roll the cache entry back so issuance is all-or-nothing.
			_ = s.client.Do(ctx, s.client.B().Del().Key(s.key(code)).Build()).Error()
			return "", err
		}
	}
	return code, nil
}

// Redeem performs the atomic fetch-and-delete against the cache, then
// cleans up the mirror row best-effort. An expired or already-consumed
// code fails with ErrGrantNotFound even when the mirror row still
// exists.
func (s *ValkeyGrantStore) Redeem(ctx context.Context, code string) (*models.Grant, error) {
	res := s.client.Do(ctx, s.client.B().Eval().Script(redeemScript).Numkeys(1).Key(s.key(code)).Build())
	if res.Error() != nil {
		if valkey.IsValkeyNil(res.Error()) {
			return nil, ErrGrantNotFound
		}
		return nil, res.Error()
	}
	raw, err := res.ToString()
	if err != nil || raw == "" {
		return nil, ErrGrantNotFound
	}

	var grant models.Grant
	if err := json.Unmarshal([]byte(raw), &grant); err != nil {
		return nil, fmt.Errorf("unmarshal grant: %w", err)
	}
	grant.Code = code

	if s.mirror != nil {
		if err := s.mirror.WithContext(ctx).Exec(`DELETE FROM authorization_codes WHERE code=?`, code).Error; err != nil {
			log.Printf("grant store: mirror cleanup for consumed code failed: %v", err)
		}
	}

	if grant.IsExpired() {
		return nil, ErrGrantNotFound
	}
	return &grant, nil
}

// PurgeExpiredMirror deletes mirror rows whose absolute expiry has
// passed. The cache needs no sweep since Valkey expires keys itself;
// the mirror is an audit table and may be trimmed at any time.
func (s *ValkeyGrantStore) PurgeExpiredMirror(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	return s.mirror.WithContext(ctx).Exec(`DELETE FROM authorization_codes WHERE expires_at < ?`, time.Now().UTC()).Error
}
