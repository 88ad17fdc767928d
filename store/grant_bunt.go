package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tidwall/buntdb"

	"github.com/credentix/credentix/models"
)

// BuntGrantStore keeps authorization grants in an embedded buntdb
// database with native TTL expiry. Suitable for single-node and test
// deployments; clustered deployments use ValkeyGrantStore.
type BuntGrantStore struct {
	db  *buntdb.DB
	ttl time.Duration
}

// NewBuntGrantStore opens a buntdb-backed grant store. Pass ":memory:"
// for an in-memory database.
func NewBuntGrantStore(path string) (*BuntGrantStore, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &BuntGrantStore{db: db, ttl: GrantTTL}, nil
}

// SetTTL overrides the grant TTL.
func (s *BuntGrantStore) SetTTL(ttl time.Duration) {
	s.ttl = ttl
}

// Close closes the underlying database.
func (s *BuntGrantStore) Close() error {
	return s.db.Close()
}

func grantKey(code string) string {
	return "auth_code:" + code
}

// Issue generates a code and stores the grant with TTL expiry.
func (s *BuntGrantStore) Issue(ctx context.Context, clientID, userID, redirectURI, scope string) (string, error) {
	code, err := NewCode()
	if err != nil {
		return "", err
	}
	grant := newGrant(code, clientID, userID, redirectURI, scope, s.ttl)
	data, err := json.Marshal(grant)
	if err != nil {
		return "", err
	}
	err = s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(grantKey(code), string(data), &buntdb.SetOptions{Expires: true, TTL: s.ttl})
		return err
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// Redeem fetches and deletes the grant inside a single write
// transaction, so concurrent redemptions of the same code serialize and
// exactly one succeeds.
func (s *BuntGrantStore) Redeem(ctx context.Context, code string) (*models.Grant, error) {
	var raw string
	err := s.db.Update(func(tx *buntdb.Tx) error {
		v, err := tx.Get(grantKey(code))
		if err != nil {
			return err
		}
		raw = v
		_, err = tx.Delete(grantKey(code))
		return err
	})
	if err != nil {
		if err == buntdb.ErrNotFound {
			return nil, ErrGrantNotFound
		}
		return nil, err
	}
	var grant models.Grant
	if err := json.Unmarshal([]byte(raw), &grant); err != nil {
		return nil, err
	}
	if grant.IsExpired() {
		return nil, ErrGrantNotFound
	}
	return &grant, nil
}
