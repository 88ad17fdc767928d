package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/credentix/credentix/models"
)

// ErrClientNotFound indicates an unknown client_id.
var ErrClientNotFound = errors.New("client not found")

// ClientStore is the registry lookup the protocol handlers consume.
// The handlers never mutate client records.
type ClientStore interface {
	GetByID(ctx context.Context, id string) (*models.Client, error)
}

// ClientRegistry is the mutable surface behind the admin API.
type ClientRegistry interface {
	ClientStore
	Upsert(ctx context.Context, c *models.Client) error
	Delete(ctx context.Context, id string) error
}

// NewClientStore create client store (memory)
func NewClientStore() *MemClientStore {
	return &MemClientStore{
		data: make(map[string]*models.Client),
	}
}

// MemClientStore client information store (in-memory)
type MemClientStore struct {
	sync.RWMutex
	data map[string]*models.Client
}

// GetByID according to the ID for the client information
func (cs *MemClientStore) GetByID(ctx context.Context, id string) (*models.Client, error) {
	cs.RLock()
	defer cs.RUnlock()

	if c, ok := cs.data[id]; ok {
		return c, nil
	}
	return nil, ErrClientNotFound
}

// Set set client information
func (cs *MemClientStore) Set(id string, cli *models.Client) (err error) {
	cs.Lock()
	defer cs.Unlock()

	cs.data[id] = cli
	return
}

// Upsert stores the client keyed by its ID.
func (cs *MemClientStore) Upsert(ctx context.Context, cli *models.Client) error {
	return cs.Set(cli.ID, cli)
}

// Delete removes a client by id. Deleting an unknown id is a no-op.
func (cs *MemClientStore) Delete(ctx context.Context, id string) error {
	cs.Lock()
	defer cs.Unlock()

	delete(cs.data, id)
	return nil
}

// --- Persistent client store ---

type DBClientStore struct{ DB *gorm.DB }

func NewDBClientStore(db *gorm.DB) *DBClientStore { return &DBClientStore{DB: db} }

// Upsert creates or updates a client, storing redirect URIs as JSON.
func (s *DBClientStore) Upsert(ctx context.Context, c *models.Client) error {
	b, _ := json.Marshal(c.RedirectURIs)
	return s.DB.WithContext(ctx).Exec(
		`INSERT INTO clients(id, secret, name, redirect_uris, user_id)
		 VALUES(?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET secret=excluded.secret, name=excluded.name, redirect_uris=excluded.redirect_uris, user_id=excluded.user_id, updated_at=CURRENT_TIMESTAMP`,
		c.ID, c.Secret, c.Name, string(b), c.UserID,
	).Error
}

// GetByID loads a client and its registered redirect URI allow-list.
func (s *DBClientStore) GetByID(ctx context.Context, id string) (*models.Client, error) {
	var row struct {
		ID           string
		Secret       string
		Name         string
		RedirectURIs string
		UserID       string
	}
	if err := s.DB.WithContext(ctx).Raw(
		`SELECT id, secret, name, redirect_uris, user_id FROM clients WHERE id=?`, id,
	).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == "" {
		return nil, ErrClientNotFound
	}
	var uris []string
	_ = json.Unmarshal([]byte(row.RedirectURIs), &uris)
	return &models.Client{ID: row.ID, Secret: row.Secret, Name: row.Name, RedirectURIs: uris, UserID: row.UserID}, nil
}

// Delete removes a client by id.
func (s *DBClientStore) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Exec(`DELETE FROM clients WHERE id=?`, id).Error
}
