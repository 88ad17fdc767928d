package store

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/credentix/credentix/models"
)

// ErrUserNotFound indicates the referenced user no longer exists.
var ErrUserNotFound = errors.New("user not found")

// UserStore is the partial user view the token engine needs: identity
// reads plus the single refresh-token slot.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateRefreshToken overwrites the user's refresh-token slot.
	// There is exactly one active refresh token per user.
	UpdateRefreshToken(ctx context.Context, userID, token string) error

	// ClearRefreshToken empties the slot (logout, password reset).
	ClearRefreshToken(ctx context.Context, userID string) error
}

// DBUserStore reads and writes users through gorm with raw SQL.
type DBUserStore struct{ DB *gorm.DB }

func NewDBUserStore(db *gorm.DB) *DBUserStore { return &DBUserStore{DB: db} }

const userSelect = `
	SELECT u.id, u.email, u.full_name, u.password_hash,
	       u.tenant_id, COALESCE(t.name, '') AS tenant_name,
	       u.role_id, COALESCE(r.name, '') AS role_name,
	       u.refresh_token, u.email_verified, u.status
	FROM users u
	LEFT JOIN tenants t ON t.id = u.tenant_id
	LEFT JOIN roles r ON r.id = u.role_id`

func (s *DBUserStore) scanOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var row struct {
		ID            string
		Email         string
		FullName      string
		PasswordHash  string
		TenantID      string
		TenantName    string
		RoleID        string
		RoleName      string
		RefreshToken  *string
		EmailVerified bool
		Status        string
	}
	if err := s.DB.WithContext(ctx).Raw(query, arg).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == "" {
		return nil, ErrUserNotFound
	}
	return &models.User{
		ID:            row.ID,
		Email:         row.Email,
		FullName:      row.FullName,
		PasswordHash:  row.PasswordHash,
		TenantID:      row.TenantID,
		TenantName:    row.TenantName,
		RoleID:        row.RoleID,
		RoleName:      row.RoleName,
		RefreshToken:  row.RefreshToken,
		EmailVerified: row.EmailVerified,
		Status:        models.UserStatus(row.Status),
	}, nil
}

// GetByID loads a user with tenant and role display names resolved.
func (s *DBUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.scanOne(ctx, userSelect+` WHERE u.id=?`, id)
}

// GetByEmail loads a user by email.
func (s *DBUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanOne(ctx, userSelect+` WHERE u.email=?`, email)
}

// UpdateRefreshToken overwrites the single refresh-token slot.
func (s *DBUserStore) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	res := s.DB.WithContext(ctx).Exec(`UPDATE users SET refresh_token=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, token, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ClearRefreshToken empties the refresh-token slot.
func (s *DBUserStore) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.DB.WithContext(ctx).Exec(`UPDATE users SET refresh_token=NULL, updated_at=CURRENT_TIMESTAMP WHERE id=?`, userID).Error
}

// --- In-memory user store (tests, local bootstrap) ---

// MemUserStore keeps users in a map guarded by a RWMutex.
type MemUserStore struct {
	sync.RWMutex
	data map[string]*models.User
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{data: make(map[string]*models.User)}
}

// Set adds or replaces a user.
func (s *MemUserStore) Set(u *models.User) {
	s.Lock()
	defer s.Unlock()
	cp := *u
	s.data[u.ID] = &cp
}

func (s *MemUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.RLock()
	defer s.RUnlock()
	if u, ok := s.data[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrUserNotFound
}

func (s *MemUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.RLock()
	defer s.RUnlock()
	for _, u := range s.data {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemUserStore) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	s.Lock()
	defer s.Unlock()
	u, ok := s.data[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.RefreshToken = &token
	return nil
}

func (s *MemUserStore) ClearRefreshToken(ctx context.Context, userID string) error {
	s.Lock()
	defer s.Unlock()
	u, ok := s.data[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.RefreshToken = nil
	return nil
}
