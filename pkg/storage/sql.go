package storage

import (
	"context"
	"errors"
	"net/http"

	"github.com/teslo-shop/storefront/pkg/db/models"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDB exposes the GORM handle, satisfied by *pkg/db.Client.
type GormDB interface {
	DB() *gorm.DB
}

// SQLProvider stores session keys in the storefront_kv table.
type SQLProvider struct {
	db GormDB
}

func NewSQLProvider(db GormDB) *SQLProvider {
	return &SQLProvider{db: db}
}

func (p *SQLProvider) Open(_ http.ResponseWriter, r *http.Request) (Store, error) {
	sessionID, err := requireSession(r.Context())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open sql storage")
	}
	return &SQLStore{db: p.db.DB(), sessionID: sessionID}, nil
}

func (p *SQLProvider) ServerSide() bool { return true }

type SQLStore struct {
	db        *gorm.DB
	sessionID string
}

// NewSQLStore returns a store bound to one session id.
func NewSQLStore(db *gorm.DB, sessionID string) *SQLStore {
	return &SQLStore{db: db, sessionID: sessionID}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND kv_key = ?", s.sessionID, key).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read session key")
	}
	return entry.Value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	entry := models.KVEntry{SessionID: s.sessionID, Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"kv_value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write session key")
	}
	return nil
}
