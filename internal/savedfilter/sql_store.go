// internal/savedfilter/sql_store.go
package savedfilter

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/search/filter"
)

const selectColumns = `id, owner_id, name, state, created_at`

// SQLStore implements Store on database/sql for either dialect.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  logger.Logger
	now     func() time.Time
	newID   func() string
}

type Option func(*SQLStore)

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLStore) { s.now = now }
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(gen func() string) Option {
	return func(s *SQLStore) { s.newID = gen }
}

func NewSQLStore(db *sql.DB, dialect Dialect, log logger.Logger, opts ...Option) *SQLStore {
	s := &SQLStore{
		db:      db,
		dialect: dialect,
		logger:  log.WithFields(map[string]interface{}{"store": "saved_filters", "dialect": dialect.Name}),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the table and the (owner_id, name) unique index.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating saved_filters: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Save(ctx context.Context, ownerID, name string, state filter.State) (*SavedFilter, error) {
	if err := checkKey(ownerID, name); err != nil {
		return nil, err
	}
	exists, err := s.Exists(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &DuplicateNameError{OwnerID: ownerID, Name: name}
	}

	sf, raw, err := s.newRecord(ownerID, name, state)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		s.dialect.bind(`INSERT INTO saved_filters (id, owner_id, name, state, created_at) VALUES (?, ?, ?, ?, ?)`),
		sf.ID, sf.OwnerID, sf.Name, raw, sf.CreatedAt,
	)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return nil, &DuplicateNameError{OwnerID: ownerID, Name: name}
		}
		return nil, fmt.Errorf("inserting saved filter: %w", err)
	}

	s.logger.Info("Saved filter", map[string]interface{}{"id": sf.ID, "owner": ownerID, "name": name})
	return sf, nil
}

// Overwrite replaces the owner's filter called name, creating it when
// missing. The existing id is kept and CreatedAt is restamped.
func (s *SQLStore) Overwrite(ctx context.Context, ownerID, name string, state filter.State) (*SavedFilter, error) {
	if err := checkKey(ownerID, name); err != nil {
		return nil, err
	}
	sf, raw, err := s.newRecord(ownerID, name, state)
	if err != nil {
		return nil, err
	}
	err = s.db.QueryRowContext(ctx,
		s.dialect.bind(`INSERT INTO saved_filters (id, owner_id, name, state, created_at) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (owner_id, name) DO UPDATE SET state = excluded.state, created_at = excluded.created_at
			RETURNING id`),
		sf.ID, sf.OwnerID, sf.Name, raw, sf.CreatedAt,
	).Scan(&sf.ID)
	if err != nil {
		return nil, fmt.Errorf("overwriting saved filter: %w", err)
	}

	s.logger.Info("Overwrote saved filter", map[string]interface{}{"id": sf.ID, "owner": ownerID, "name": name})
	return sf, nil
}

func (s *SQLStore) Get(ctx context.Context, ownerID, name string) (*SavedFilter, error) {
	row := s.db.QueryRowContext(ctx,
		s.dialect.bind(`SELECT `+selectColumns+` FROM saved_filters WHERE owner_id = ? AND name = ?`),
		ownerID, name,
	)
	sf, err := scanSaved(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, ownerID, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading saved filter: %w", err)
	}
	return sf, nil
}

// List returns the owner's filters, newest first.
func (s *SQLStore) List(ctx context.Context, ownerID string) (list []SavedFilter, err error) {
	rows, err := s.db.QueryContext(ctx,
		s.dialect.bind(`SELECT `+selectColumns+` FROM saved_filters WHERE owner_id = ? ORDER BY created_at DESC, name ASC`),
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing saved filters: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	list = []SavedFilter{}
	for rows.Next() {
		sf, err := scanSaved(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning saved filter: %w", err)
		}
		list = append(list, *sf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating saved filters: %w", err)
	}
	return list, nil
}

// Delete removes the filter with id. A missing id is not an error.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if !s.dialect.acceptsID(id) {
		s.logger.Debug("Delete matched no saved filter", map[string]interface{}{"id": id})
		return nil
	}
	res, err := s.db.ExecContext(ctx, s.dialect.bind(`DELETE FROM saved_filters WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting saved filter: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.Debug("Delete matched no saved filter", map[string]interface{}{"id": id})
	}
	return nil
}

func (s *SQLStore) Exists(ctx context.Context, ownerID, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		s.dialect.bind(`SELECT EXISTS (SELECT 1 FROM saved_filters WHERE owner_id = ? AND name = ?)`),
		ownerID, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking saved filter name: %w", err)
	}
	return exists, nil
}

func (s *SQLStore) newRecord(ownerID, name string, state filter.State) (*SavedFilter, string, error) {
	state = state.Normalize()
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, "", fmt.Errorf("encoding filter state: %w", err)
	}
	return &SavedFilter{
		ID:        s.newID(),
		OwnerID:   ownerID,
		Name:      name,
		State:     state,
		CreatedAt: s.now().UTC(),
	}, string(raw), nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSaved(row scanner) (*SavedFilter, error) {
	var sf SavedFilter
	var raw []byte
	if err := row.Scan(&sf.ID, &sf.OwnerID, &sf.Name, &raw, &sf.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &sf.State); err != nil {
		return nil, fmt.Errorf("decoding filter state %s: %w", sf.ID, err)
	}
	return &sf, nil
}
