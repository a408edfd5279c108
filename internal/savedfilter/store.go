// Package savedfilter persists named filter states per owner.
package savedfilter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"listing-search-workers/internal/search/filter"
)

var (
	ErrDuplicateName = errors.New("DUPLICATE_FILTER_NAME")
	ErrNotFound      = errors.New("SAVED_FILTER_NOT_FOUND")
	ErrInvalidName   = errors.New("INVALID_FILTER_NAME")
)

// DuplicateNameError is returned by Save when the owner already has a
// filter with the same name.
type DuplicateNameError struct {
	OwnerID string
	Name    string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("saved filter %q already exists for owner %s", e.Name, e.OwnerID)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

type SavedFilter struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"ownerId"`
	Name      string       `json:"name"`
	State     filter.State `json:"state"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Store keeps saved filters. Names are unique per owner and compared
// case-sensitively.
type Store interface {
	Save(ctx context.Context, ownerID, name string, state filter.State) (*SavedFilter, error)
	Overwrite(ctx context.Context, ownerID, name string, state filter.State) (*SavedFilter, error)
	Get(ctx context.Context, ownerID, name string) (*SavedFilter, error)
	List(ctx context.Context, ownerID string) ([]SavedFilter, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, ownerID, name string) (bool, error)
}

func checkKey(ownerID, name string) error {
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("%w: owner id is required", ErrInvalidName)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	return nil
}
