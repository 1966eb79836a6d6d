package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"foodagent/store"
)

// StoreKey is where the active organization profile is persisted.
const StoreKey = "organization-profile"

// Repository persists the single active organization profile.
type Repository struct {
	store store.Store
	now   func() time.Time
}

func NewRepository(s store.Store) *Repository {
	return &Repository{store: s, now: time.Now}
}

// Profile returns the stored profile, or nil when none has been saved yet.
func (r *Repository) Profile(ctx context.Context) (*OrganizationProfile, error) {
	p, err := store.GetJSON[*OrganizationProfile](ctx, r.store, StoreKey, nil)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// Save validates p, stamps its timestamps and ID and writes it back.
func (r *Repository) Save(ctx context.Context, p *OrganizationProfile) (*OrganizationProfile, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil profile", ErrInvalid)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	existing, err := r.Profile(ctx)
	if err != nil {
		return nil, err
	}

	saved := *p
	now := r.now().UTC()
	switch {
	case saved.ID != "":
	case existing != nil:
		saved.ID = existing.ID
	default:
		saved.ID = uuid.NewString()
	}
	if existing != nil && !existing.CreatedAt.IsZero() {
		saved.CreatedAt = existing.CreatedAt
	} else if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	if err := store.SetJSON(ctx, r.store, StoreKey, &saved); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return &saved, nil
}

// Delete removes the stored profile. Deleting an absent profile is not an error.
func (r *Repository) Delete(ctx context.Context) error {
	if err := r.store.Delete(ctx, StoreKey); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
