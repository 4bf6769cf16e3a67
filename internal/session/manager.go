// Package session manages authenticated sessions. Sessions are public user
// projections persisted in the key-value store, so they survive process
// restarts; deleting one revokes the token that references it.
package session

import (
	"context"
	"errors"
	"fmt"

	"campus-market/internal/domain"
	"campus-market/internal/kvstore"
)

const keyPrefix = "session:"

type Manager struct {
	store kvstore.Store
}

func NewManager(store kvstore.Store) *Manager {
	return &Manager{store: store}
}

// Put persists the session under its id.
func (m *Manager) Put(ctx context.Context, sess *domain.Session) error {
	if err := m.store.Set(ctx, keyPrefix+sess.ID, sess); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get restores a session by id. Missing and corrupted records both come back
// as domain.ErrNotFound: either way there is no usable session.
func (m *Manager) Get(ctx context.Context, id string) (*domain.Session, error) {
	var sess domain.Session
	err := m.store.Get(ctx, keyPrefix+id, &sess)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrCorrupted) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// Delete clears a session; deleting an absent session is not an error.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, keyPrefix+id)
}

// RefreshUser updates the projection held by every live session of the given
// user, keeping session state consistent after profile updates.
func (m *Manager) RefreshUser(ctx context.Context, user *domain.User) error {
	keys, err := m.store.Keys(ctx, keyPrefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		var sess domain.Session
		if err := m.store.Get(ctx, key, &sess); err != nil {
			if errors.Is(err, domain.ErrCorrupted) {
				continue
			}
			return err
		}
		if sess.UserID != user.ID {
			continue
		}
		sess.Name = user.Name
		sess.Email = user.Email
		if err := m.store.Set(ctx, key, &sess); err != nil {
			return err
		}
	}
	return nil
}

// ActiveCount reports how many sessions are currently stored.
func (m *Manager) ActiveCount(ctx context.Context) (int, error) {
	keys, err := m.store.Keys(ctx, keyPrefix)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
