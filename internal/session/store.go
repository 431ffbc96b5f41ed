package session

import "context"

// Store persists the single user record under a fixed key: written on
// login, read at startup, deleted on logout. No expiry, no refresh.
// Injected into the view layer rather than accessed as a global.
type Store interface {
	Save(ctx context.Context, u User) error
	Load(ctx context.Context) (User, error)
	Delete(ctx context.Context) error
	Close() error
}

// sessionKey matches the storage key the original client used in the
// browser's local storage.
const sessionKey = "expense_app_user"
