package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence boundary for users. Lookups return
// ErrUserNotFound when nothing matches. Implementations must reject a
// duplicate username or email with ErrUsernameTaken, ErrEmailTaken or
// ErrConflict even when the Service check was raced.
type Repository interface {
	// Save inserts e when its ID is uuid.Nil (assigning one) and updates it otherwise.
	Save(ctx context.Context, e *Entity) (*Entity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Entity, error)
	FindByUsername(ctx context.Context, username string) (*Entity, error)
	FindByEmail(ctx context.Context, email string) (*Entity, error)
	// FindAll returns every record in primary key order.
	FindAll(ctx context.Context) ([]Entity, error)
	FindAllMatching(ctx context.Context, criteria Criteria) ([]Entity, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// PasswordHasher turns a plaintext password into its stored form.
type PasswordHasher interface {
	Hash(password string) (string, error)
}
