// Package memstore keeps user records in a hashicorp/go-memdb database. It
// backs DB_DRIVER=memory and is handy for demos and local runs.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"github.com/kidpech/user_service/internal/domain/user"
)

const (
	usersTable = "users"

	indexID       = "id"
	indexUsername = "username"
	indexEmail    = "email"
)

// row is the stored object. The indexed fields mirror Entity so memdb can
// reach them by reflection.
type row struct {
	ID       string
	Username string
	Email    string
	Entity   user.Entity
}

func newRow(e *user.Entity) *row {
	return &row{ID: e.ID.String(), Username: e.Username, Email: e.Email, Entity: *e}
}

func (r *row) entity() *user.Entity {
	e := r.Entity
	return &e
}

// Schema describes the users table. The id index is ordered by the raw uuid
// bytes, so iterating it yields v7 ids in creation order.
func Schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			usersTable: {
				Name: usersTable,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.UUIDFieldIndex{Field: "ID"},
					},
					indexUsername: {
						Name:         indexUsername,
						Unique:       true,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Username"},
					},
					indexEmail: {
						Name:         indexEmail,
						Unique:       true,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Email"},
					},
				},
			},
		},
	}
}

// UserRepository implements user.Repository on top of go-memdb.
type UserRepository struct {
	db *memdb.MemDB
}

// NewUserRepository creates an empty store.
func NewUserRepository() (*UserRepository, error) {
	db, err := memdb.NewMemDB(Schema())
	if err != nil {
		return nil, fmt.Errorf("memdb: %w", err)
	}
	return &UserRepository{db: db}, nil
}

// Save checks uniqueness and writes inside one write transaction, which memdb
// serializes, so concurrent saves cannot both claim a username or email.
func (r *UserRepository) Save(_ context.Context, e *user.Entity) (*user.Entity, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	now := time.Now().UTC()
	stored := *e
	if stored.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}
		stored.ID = id
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	if err := claimed(txn, indexUsername, stored.Username, stored.ID, user.ErrUsernameTaken); err != nil {
		return nil, err
	}
	if err := claimed(txn, indexEmail, stored.Email, stored.ID, user.ErrEmailTaken); err != nil {
		return nil, err
	}
	if err := txn.Insert(usersTable, newRow(&stored)); err != nil {
		return nil, fmt.Errorf("memdb insert: %w", err)
	}
	txn.Commit()

	*e = stored
	return e, nil
}

// claimed reports conflictErr when value is already held by a record other than id.
func claimed(txn *memdb.Txn, index, value string, id uuid.UUID, conflictErr error) error {
	if value == "" {
		return nil
	}
	raw, err := txn.First(usersTable, index, value)
	if err != nil {
		return fmt.Errorf("memdb lookup %s: %w", index, err)
	}
	if raw != nil && raw.(*row).Entity.ID != id {
		return conflictErr
	}
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*user.Entity, error) {
	return r.first(indexID, id.String())
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*user.Entity, error) {
	return r.first(indexUsername, username)
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*user.Entity, error) {
	return r.first(indexEmail, email)
}

func (r *UserRepository) FindAll(ctx context.Context) ([]user.Entity, error) {
	return r.FindAllMatching(ctx, nil)
}

func (r *UserRepository) FindAllMatching(_ context.Context, criteria user.Criteria) ([]user.Entity, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(usersTable, indexID)
	if err != nil {
		return nil, fmt.Errorf("memdb scan: %w", err)
	}
	out := []user.Entity{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		rec := obj.(*row)
		if criteria.Match(&rec.Entity) {
			out = append(out, rec.Entity)
		}
	}
	return out, nil
}

func (r *UserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	return r.exists(indexUsername, username)
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.exists(indexEmail, email)
}

func (r *UserRepository) first(index, value string) (*user.Entity, error) {
	if value == "" {
		return nil, user.ErrUserNotFound
	}
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(usersTable, index, value)
	if err != nil {
		return nil, fmt.Errorf("memdb lookup %s: %w", index, err)
	}
	if raw == nil {
		return nil, user.ErrUserNotFound
	}
	return raw.(*row).entity(), nil
}

func (r *UserRepository) exists(index, value string) (bool, error) {
	_, err := r.first(index, value)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, user.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Ping satisfies the readiness check; the store is always available.
func (r *UserRepository) Ping(context.Context) error {
	return nil
}

var _ user.Repository = (*UserRepository)(nil)
