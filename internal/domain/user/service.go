package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sentinel errors for deterministic HTTP mapping. Both "taken" errors wrap
// ErrConflict.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrConflict      = errors.New("user already exists")
	ErrUsernameTaken = fmt.Errorf("username already exists: %w", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("email already exists: %w", ErrConflict)
)

// Service enforces the user record invariants on top of a Repository.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger *zap.Logger
}

// NewService wires a Service. A nil hasher stores passwords as given.
func NewService(repo Repository, hasher PasswordHasher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, hasher: hasher, logger: logger}
}

// CreateUser stores a new active user. Username is checked before email, so
// a request clashing on both reports ErrUsernameTaken.
func (s *Service) CreateUser(ctx context.Context, req *User) (*User, error) {
	if req == nil {
		return nil, errors.New("create user: nil request")
	}
	if err := s.ensureUsernameFree(ctx, req.Username); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	in, err := s.withHashedPassword(req)
	if err != nil {
		return nil, err
	}
	in.Active = true

	entity, err := s.repo.Save(ctx, ToEntity(in))
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.logger.Info("user created", zap.String("user_id", entity.ID.String()), zap.String("username", entity.Username))
	return ToModel(entity), nil
}

// UpdateUser overwrites the user identified by id with req. Uniqueness is only
// checked for values that actually change, and the stored password is kept
// unless req supplies a non-empty one.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *User) (*User, error) {
	if req == nil {
		return nil, errors.New("update user: nil request")
	}
	existing, err := s.getEntityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Username != req.Username {
		if err := s.ensureUsernameFree(ctx, req.Username); err != nil {
			return nil, err
		}
	}
	if existing.Email != req.Email {
		if err := s.ensureEmailFree(ctx, req.Email); err != nil {
			return nil, err
		}
	}

	in, err := s.withHashedPassword(req)
	if err != nil {
		return nil, err
	}
	UpdateEntity(existing, in)

	entity, err := s.repo.Save(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.logger.Info("user updated", zap.String("user_id", entity.ID.String()))
	return ToModel(entity), nil
}

// DeleteUser marks the user inactive. Deleting an inactive user succeeds.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	existing, err := s.getEntityByID(ctx, id)
	if err != nil {
		return err
	}
	existing.Active = false
	if _, err := s.repo.Save(ctx, existing); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	s.logger.Info("user deactivated", zap.String("user_id", id.String()))
	return nil
}

// GetUserByID returns the user, active or not.
func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	entity, err := s.getEntityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToModel(entity), nil
}

// GetUserByUsername returns the user holding username.
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	entity, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, lookupError(err, "username", username)
	}
	return ToModel(entity), nil
}

// GetUserByEmail returns the user holding email.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	entity, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, lookupError(err, "email", email)
	}
	return ToModel(entity), nil
}

// GetAllUsers lists every user including inactive ones.
func (s *Service) GetAllUsers(ctx context.Context) ([]User, error) {
	entities, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ToModels(entities), nil
}

// SearchUsers returns the users matching every present field of filter.
// An empty filter returns the same set as GetAllUsers.
func (s *Service) SearchUsers(ctx context.Context, filter SearchFilter) ([]User, error) {
	criteria := BuildCriteria(filter)
	for _, cr := range criteria {
		s.logger.Debug("search clause",
			zap.String("field", string(cr.Field)),
			zap.Stringer("op", cr.Op),
			zap.Any("value", cr.Value),
		)
	}
	entities, err := s.repo.FindAllMatching(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return ToModels(entities), nil
}

// ExistsByUsername reports whether any user, active or not, holds username.
func (s *Service) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

// ExistsByEmail reports whether any user, active or not, holds email.
func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (s *Service) ensureUsernameFree(ctx context.Context, username string) error {
	exists, err := s.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("username conflict", zap.String("username", username))
		return ErrUsernameTaken
	}
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	exists, err := s.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("email conflict", zap.String("email", email))
		return ErrEmailTaken
	}
	return nil
}

func (s *Service) getEntityByID(ctx context.Context, id uuid.UUID) (*Entity, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "id", id.String())
	}
	return entity, nil
}

// withHashedPassword returns a shallow copy of req whose password, when
// present, has been replaced by its hash.
func (s *Service) withHashedPassword(req *User) (*User, error) {
	out := *req
	if !hasPassword(req) || s.hasher == nil {
		return &out, nil
	}
	hash, err := s.hasher.Hash(*req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	out.Password = &hash
	return &out, nil
}

func lookupError(err error, key, value string) error {
	if errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("%w with %s: %s", ErrUserNotFound, key, value)
	}
	return fmt.Errorf("find user by %s: %w", key, err)
}
