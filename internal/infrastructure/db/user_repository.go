package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/kidpech/user_service/internal/domain/user"
)

const userColumns = `id, username, email, password, first_name, last_name, phone_number, active, created_at, updated_at`

const (
	insertUser = `INSERT INTO users (id, username, email, password, first_name, last_name, phone_number, active, created_at, updated_at)
		VALUES (:id, :username, :email, :password, :first_name, :last_name, :phone_number, :active, :created_at, :updated_at)`
	updateUser = `UPDATE users SET username = :username, email = :email, password = :password, first_name = :first_name,
		last_name = :last_name, phone_number = :phone_number, active = :active, updated_at = :updated_at WHERE id = :id`
)

// likeEscape is the LIKE escape character; '!' needs no quoting in either
// postgres or mysql string literals.
const likeEscape = "!"

// searchColumns whitelists the columns a Criterion may address.
var searchColumns = map[user.Field]string{
	user.FieldUsername:    "username",
	user.FieldEmail:       "email",
	user.FieldFirstName:   "first_name",
	user.FieldLastName:    "last_name",
	user.FieldPhoneNumber: "phone_number",
	user.FieldActive:      "active",
}

// UserRepository implements user.Repository using sqlx. Lookups and listings
// go to the read handle; writes and the ExistsBy checks that guard them stay
// on the primary so replica lag cannot let a duplicate through.
type UserRepository struct {
	db   *sqlx.DB
	read *sqlx.DB
}

// NewUserRepository constructs the repo over the manager's handles. A nil
// Read falls back to Write.
func NewUserRepository(m *Manager) *UserRepository {
	read := m.Read
	if read == nil {
		read = m.Write
	}
	return &UserRepository{db: m.Write, read: read}
}

func (r *UserRepository) Save(ctx context.Context, u *user.Entity) (*user.Entity, error) {
	now := time.Now().UTC()
	if u.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}
		u.ID = id
		u.CreatedAt = now
		u.UpdatedAt = now
		if _, err := r.db.NamedExecContext(ctx, insertUser, u); err != nil {
			u.ID = uuid.Nil
			return nil, mapWriteError(err)
		}
		return u, nil
	}
	u.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, updateUser, u); err != nil {
		return nil, mapWriteError(err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.Entity, error) {
	return r.findOne(ctx, "id", id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.Entity, error) {
	return r.findOne(ctx, "username", username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.Entity, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepository) FindAll(ctx context.Context) ([]user.Entity, error) {
	return r.FindAllMatching(ctx, nil)
}

func (r *UserRepository) FindAllMatching(ctx context.Context, criteria user.Criteria) ([]user.Entity, error) {
	where, args, err := buildWhere(criteria)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + userColumns + " FROM users"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"
	var users []user.Entity
	if err := r.read.SelectContext(ctx, &users, r.read.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *UserRepository) findOne(ctx context.Context, column string, value interface{}) (*user.Entity, error) {
	var u user.Entity
	query := r.read.Rebind("SELECT " + userColumns + " FROM users WHERE " + column + " = ?")
	if err := r.read.GetContext(ctx, &u, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) exists(ctx context.Context, column, value string) (bool, error) {
	var exists bool
	query := r.db.Rebind("SELECT EXISTS (SELECT 1 FROM users WHERE " + column + " = ?)")
	if err := r.db.GetContext(ctx, &exists, query, value); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// buildWhere renders criteria as ANDed clauses with '?' placeholders, in
// criteria order.
func buildWhere(criteria user.Criteria) (string, []interface{}, error) {
	clauses := make([]string, 0, len(criteria))
	args := make([]interface{}, 0, len(criteria))
	for _, cr := range criteria {
		col, ok := searchColumns[cr.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported search field %q", cr.Field)
		}
		switch cr.Op {
		case user.OpContainsFold:
			v, _ := cr.Value.(string)
			clauses = append(clauses, "LOWER("+col+") LIKE ? ESCAPE '"+likeEscape+"'")
			args = append(args, containsPattern(strings.ToLower(v)))
		case user.OpContains:
			v, _ := cr.Value.(string)
			clauses = append(clauses, col+" LIKE ? ESCAPE '"+likeEscape+"'")
			args = append(args, containsPattern(v))
		case user.OpEquals:
			clauses = append(clauses, col+" = ?")
			args = append(args, cr.Value)
		default:
			return "", nil, fmt.Errorf("unsupported search op %s", cr.Op)
		}
	}
	return strings.Join(clauses, " AND "), args, nil
}

func containsPattern(v string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return "%" + r.Replace(v) + "%"
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return conflictFor(pgErr.ConstraintName)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return conflictFor(myErr.Message)
	}
	if isDuplicate(err) {
		return conflictFor(err.Error())
	}
	return fmt.Errorf("db error: %w", err)
}

func conflictFor(detail string) error {
	switch {
	case strings.Contains(detail, "uq_users_username"):
		return user.ErrUsernameTaken
	case strings.Contains(detail, "uq_users_email"):
		return user.ErrEmailTaken
	default:
		return user.ErrConflict
	}
}

func isDuplicate(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate") || strings.Contains(s, "unique")
}

var _ user.Repository = (*UserRepository)(nil)
