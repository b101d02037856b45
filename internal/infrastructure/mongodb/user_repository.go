package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kidpech/user_service/internal/domain/user"
)

const (
	usersCollection = "users"

	usernameIndex = "uq_users_username"
	emailIndex    = "uq_users_email"
)

// userDoc is the stored document. The id is kept as the canonical uuid
// string so that sorting on _id follows v7 creation order.
type userDoc struct {
	ID          string    `bson:"_id"`
	Username    string    `bson:"username"`
	Email       string    `bson:"email"`
	Password    string    `bson:"password"`
	FirstName   string    `bson:"first_name"`
	LastName    string    `bson:"last_name"`
	PhoneNumber string    `bson:"phone_number"`
	Active      bool      `bson:"active"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toDoc(e *user.Entity) userDoc {
	return userDoc{
		ID:          e.ID.String(),
		Username:    e.Username,
		Email:       e.Email,
		Password:    e.Password,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		PhoneNumber: e.PhoneNumber,
		Active:      e.Active,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (d userDoc) entity() (user.Entity, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return user.Entity{}, fmt.Errorf("stored id %q: %w", d.ID, err)
	}
	return user.Entity{
		ID:          id,
		Username:    d.Username,
		Email:       d.Email,
		Password:    d.Password,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		PhoneNumber: d.PhoneNumber,
		Active:      d.Active,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

// UserRepository implements user.Repository over a Mongo collection.
type UserRepository struct {
	c *mongo.Collection
}

// NewUserRepository binds the repo to the users collection of db.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{c: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique indexes that back the uniqueness rules.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(usernameIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(emailIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "active", Value: 1}},
			Options: options.Index().SetName("idx_users_active"),
		},
	}
	if _, err := r.c.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	return nil
}

func (r *UserRepository) Save(ctx context.Context, e *user.Entity) (*user.Entity, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if e.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}
		e.ID = id
		e.CreatedAt = now
		e.UpdatedAt = now
		if _, err := r.c.InsertOne(ctx, toDoc(e)); err != nil {
			e.ID = uuid.Nil
			return nil, mapWriteError(err)
		}
		return e, nil
	}
	e.UpdatedAt = now
	doc := toDoc(e)
	_, err := r.c.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return e, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.Entity, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.Entity, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.Entity, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindAll(ctx context.Context) ([]user.Entity, error) {
	return r.FindAllMatching(ctx, nil)
}

func (r *UserRepository) FindAllMatching(ctx context.Context, criteria user.Criteria) ([]user.Entity, error) {
	filter, err := buildFilter(criteria)
	if err != nil {
		return nil, err
	}
	cur, err := r.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	out := make([]user.Entity, 0, len(docs))
	for _, d := range docs {
		e, err := d.entity()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*user.Entity, error) {
	var d userDoc
	if err := r.c.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	e, err := d.entity()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *UserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongo count: %w", err)
	}
	return n > 0, nil
}

// buildFilter turns criteria into an implicit $and over document fields.
func buildFilter(criteria user.Criteria) (bson.D, error) {
	filter := bson.D{}
	for _, cr := range criteria {
		key := string(cr.Field)
		switch cr.Field {
		case user.FieldUsername, user.FieldEmail, user.FieldFirstName,
			user.FieldLastName, user.FieldPhoneNumber, user.FieldActive:
		default:
			return nil, fmt.Errorf("unsupported search field %q", cr.Field)
		}
		switch cr.Op {
		case user.OpContainsFold:
			v, _ := cr.Value.(string)
			filter = append(filter, bson.E{Key: key, Value: bson.M{"$regex": regexp.QuoteMeta(v), "$options": "i"}})
		case user.OpContains:
			v, _ := cr.Value.(string)
			filter = append(filter, bson.E{Key: key, Value: bson.M{"$regex": regexp.QuoteMeta(v)}})
		case user.OpEquals:
			filter = append(filter, bson.E{Key: key, Value: cr.Value})
		default:
			return nil, fmt.Errorf("unsupported search op %s", cr.Op)
		}
	}
	return filter, nil
}

func mapWriteError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongo write: %w", err)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, usernameIndex):
		return user.ErrUsernameTaken
	case strings.Contains(msg, emailIndex):
		return user.ErrEmailTaken
	default:
		return user.ErrConflict
	}
}

var _ user.Repository = (*UserRepository)(nil)
