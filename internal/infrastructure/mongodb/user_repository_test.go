package mongodb

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kidpech/user_service/internal/domain/user"
)

func TestBuildFilterEmptyMatchesAll(t *testing.T) {
	filter, err := buildFilter(nil)

	require.NoError(t, err)
	require.Equal(t, bson.D{}, filter)
}

func TestBuildFilterTranslatesCriteriaInOrder(t *testing.T) {
	active := false
	criteria := user.BuildCriteria(user.SearchFilter{
		Email:       "a.b+c@",
		PhoneNumber: "555",
		Active:      &active,
	})

	filter, err := buildFilter(criteria)

	require.NoError(t, err)
	require.Equal(t, bson.D{
		{Key: "email", Value: bson.M{"$regex": `a\.b\+c@`, "$options": "i"}},
		{Key: "phone_number", Value: bson.M{"$regex": "555"}},
		{Key: "active", Value: false},
	}, filter)
}

func TestBuildFilterRejectsUnknownField(t *testing.T) {
	_, err := buildFilter(user.Criteria{{Field: "password", Op: user.OpEquals, Value: "x"}})

	require.Error(t, err)
}

func TestDocumentKeepsEveryField(t *testing.T) {
	id, err := uuid.NewV7()
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Millisecond)
	e := &user.Entity{
		ID: id, Username: "alice", Email: "a@x.com", Password: "hash",
		FirstName: "Alice", LastName: "Lee", PhoneNumber: "555", Active: true,
		CreatedAt: now, UpdatedAt: now,
	}

	doc := toDoc(e)
	require.Equal(t, id.String(), doc.ID)
	back, err := doc.entity()

	require.NoError(t, err)
	require.Equal(t, *e, back)
}

func TestDocumentRejectsBadID(t *testing.T) {
	_, err := userDoc{ID: "not-a-uuid"}.entity()

	require.Error(t, err)
}

func TestMapWriteError(t *testing.T) {
	dup := func(index string) error {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{
			Code:    11000,
			Message: "E11000 duplicate key error collection: app.users index: " + index + " dup key",
		}}}
	}

	require.ErrorIs(t, mapWriteError(dup(usernameIndex)), user.ErrUsernameTaken)
	require.ErrorIs(t, mapWriteError(dup(emailIndex)), user.ErrEmailTaken)
	require.ErrorIs(t, mapWriteError(dup("other")), user.ErrConflict)

	err := mapWriteError(errors.New("socket closed"))
	require.False(t, errors.Is(err, user.ErrConflict))
}
