package user

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestToModelNil(t *testing.T) {
	require.Nil(t, ToModel(nil))
	require.Nil(t, ToEntity(nil))
}

func TestToModelCopiesFieldsWithoutPassword(t *testing.T) {
	now := time.Now().UTC()
	e := &Entity{
		ID:          uuid.New(),
		Username:    "alice",
		Email:       "a@x.com",
		Password:    "hash",
		FirstName:   "Alice",
		LastName:    "Lee",
		PhoneNumber: "555-0100",
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m := ToModel(e)

	require.Equal(t, e.ID, m.ID)
	require.Equal(t, "alice", m.Username)
	require.Equal(t, "a@x.com", m.Email)
	require.Equal(t, "Alice", m.FirstName)
	require.Equal(t, "Lee", m.LastName)
	require.Equal(t, "555-0100", m.PhoneNumber)
	require.True(t, m.Active)
	require.Nil(t, m.Password)
	require.Equal(t, now, m.CreatedAt)
}

func TestToEntityLeavesIDUnset(t *testing.T) {
	e := ToEntity(&User{ID: uuid.New(), Username: "alice", Password: strPtr("secret"), Active: true})

	require.Equal(t, uuid.Nil, e.ID)
	require.Equal(t, "alice", e.Username)
	require.Equal(t, "secret", e.Password)
	require.True(t, e.Active)
}

func TestUpdateEntityPasswordIsConditional(t *testing.T) {
	e := &Entity{Username: "old", Password: "keep", FirstName: "Old"}

	UpdateEntity(e, &User{Username: "new"})
	require.Equal(t, "keep", e.Password)
	require.Equal(t, "new", e.Username)
	require.Empty(t, e.FirstName)

	UpdateEntity(e, &User{Username: "new", Password: strPtr("")})
	require.Equal(t, "keep", e.Password)

	UpdateEntity(e, &User{Username: "new", Password: strPtr("changed")})
	require.Equal(t, "changed", e.Password)
}

func TestUpdateEntityNilModelIsNoop(t *testing.T) {
	e := &Entity{Username: "alice", Active: true}

	UpdateEntity(e, nil)

	require.Equal(t, &Entity{Username: "alice", Active: true}, e)
}

func TestToModelsPreservesOrder(t *testing.T) {
	out := ToModels([]Entity{{Username: "b"}, {Username: "a"}})

	require.Len(t, out, 2)
	require.Equal(t, "b", out[0].Username)
	require.Equal(t, "a", out[1].Username)
	require.Empty(t, ToModels(nil))
}
