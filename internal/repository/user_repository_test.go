package repository

import (
	"testing"
	"time"

	"chat-panel-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository(t *testing.T) {
	repo := NewAccountRepository()
	first := &model.Account{Email: " Ann@Example.com ", Username: "ann", CreatedAt: time.Unix(1, 0)}
	require.NoError(t, repo.Create(first))
	assert.Equal(t, "ann@example.com", first.Email)

	got, err := repo.FindByEmail("ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ann", got.Username)

	err = repo.Create(&model.Account{Email: "ann@example.com", Username: "other"})
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = repo.FindByEmail("bob@example.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	require.NoError(t, repo.Create(&model.Account{Email: "bob@example.com", Username: "bob", CreatedAt: time.Unix(2, 0)}))
	got, err = repo.FindByEmail("bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
}
