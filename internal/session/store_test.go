package session

import (
	"context"
	"testing"
	"time"

	"chat-panel-go/internal/model"
	"chat-panel-go/pkg/gate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStartsEmpty(t *testing.T) {
	s := NewStore(gate.LocalFactory{}, time.Minute)
	sess := s.Create()

	_, ok := sess.Identity()
	assert.False(t, ok)
	assert.Equal(t, 0, sess.Conversation.Len())
	state, err := sess.Gate.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gate.Idle, state)

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)
}

func TestSignIn(t *testing.T) {
	sess := NewStore(gate.LocalFactory{}, 0).Create()
	sess.SignIn(model.Identity{Email: "a@b.co", Username: "ann", Token: "reg-token-x"})
	id, ok := sess.Identity()
	require.True(t, ok)
	assert.Equal(t, "ann", id.Username)
}

func TestDeleteRunsHooks(t *testing.T) {
	s := NewStore(gate.LocalFactory{}, 0)
	var deleted []string
	s.OnDelete(func(id string) { deleted = append(deleted, id) })

	sess := s.Create()
	assert.True(t, s.Delete(sess.ID))
	assert.False(t, s.Delete(sess.ID))
	assert.Equal(t, []string{sess.ID}, deleted)

	_, err := s.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(gate.LocalFactory{}, 10*time.Minute)
	s.now = func() time.Time { return now }

	stale := s.Create()
	now = now.Add(5 * time.Minute)
	fresh := s.Create()
	now = now.Add(6 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	_, err := s.Get(stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSweepDisabledWithoutTTL(t *testing.T) {
	s := NewStore(gate.LocalFactory{}, 0)
	s.Create()
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 1, s.Len())
}
