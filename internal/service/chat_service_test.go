package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"chat-panel-go/internal/config"
	"chat-panel-go/internal/model"
	"chat-panel-go/internal/session"
	"chat-panel-go/pkg/events"
	"chat-panel-go/pkg/gate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	text string
	ok   bool
}

func (s stubCompleter) Complete(context.Context, string) (string, bool) { return s.text, s.ok }

// blockingCompleter 在 release 关闭前一直阻塞。
type blockingCompleter struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingCompleter) Complete(context.Context, string) (string, bool) {
	close(b.entered)
	<-b.release
	return "done", true
}

type panickingCompleter struct{}

func (panickingCompleter) Complete(context.Context, string) (string, bool) { panic("boom") }

func newSession() *session.Session {
	return session.NewStore(gate.LocalFactory{}, 0).Create()
}

func assertIdle(t *testing.T, sess *session.Session) {
	t.Helper()
	state, err := sess.Gate.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gate.Idle, state)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewChatService(ChatOptions{Mode: config.ChatModeSimulate}, nil, n, nil)
	sess := newSession()

	_, err := svc.Submit(context.Background(), sess, "   ")
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Enter at least one word", verr.Fields[0].Message)

	_, err = svc.Submit(context.Background(), sess, strings.Repeat("a", 2001))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Message is too long (max 2000 characters)", verr.Fields[0].Message)

	assert.Equal(t, 0, sess.Conversation.Len())
	assert.Empty(t, n.notifications())
	assertIdle(t, sess)
}

func TestSubmitSimulateAlwaysFails(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewChatService(ChatOptions{Mode: config.ChatModeSimulate}, stubCompleter{text: "unused", ok: true}, n, nil)
	sess := newSession()

	res, err := svc.Submit(context.Background(), sess, "  Hello  ")
	require.NoError(t, err)
	assert.False(t, res.Busy)
	assert.True(t, res.InputReset)

	msgs := sess.Conversation.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "Hello", msgs[0].Content)
	assert.Equal(t, model.RoleError, msgs[1].Role)
	assert.Equal(t, ChatFailureMessage, msgs[1].Content)
	assert.Equal(t, msgs, res.Messages)

	notes := n.notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationError, notes[0].Kind)
	assert.Equal(t, ChatFailureToast, notes[0].Message)
	assert.Equal(t, []string{msgs[0].ID, msgs[1].ID}, n.scrolls)
	assertIdle(t, sess)
}

func TestSubmitSimulateWaitsForDelay(t *testing.T) {
	svc := NewChatService(ChatOptions{SimulatedDelay: 50 * time.Millisecond}, nil, &fakeNotifier{}, nil)
	start := time.Now()
	_, err := svc.Submit(context.Background(), newSession(), "Hello")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestSubmitAcceptsMaxLength(t *testing.T) {
	svc := NewChatService(ChatOptions{}, nil, &fakeNotifier{}, nil)
	sess := newSession()
	_, err := svc.Submit(context.Background(), sess, strings.Repeat("é", 2000))
	require.NoError(t, err)
	assert.Equal(t, 2, sess.Conversation.Len())
}

func TestSubmitBusyLeavesStateUntouched(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewChatService(ChatOptions{}, nil, n, nil)
	sess := newSession()

	ok, err := sess.Gate.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	res, err := svc.Submit(context.Background(), sess, "Hello")
	require.NoError(t, err)
	assert.True(t, res.Busy)
	assert.Equal(t, gate.BusyMessage, res.BusyMessage)
	assert.False(t, res.InputReset)
	assert.Equal(t, 0, sess.Conversation.Len())
	assert.Empty(t, n.notifications())
}

func TestSubmitLiveSuccess(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewChatService(ChatOptions{Mode: config.ChatModeLive}, stubCompleter{text: "Hi there", ok: true}, n, nil)
	sess := newSession()

	_, err := svc.Submit(context.Background(), sess, "Hello")
	require.NoError(t, err)
	last, ok := sess.Conversation.Last()
	require.True(t, ok)
	assert.Equal(t, model.RoleAssistant, last.Role)
	assert.Equal(t, "Hi there", last.Content)
	assert.Empty(t, n.notifications())
}

func TestSubmitLiveFallback(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewChatService(ChatOptions{Mode: config.ChatModeLive}, stubCompleter{text: "AI is unavailable.", ok: false}, n, nil)
	sess := newSession()

	_, err := svc.Submit(context.Background(), sess, "Hello")
	require.NoError(t, err)
	last, _ := sess.Conversation.Last()
	assert.Equal(t, model.RoleError, last.Role)
	assert.Equal(t, "AI is unavailable.", last.Content)
	require.Len(t, n.notifications(), 1)
	assertIdle(t, sess)
}

func TestSubmitOnlyOneInFlight(t *testing.T) {
	bc := &blockingCompleter{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewChatService(ChatOptions{Mode: config.ChatModeLive}, bc, &fakeNotifier{}, nil)
	sess := newSession()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Submit(context.Background(), sess, "first")
		assert.NoError(t, err)
	}()
	<-bc.entered

	res, err := svc.Submit(context.Background(), sess, "second")
	require.NoError(t, err)
	assert.True(t, res.Busy)

	close(bc.release)
	wg.Wait()

	msgs := sess.Conversation.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assertIdle(t, sess)
}

func TestSubmitReleasesGateOnPanic(t *testing.T) {
	svc := NewChatService(ChatOptions{Mode: config.ChatModeLive}, panickingCompleter{}, &fakeNotifier{}, nil)
	sess := newSession()
	assert.Panics(t, func() {
		_, _ = svc.Submit(context.Background(), sess, "Hello")
	})
	assertIdle(t, sess)
}

func TestSubmitPublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewChatService(ChatOptions{}, nil, &fakeNotifier{}, pub)
	sess := newSession()

	_, err := svc.Submit(context.Background(), sess, "Hello")
	require.NoError(t, err)
	require.Len(t, pub.events, 2)
	assert.Equal(t, events.MessageAppended, pub.events[0].Type)
	assert.Equal(t, sess.ID, pub.events[0].SessionID)
	assert.Equal(t, "user", pub.events[0].Role)
	assert.Equal(t, "error", pub.events[1].Role)

	NewConversationService(&fakeNotifier{}, pub).Clear(context.Background(), sess)
	require.Len(t, pub.events, 3)
	assert.Equal(t, events.ConversationCleared, pub.events[2].Type)
	assert.Equal(t, 0, sess.Conversation.Len())
}

func TestConversationServiceHistory(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewConversationService(notifier, nil)
	sess := newSession()
	sess.Conversation.Append(model.NewMessage(model.RoleUser, "What is the weather like today in Paris?"))
	sess.Conversation.Append(model.NewMessage(model.RoleError, "oops"))

	history := svc.GetHistory(sess)
	require.Len(t, history, 2)
	assert.Equal(t, "You: What is the weather ...", history[0].Text)
	assert.Equal(t, "AI: oops...", history[1].Text)
	assert.Len(t, svc.GetMessages(sess), 2)
	assert.Equal(t, 2, svc.Clear(context.Background(), sess))
	assert.Equal(t, []string{""}, notifier.scrolls)
	assert.Empty(t, svc.GetMessages(sess))
}

func TestSubmitCompletesAfterCallerCancels(t *testing.T) {
	svc := NewChatService(ChatOptions{SimulatedDelay: 20 * time.Millisecond}, nil, &fakeNotifier{}, nil)
	sess := newSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Submit(ctx, sess, "Hello")
	require.NoError(t, err)
	assert.Len(t, res.Messages, 2)
	assert.Equal(t, 2, sess.Conversation.Len())
	assertIdle(t, sess)
}
