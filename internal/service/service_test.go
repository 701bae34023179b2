package service

import (
	"context"
	"sync"

	"chat-panel-go/internal/model"
	"chat-panel-go/pkg/events"
)

type fakeNotifier struct {
	mu      sync.Mutex
	notes   []model.Notification
	scrolls []string
}

func (f *fakeNotifier) Notify(_ string, kind model.NotificationKind, message string) model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := model.Notification{Kind: kind, Message: message}
	f.notes = append(f.notes, n)
	return n
}

func (f *fakeNotifier) ScrollTo(_ string, messageID string) {
	f.mu.Lock()
	f.scrolls = append(f.scrolls, messageID)
	f.mu.Unlock()
}

func (f *fakeNotifier) notifications() []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Notification(nil), f.notes...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ChatEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.ChatEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	return nil
}
