package network

import (
	"encoding/json"
	"testing"

	"stratus-server/internal/domain"
	"stratus-server/pkg/api"
)

func TestBroadcaster_RegisterAndBroadcast(t *testing.T) {
	b := NewBroadcaster()
	a := b.Register("a")
	c := b.Register("c")

	b.Broadcast(api.ServerResponse{Type: api.MessageSnapshot})
	if msg := <-a; msg.Type != api.MessageSnapshot {
		t.Errorf("a got %s", msg.Type)
	}
	if msg := <-c; msg.Type != api.MessageSnapshot {
		t.Errorf("c got %s", msg.Type)
	}

	b.SendTo("a", api.ServerResponse{Type: api.MessageResult})
	if len(a) != 1 || len(c) != 0 {
		t.Errorf("Unicast leaked: a=%d c=%d", len(a), len(c))
	}

	b.Unregister("c")
	if _, ok := <-c; ok {
		t.Error("Unregister must close the channel")
	}
	if b.HasSubscriber("c") || b.SubscriberCount() != 1 {
		t.Error("c should be gone")
	}
}

func TestBroadcaster_ReRegisterClosesOld(t *testing.T) {
	b := NewBroadcaster()
	old := b.Register("a")
	b.Register("a")
	if _, ok := <-old; ok {
		t.Error("Old channel must be closed")
	}
	if b.SubscriberCount() != 1 {
		t.Errorf("SubscriberCount = %d", b.SubscriberCount())
	}
}

func TestBroadcaster_SlowSubscriberDrops(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Register("slow")
	for i := 0; i < cap(ch)+10; i++ {
		b.Broadcast(api.ServerResponse{Type: api.MessageEvent})
	}
	if len(ch) != cap(ch) {
		t.Errorf("Expected full channel, got %d/%d", len(ch), cap(ch))
	}
}

func TestBroadcaster_PublishEvent(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Register("viewer")

	b.Publish(domain.Event{Type: domain.EventDeath, Time: 2.5, Source: "ghoul"})

	msg := <-ch
	if msg.Type != api.MessageEvent || msg.Time != 2.5 {
		t.Fatalf("Unexpected message %+v", msg)
	}
	var e domain.Event
	if err := json.Unmarshal(msg.Event, &e); err != nil {
		t.Fatalf("Event payload: %v", err)
	}
	if e.Type != domain.EventDeath || e.Source != "ghoul" {
		t.Errorf("Decoded event = %+v", e)
	}
}
