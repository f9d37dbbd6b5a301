package network

import (
	"encoding/json"
	"sync"

	"stratus-server/internal/domain"
	"stratus-server/pkg/api"
	"stratus-server/pkg/logger"
)

// Broadcaster занимается только рассылкой сообщений подписчикам
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: ID сессии -> Личный канал
	subscribers map[string]chan api.ServerResponse
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.ServerResponse),
	}
}

var _ domain.EventSink = (*Broadcaster)(nil)

// Register создает личный канал для сессии
func (b *Broadcaster) Register(id string) chan api.ServerResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[id]; ok {
		close(old)
	}

	ch := make(chan api.ServerResponse, 100)
	b.subscribers[id] = ch
	return ch
}

// Unregister удаляет подписчика
func (b *Broadcaster) Unregister(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

// SendTo отправляет сообщение конкретной сессии (Unicast)
func (b *Broadcaster) SendTo(id string, msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[id]; ok {
		b.send(id, ch, msg)
	}
}

// Broadcast отправляет всем подписчикам
func (b *Broadcaster) Broadcast(msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		b.send(id, ch, msg)
	}
}

// send не блокирует: медленный подписчик теряет сообщение
func (b *Broadcaster) send(id string, ch chan api.ServerResponse, msg api.ServerResponse) {
	select {
	case ch <- msg:
	default:
		logger.Log.WithField("session_id", id).Debug("Hub: channel full, message dropped")
	}
}

// Publish - Broadcaster является EventSink: каждое событие боя уходит всем
func (b *Broadcaster) Publish(e domain.Event) {
	b.Broadcast(EventMessage(e))
}

// HasSubscriber проверяет, подключена ли сессия
func (b *Broadcaster) HasSubscriber(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[id]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// EventMessage - событие боя в виде сообщения клиенту
func EventMessage(e domain.Event) api.ServerResponse {
	raw, err := json.Marshal(e)
	if err != nil {
		return api.ServerResponse{Type: api.MessageError, Time: e.Time, Error: err.Error()}
	}
	return api.ServerResponse{Type: api.MessageEvent, Time: e.Time, Event: raw}
}
