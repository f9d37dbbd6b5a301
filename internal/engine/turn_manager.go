package engine

import (
	"container/heap"

	"stratus-server/pkg/logger"
)

// TurnManager ведет очередь решений агентов: у кого раньше время
// следующего решения, тот думает первым.
type TurnManager struct {
	queue   TurnQueue
	itemMap map[string]*TurnItem
}

func NewTurnManager() *TurnManager {
	return &TurnManager{
		queue:   make(TurnQueue, 0),
		itemMap: make(map[string]*TurnItem),
	}
}

// Add регистрирует участника с первым решением в момент at
func (tm *TurnManager) Add(c *Combatant, at float64) {
	if _, ok := tm.itemMap[c.ID()]; ok {
		return
	}
	item := &TurnItem{Value: c, Priority: at}
	heap.Push(&tm.queue, item)
	tm.itemMap[c.ID()] = item

	logger.Log.WithField("controller_id", c.ID()).Debug("Combatant added to TurnManager")
}

// UpdatePriority переносит следующее решение участника на at
func (tm *TurnManager) UpdatePriority(id string, at float64) {
	if item, ok := tm.itemMap[id]; ok {
		tm.queue.Update(item, at)
	}
}

// PeekNext возвращает ближайший элемент, не удаляя его
func (tm *TurnManager) PeekNext() *TurnItem {
	if tm.queue.Len() == 0 {
		return nil
	}
	return tm.queue[0]
}

// Remove убирает участника из очереди
func (tm *TurnManager) Remove(id string) {
	if item, ok := tm.itemMap[id]; ok {
		heap.Remove(&tm.queue, item.Index)
		delete(tm.itemMap, id)
	}
}

func (tm *TurnManager) Len() int {
	return tm.queue.Len()
}

// DebugDump возвращает снимок очереди для отладки
func (tm *TurnManager) DebugDump() []map[string]interface{} {
	// Пустой слайс, а не nil: в JSON это "[]", а не "null"
	result := make([]map[string]interface{}, 0)

	for _, item := range tm.queue {
		result = append(result, map[string]interface{}{
			"id":       item.Value.ID(),
			"name":     item.Value.Controller.Name,
			"priority": item.Priority,
			"index":    item.Index,
		})
	}
	return result
}
