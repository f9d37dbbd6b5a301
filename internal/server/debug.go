package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"stratus-server/internal/engine"
	"stratus-server/pkg/logger"
)

// DebugHandler предоставляет доступ к внутреннему состоянию арены
type DebugHandler struct {
	Arena *engine.Arena
}

func NewDebugHandler(a *engine.Arena) *DebugHandler {
	return &DebugHandler{Arena: a}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/controllers", h.handleControllers)
	mux.HandleFunc("/debug/agents", h.handleAgents)
	mux.HandleFunc("/debug/queue", h.handleTurnQueue)
	mux.HandleFunc("/debug/events", h.handleEvents)
}

// /debug/controllers - снимки всех контроллеров (атрибуты с модификаторами, цель, действие)
func (h *DebugHandler) handleControllers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Arena.Controllers())
}

// /debug/agents - blackboard, WorldState и статус дерева каждого агента
func (h *DebugHandler) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Arena.Agents())
}

// /debug/queue - очередь решений.
// Внимание: это куча, порядок в слайсе не равен порядку извлечения.
func (h *DebugHandler) handleTurnQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Arena.Queue())
}

// /debug/events?n=50 - последние события боя
func (h *DebugHandler) handleEvents(w http.ResponseWriter, r *http.Request) {
	n := 0
	if s := r.URL.Query().Get("n"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "n must be an integer", http.StatusBadRequest)
			return
		}
		n = v
	}
	writeJSON(w, h.Arena.Events(n))
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локального debug-клиента)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.WithError(err).Warn("failed to encode debug response")
	}
}
