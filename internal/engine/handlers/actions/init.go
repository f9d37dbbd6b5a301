package actions

import "stratus-server/internal/engine/handlers"

// HandleInit просит отправить клиенту полный снимок боя
func HandleInit(_ handlers.Context) (handlers.Result, error) {
	return handlers.Result{Snapshot: true}, nil
}
