package actions

import (
	"stratus-server/internal/combat"
	"stratus-server/internal/engine/handlers"
)

// findTarget ищет контроллер по ID; nil, если его нет в бою
func findTarget(ctx handlers.Context, id string) *combat.Controller {
	if ctx.Finder == nil {
		return nil
	}
	c, ok := ctx.Finder.Get(id)
	if !ok {
		return nil
	}
	return c
}
