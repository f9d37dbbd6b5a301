package actions

import (
	"fmt"

	"stratus-server/internal/engine/handlers"
	"stratus-server/pkg/api"
)

// HandleTarget меняет цель актора. Пустой targetId сбрасывает цель.
func HandleTarget(ctx handlers.Context, p api.TargetPayload) (handlers.Result, error) {
	if ctx.Actor == nil {
		return handlers.Fail("Команда требует токен контроллера.")
	}
	if p.TargetID == "" {
		ctx.Actor.SetTarget(nil)
		return handlers.EmptyResult(), nil
	}
	target := findTarget(ctx, p.TargetID)
	if target == nil {
		return handlers.Fail("Цель не найдена.")
	}
	ctx.Actor.SetTarget(target)
	return handlers.Result{Msg: fmt.Sprintf("%s целится в %s.", ctx.Actor.Name, target.Name), MsgType: "INFO"}, nil
}
