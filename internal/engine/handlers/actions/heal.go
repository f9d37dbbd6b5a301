package actions

import (
	"fmt"

	"stratus-server/internal/domain"
	"stratus-server/internal/engine/handlers"
	"stratus-server/pkg/api"
)

func HandleHeal(ctx handlers.Context, p api.HealPayload) (handlers.Result, error) {
	target := findTarget(ctx, p.TargetID)
	if target == nil {
		return handlers.Fail("Цель не найдена.")
	}
	if target.Is(domain.StateInactive) {
		return handlers.Fail(fmt.Sprintf("%s выбыл из боя, лечение невозможно.", target.Name))
	}
	healed := target.OnHeal(p.Value)
	return handlers.Result{
		Msg:     fmt.Sprintf("%s восстанавливает %.0f здоровья.", target.Name, healed),
		MsgType: "COMBAT",
	}, nil
}

// HandleRestore полностью восстанавливает контроллер (и оживляет)
func HandleRestore(ctx handlers.Context, p api.EntityPayload) (handlers.Result, error) {
	target := findTarget(ctx, p.TargetID)
	if target == nil {
		return handlers.Fail("Цель не найдена.")
	}
	target.Restore()
	return handlers.Result{Msg: fmt.Sprintf("%s полностью восстановлен.", target.Name), MsgType: "INFO"}, nil
}

func HandleRevive(ctx handlers.Context, p api.EntityPayload) (handlers.Result, error) {
	target := findTarget(ctx, p.TargetID)
	if target == nil {
		return handlers.Fail("Цель не найдена.")
	}
	if !target.Revive(0.5) {
		return handlers.Fail(fmt.Sprintf("%s не нуждается в оживлении.", target.Name))
	}
	return handlers.Result{Msg: fmt.Sprintf("%s возвращается в бой.", target.Name), MsgType: "INFO"}, nil
}
