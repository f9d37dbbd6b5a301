package actions

import (
	"fmt"

	"stratus-server/internal/combat"
	"stratus-server/internal/engine/handlers"
	"stratus-server/pkg/api"
)

func HandleDamage(ctx handlers.Context, p api.DamagePayload) (handlers.Result, error) {
	target := findTarget(ctx, p.TargetID)
	if target == nil {
		return handlers.Fail("Цель не найдена.")
	}

	res := target.ApplyDamage(combat.Damage{Value: p.Value, Piercing: p.Piercing, Source: ctx.Actor})

	switch {
	case res.Ignored:
		return handlers.Result{Msg: fmt.Sprintf("%s уже выбыл из боя.", target.Name), MsgType: "INFO"}, nil
	case res.Blocked:
		return handlers.Result{Msg: fmt.Sprintf("%s блокирует урон.", target.Name), MsgType: "COMBAT"}, nil
	}

	msg := fmt.Sprintf("%s получает %.0f урона (%.0f%%).", target.Name, res.Damage, res.PercentLost)
	if res.Incapacitated {
		msg += fmt.Sprintf(" %s выбывает из боя!", target.Name)
	}
	return handlers.Result{Msg: msg, MsgType: "COMBAT"}, nil
}
