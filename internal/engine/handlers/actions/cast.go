package actions

import (
	"fmt"

	"stratus-server/internal/combat"
	"stratus-server/internal/engine/handlers"
	"stratus-server/internal/skills"
	"stratus-server/pkg/api"
)

// HandleCast ставит навык актора в очередь. Без targetId берется текущая цель.
func HandleCast(ctx handlers.Context, p api.CastPayload) (handlers.Result, error) {
	if ctx.Actor == nil || ctx.Skills == nil {
		return handlers.Fail("Команда требует токен контроллера.")
	}
	skill := ctx.Skills.Skill(p.Skill)
	if skill == nil {
		return handlers.Fail(fmt.Sprintf("Навык %q недоступен.", p.Skill))
	}

	var target *combat.Controller
	if p.TargetID != "" {
		if target = findTarget(ctx, p.TargetID); target == nil {
			return handlers.Fail("Цель не найдена.")
		}
	} else {
		target = ctx.Actor.Target()
	}

	var telegraph *skills.Telegraph
	if p.Telegraph != nil {
		shape, err := skills.ParseShape(p.Telegraph.Shape)
		if err != nil {
			return handlers.Result{}, err
		}
		telegraph = &skills.Telegraph{Shape: shape, Radius: p.Telegraph.Radius, Angle: p.Telegraph.Angle}
	}

	if _, err := skill.Activate(ctx.Actor, target, telegraph); err != nil {
		return handlers.Fail(fmt.Sprintf("%s не может применить %s: %v.", ctx.Actor.Name, skill.Name, err))
	}
	if target != nil {
		ctx.Actor.SetTarget(target)
	}
	return handlers.Result{Msg: fmt.Sprintf("%s готовит %s.", ctx.Actor.Name, skill.Name), MsgType: "COMBAT"}, nil
}
