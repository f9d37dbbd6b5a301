package actions

import (
	"fmt"

	"stratus-server/internal/domain"
	"stratus-server/internal/engine/handlers"
	"stratus-server/pkg/api"
)

func HandleChangeState(ctx handlers.Context, p api.StatePayload) (handlers.Result, error) {
	target := findTarget(ctx, p.TargetID)
	if target == nil {
		return handlers.Fail("Цель не найдена.")
	}
	state, err := domain.ParseControllerState(p.State)
	if err != nil {
		return handlers.Result{}, err
	}
	target.ChangeState(state)
	return handlers.Result{Msg: fmt.Sprintf("%s -> %s.", target.Name, state), MsgType: "INFO"}, nil
}

func HandlePause(ctx handlers.Context, p api.EntityPayload) (handlers.Result, error) {
	target := findTarget(ctx, p.TargetID)
	if target == nil {
		return handlers.Fail("Цель не найдена.")
	}
	if !target.Pause() {
		return handlers.Fail(fmt.Sprintf("%s не может быть приостановлен.", target.Name))
	}
	return handlers.Result{Msg: fmt.Sprintf("%s приостановлен.", target.Name), MsgType: "INFO"}, nil
}

func HandleResume(ctx handlers.Context, p api.EntityPayload) (handlers.Result, error) {
	target := findTarget(ctx, p.TargetID)
	if target == nil {
		return handlers.Fail("Цель не найдена.")
	}
	if !target.Resume() {
		return handlers.Fail(fmt.Sprintf("%s не на паузе.", target.Name))
	}
	return handlers.Result{Msg: fmt.Sprintf("%s продолжает бой.", target.Name), MsgType: "INFO"}, nil
}

func HandleInvulnerable(ctx handlers.Context, p api.InvulnerablePayload) (handlers.Result, error) {
	target := findTarget(ctx, p.TargetID)
	if target == nil {
		return handlers.Fail("Цель не найдена.")
	}
	target.SetInvulnerable(p.Toggle)
	word := "теряет неуязвимость"
	if p.Toggle {
		word = "становится неуязвимым"
	}
	return handlers.Result{Msg: fmt.Sprintf("%s %s.", target.Name, word), MsgType: "COMBAT"}, nil
}

func HandleInterrupt(ctx handlers.Context, p api.InterruptPayload) (handlers.Result, error) {
	target := findTarget(ctx, p.TargetID)
	if target == nil {
		return handlers.Fail("Цель не найдена.")
	}
	if target.Is(domain.StateInactive) {
		return handlers.Fail(fmt.Sprintf("%s выбыл из боя.", target.Name))
	}
	target.Interrupt(p.Duration)
	return handlers.Result{Msg: fmt.Sprintf("%s оглушен на %.1f с.", target.Name, p.Duration), MsgType: "COMBAT"}, nil
}
