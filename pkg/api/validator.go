package api

import (
	"errors"
	"math"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

var errTargetRequired = errors.New("targetId is required")

func validAmount(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (p EntityPayload) Validate() error {
	if p.TargetID == "" {
		return errTargetRequired
	}
	return nil
}

func (p DamagePayload) Validate() error {
	if p.TargetID == "" {
		return errTargetRequired
	}
	if !validAmount(p.Value) {
		return errors.New("damage value must be a non-negative number")
	}
	return nil
}

func (p HealPayload) Validate() error {
	if p.TargetID == "" {
		return errTargetRequired
	}
	if !validAmount(p.Value) {
		return errors.New("heal value must be a non-negative number")
	}
	return nil
}

func (p StatePayload) Validate() error {
	if p.TargetID == "" {
		return errTargetRequired
	}
	switch p.State {
	case "idle", "active", "inactive", "IDLE", "ACTIVE", "INACTIVE":
		return nil
	}
	return errors.New("state must be idle, active or inactive")
}

func (p InvulnerablePayload) Validate() error {
	if p.TargetID == "" {
		return errTargetRequired
	}
	return nil
}

func (p InterruptPayload) Validate() error {
	if p.TargetID == "" {
		return errTargetRequired
	}
	if !validAmount(p.Duration) {
		return errors.New("duration must be a non-negative number")
	}
	return nil
}

func (p CastPayload) Validate() error {
	if p.Skill == "" {
		return errors.New("skill is required")
	}
	if t := p.Telegraph; t != nil {
		if t.Shape != "circle" && t.Shape != "cone" {
			return errors.New("telegraph shape must be circle or cone")
		}
		if t.Radius <= 0 || !validAmount(t.Radius) {
			return errors.New("telegraph radius must be positive")
		}
		if t.Angle < 0 || t.Angle > 360 {
			return errors.New("telegraph angle must be within [0, 360]")
		}
	}
	return nil
}
