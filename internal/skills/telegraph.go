package skills

import (
	"fmt"
	"strings"

	"stratus-server/internal/combat"
	"stratus-server/internal/domain"
)

// Shape - форма области телеграфа
type Shape uint8

const (
	ShapeCircle Shape = iota
	ShapeCone
)

func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(s) {
	case "circle":
		return ShapeCircle, nil
	case "cone":
		return ShapeCone, nil
	}
	return ShapeCircle, fmt.Errorf("%w: telegraph shape %q", ErrInvalidSkill, s)
}

func (s Shape) String() string {
	if s == ShapeCone {
		return "cone"
	}
	return "circle"
}

func (s Shape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Shape) UnmarshalText(b []byte) error {
	v, err := ParseShape(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Telegraph - область, которую навык показывает перед срабатыванием.
//
// Круг строится вокруг цели (или заклинателя, если цели нет).
// Конус выходит из заклинателя в сторону цели, Angle - полный угол раствора
// в градусах. Без цели конус смотрит вдоль оси X.
type Telegraph struct {
	Shape  Shape   `json:"shape" yaml:"shape"`
	Radius float64 `json:"radius" yaml:"radius"`
	Angle  float64 `json:"angle,omitempty" yaml:"angle,omitempty"`
}

func (t *Telegraph) Contains(user, target *combat.Controller, point domain.Vector3) bool {
	switch t.Shape {
	case ShapeCone:
		offset := point.Sub(user.Position)
		if offset.Length() > t.Radius {
			return false
		}
		if offset.IsZero() {
			return true
		}
		facing := domain.Vec3(1, 0, 0)
		if target != nil && target != user {
			if dir := target.Position.Sub(user.Position); !dir.IsZero() {
				facing = dir
			}
		}
		return facing.AngleTo(offset) <= t.Angle/2
	default:
		center := user.Position
		if target != nil {
			center = target.Position
		}
		return point.Distance(center) <= t.Radius
	}
}

// FindTargetsWithinBoundary оставляет кандидатов внутри области
func (t *Telegraph) FindTargetsWithinBoundary(user, target *combat.Controller, candidates []*combat.Controller) []*combat.Controller {
	var out []*combat.Controller
	for _, c := range candidates {
		if t.Contains(user, target, c.Position) {
			out = append(out, c)
		}
	}
	return out
}
