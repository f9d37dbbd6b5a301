package domain

import (
	"fmt"
	"math"
)

// Vector3 - позиция / направление в мире арены
type Vector3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func Vec3(x, y, z float64) Vector3 { return Vector3{X: x, Y: y, Z: z} }

func (v Vector3) Add(o Vector3) Vector3      { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector3) Sub(o Vector3) Vector3      { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vector3) Scale(k float64) Vector3    { return Vector3{v.X * k, v.Y * k, v.Z * k} }
func (v Vector3) Dot(o Vector3) float64      { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vector3) Length() float64            { return math.Sqrt(v.Dot(v)) }
func (v Vector3) Distance(o Vector3) float64 { return v.Sub(o).Length() }
func (v Vector3) IsZero() bool               { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Normalized возвращает единичный вектор. Нулевой вектор остается нулевым.
func (v Vector3) Normalized() Vector3 {
	l := v.Length()
	if l == 0 {
		return Vector3{}
	}
	return v.Scale(1 / l)
}

// MoveTowards сдвигает v к target не дальше чем на maxDelta
func (v Vector3) MoveTowards(target Vector3, maxDelta float64) Vector3 {
	diff := target.Sub(v)
	dist := diff.Length()
	if dist <= maxDelta || dist == 0 {
		return target
	}
	return v.Add(diff.Scale(maxDelta / dist))
}

// AngleTo - угол между векторами в градусах
func (v Vector3) AngleTo(o Vector3) float64 {
	a, b := v.Length(), o.Length()
	if a == 0 || b == 0 {
		return 0
	}
	cos := v.Dot(o) / (a * b)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}
