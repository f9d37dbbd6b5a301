package domain

import "encoding/json"

// ReplayCommand - команда, пришедшая извне, с моментом ее применения
type ReplayCommand struct {
	Time    float64         `json:"time"`
	Token   string          `json:"token"`
	Action  ActionType      `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// ReplaySession - запись боя: входные команды и поток событий
type ReplaySession struct {
	Seed      int64           `json:"seed"`
	Timestamp int64           `json:"timestamp"`
	Commands  []ReplayCommand `json:"commands"`
	Events    []Event         `json:"events"`
}

// Duration - время последнего записанного события или команды
func (r *ReplaySession) Duration() float64 {
	var d float64
	if n := len(r.Events); n > 0 {
		d = r.Events[n-1].Time
	}
	if n := len(r.Commands); n > 0 && r.Commands[n-1].Time > d {
		d = r.Commands[n-1].Time
	}
	return d
}
