package domain

import (
	"fmt"
	"strings"
)

// Faction - боевая принадлежность (битовые флаги)
type Faction uint8

const (
	FactionPlayer Faction = 1 << iota
	FactionFriendly
	FactionNeutral
	FactionHostile

	FactionNone Faction = 0
	FactionAll          = FactionPlayer | FactionFriendly | FactionNeutral | FactionHostile
)

var factionOrder = []Faction{FactionPlayer, FactionFriendly, FactionNeutral, FactionHostile}

var factionToString = map[Faction]string{
	FactionPlayer:   "PLAYER",
	FactionFriendly: "FRIENDLY",
	FactionNeutral:  "NEUTRAL",
	FactionHostile:  "HOSTILE",
}

var factionStringToType = map[string]Faction{
	"PLAYER":   FactionPlayer,
	"FRIENDLY": FactionFriendly,
	"NEUTRAL":  FactionNeutral,
	"HOSTILE":  FactionHostile,
	"NONE":     FactionNone,
}

// ParseFaction понимает одиночные имена и объединения через "|": "PLAYER|HOSTILE"
func ParseFaction(s string) (Faction, error) {
	var f Faction
	for _, part := range strings.Split(strings.ToUpper(s), "|") {
		part = strings.TrimSpace(part)
		val, ok := factionStringToType[part]
		if !ok {
			return FactionNone, fmt.Errorf("unknown faction %q", part)
		}
		f |= val
	}
	return f, nil
}

// Has - пересекаются ли множества флагов
func (f Faction) Has(other Faction) bool { return f&other != 0 }

func (f Faction) String() string {
	if f == FactionNone {
		return "NONE"
	}
	var parts []string
	for _, flag := range factionOrder {
		if f&flag != 0 {
			parts = append(parts, factionToString[flag])
		}
	}
	return strings.Join(parts, "|")
}

func (f Faction) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Faction) UnmarshalText(text []byte) error {
	val, err := ParseFaction(string(text))
	if err != nil {
		return err
	}
	*f = val
	return nil
}

// TargetingParameter - запрашиваемое отношение к цели
type TargetingParameter uint8

const (
	TargetSelf TargetingParameter = iota
	TargetAlly
	TargetEnemy
)

var targetingToString = map[TargetingParameter]string{
	TargetSelf:  "SELF",
	TargetAlly:  "ALLY",
	TargetEnemy: "ENEMY",
}

var targetingStringToType = map[string]TargetingParameter{
	"SELF":  TargetSelf,
	"ALLY":  TargetAlly,
	"ENEMY": TargetEnemy,
}

func ParseTargetingParameter(s string) (TargetingParameter, error) {
	if val, ok := targetingStringToType[strings.ToUpper(s)]; ok {
		return val, nil
	}
	return TargetSelf, fmt.Errorf("unknown targeting parameter %q", s)
}

func (t TargetingParameter) String() string {
	if val, ok := targetingToString[t]; ok {
		return val
	}
	return "UNKNOWN"
}

func (t TargetingParameter) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TargetingParameter) UnmarshalText(text []byte) error {
	val, err := ParseTargetingParameter(string(text))
	if err != nil {
		return err
	}
	*t = val
	return nil
}

// Таблица отношений фракций. Neutral считает врагами и игроков, и враждебных.
var (
	allyFactions = map[Faction]Faction{
		FactionPlayer:   FactionPlayer,
		FactionHostile:  FactionHostile,
		FactionNeutral:  FactionPlayer | FactionHostile,
		FactionFriendly: FactionFriendly,
	}
	enemyFactions = map[Faction]Faction{
		FactionPlayer:   FactionHostile,
		FactionHostile:  FactionPlayer,
		FactionNeutral:  FactionPlayer | FactionHostile,
		FactionFriendly: FactionHostile,
	}
)

// TargetFactions возвращает множество фракций, которые faction считает
// союзниками или врагами. Для Self и составных фракций возвращает FactionNone.
func TargetFactions(faction Faction, param TargetingParameter) Faction {
	switch param {
	case TargetAlly:
		return allyFactions[faction]
	case TargetEnemy:
		return enemyFactions[faction]
	default:
		return FactionNone
	}
}
