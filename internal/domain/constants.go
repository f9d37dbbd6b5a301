package domain

// Ключи символов, которые пишут боевые задачи AI
const (
	SymbolHasTarget     = "hasTarget"
	SymbolTargetInRange = "targetInRange"
	SymbolLowHealth     = "lowHealth"
	SymbolCanCast       = "canCast"
	SymbolTargetDown    = "targetDown"
)

// Ключи локального blackboard агента
const (
	BoardTarget   = "target"
	BoardHealth   = "health"
	BoardStamina  = "stamina"
	BoardDistance = "distance"
	BoardState    = "state"
)

// InvulnerableDefense - модификатор защиты при неуязвимости.
// Конечное значение: события и снимки сериализуются в JSON.
const InvulnerableDefense = 1e9

// Ключи модификаторов атрибутов
const (
	ModifierInvulnerable = "invulnerable"
	ModifierArmor        = "armor"
)
