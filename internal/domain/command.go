package domain

import "encoding/json"

// InternalCommand - команда для движка после разбора ClientCommand
type InternalCommand struct {
	Action  ActionType      // Число вместо строки
	Token   string          // ID контроллера, от имени которого команда
	Payload json.RawMessage // Сырые данные (парсятся хендлером)
}
