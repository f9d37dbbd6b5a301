package handlers

import (
	"encoding/json"

	"stratus-server/internal/combat"
	"stratus-server/internal/skills"
)

// ControllerFinder описывает любую структуру, которая может находить контроллер по ID.
// combat.System неявно реализует этот интерфейс.
type ControllerFinder interface {
	Get(id string) (*combat.Controller, bool)
}

// SkillFinder - навыки актора по имени (nil, если навыка нет)
type SkillFinder interface {
	Skill(name string) *skills.Skill
}

// Context передает хендлеру состояние боя.
// Хендлер мутирует контроллеры напрямую: он вызывается из горутины арены.
type Context struct {
	Finder ControllerFinder
	Skills SkillFinder        // Навыки актора (nil, если актора нет)
	Actor  *combat.Controller // Кто выполняет команду; nil для команд без токена
}

// Result - результат выполнения команды.
// Хендлер НЕ пишет в журнал арены напрямую, он возвращает данные.
type Result struct {
	Msg      string // Текст записи журнала
	MsgType  string // Тип записи (INFO, COMBAT, ERROR)
	Snapshot bool   // Клиенту нужно отправить полный снимок
}

// HandlerFunc - это контракт для любой команды (DAMAGE, CAST, etc).
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}

// Fail - мягкая ошибка команды: пишется в журнал, состояние не меняется
func Fail(msg string) (Result, error) {
	return Result{Msg: msg, MsgType: "ERROR"}, nil
}
