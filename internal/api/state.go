package telegram

import "oring-bot/internal/domain/entity"

// commandStates шаги диалога, на которых доступна команда разметки.
// Команды вне таблицы доступны всегда.
var commandStates = map[string][]entity.UserState{
	"point":          {entity.StatePerimeter, entity.StateTracing},
	"delpoint":       {entity.StatePerimeter, entity.StateTracing},
	"perimeter":      {entity.StatePerimeter, entity.StateTracing},
	"clearperimeter": {entity.StatePerimeter, entity.StateTracing},
	"eps":            {entity.StatePerimeter, entity.StateTracing},
	"rate":           {entity.StatePerimeter, entity.StateTracing},
	"crack":          {entity.StateTracing},
	"delcrack":       {entity.StateTracing},
	"done":           {entity.StateTracing},
}

func commandAllowed(command string, state entity.UserState) bool {
	states, ok := commandStates[command]
	if !ok {
		return true
	}
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

// stateHint подсказка, что сделать на текущем шаге
func stateHint(state entity.UserState) string {
	switch state {
	case entity.StateAwaitingPhoto:
		return "📸 Сначала отправьте фото уплотнения."
	case entity.StatePerimeter:
		return "⭕ Сначала постройте периметр: /point x,y ... и /perimeter."
	default:
		return "📸 Начните проверку: /check и фото уплотнения."
	}
}
