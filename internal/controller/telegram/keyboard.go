package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// keyboardBuilder собирает inline клавиатуру по рядам
type keyboardBuilder struct {
	rows [][]models.InlineKeyboardButton
}

func newKeyboard() *keyboardBuilder {
	return &keyboardBuilder{rows: make([][]models.InlineKeyboardButton, 0)}
}

// Row добавляет ряд; пустые ряды пропускаются
func (k *keyboardBuilder) Row(buttons ...models.InlineKeyboardButton) *keyboardBuilder {
	if len(buttons) > 0 {
		k.rows = append(k.rows, buttons)
	}
	return k
}

func (k *keyboardBuilder) Len() int {
	return len(k.rows)
}

// Build возвращает nil для пустой клавиатуры, чтобы сообщение ушло без кнопок
func (k *keyboardBuilder) Build() *models.InlineKeyboardMarkup {
	if len(k.rows) == 0 {
		return nil
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: k.rows}
}

func button(text string, data callbackData) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: data.String(),
	}
}

// Pagination добавляет ряд ⬅️ / номер страницы / ➡️; одна страница - без ряда
func (k *keyboardBuilder) Pagination(action callbackAction, page, total int) *keyboardBuilder {
	if total <= 1 {
		return k
	}

	var row []models.InlineKeyboardButton
	if page > 0 {
		row = append(row, button("⬅️", callbackData{Action: action, ID: int64(page - 1)}))
	}
	row = append(row, models.InlineKeyboardButton{
		Text:         fmt.Sprintf("📄 %d/%d", page+1, total),
		CallbackData: noopData,
	})
	if page < total-1 {
		row = append(row, button("➡️", callbackData{Action: action, ID: int64(page + 1)}))
	}
	return k.Row(row...)
}
