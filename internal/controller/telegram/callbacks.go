package telegram

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

func (c *Controller) handleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	c.logger.Info("Routing callback",
		zap.String("data", callback.Data),
		zap.Int64("telegram_id", callback.From.ID),
	)

	if callback.Data == noopData {
		c.answer(ctx, b, callback.ID, "", false)
		return
	}

	data, err := parseCallbackData(callback.Data)
	if err != nil {
		c.answer(ctx, b, callback.ID, errorText(model.WrapError(model.ErrCodeValidation, "unknown button", err)), true)
		return
	}

	var (
		answer string
		list   = data.Action
		page   = data.Page()
	)

	if data.Action.isDecision() {
		answer, err = c.decide(ctx, callback.From.ID, callback.Data)
		if err != nil {
			c.fail(ctx, b, callback, err)
			return
		}
		list, page = listOf(data.Action), 0
	}

	c.answer(ctx, b, callback.ID, answer, false)

	// Перерисовываем исходное сообщение: другая страница или список после решения
	text, kb, err := c.pageFor(ctx, callback.From.ID, list, page)
	if err != nil {
		c.logger.Warn("Failed to render page", zap.String("data", callback.Data), zap.Error(err))
		return
	}
	c.edit(ctx, b, callback, text, kb.Build())
}

func (c *Controller) fail(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, err error) {
	if model.CodeOf(err) == model.ErrCodeInternal {
		c.logger.Error("Callback failed", zap.String("data", callback.Data), zap.Error(err))
	}
	c.answer(ctx, b, callback.ID, errorText(err), true)
}

func (c *Controller) answer(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		c.logger.Error("Failed to answer callback", zap.Error(err))
	}
}

func (c *Controller) edit(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, text string, kb *models.InlineKeyboardMarkup) {
	msg := callback.Message.Message
	if msg == nil {
		return
	}

	params := &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      fitMessage(text),
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := b.EditMessageText(ctx, params); err != nil {
		c.logger.Warn("Failed to edit message", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

// listOf список, в котором стоит кнопка решения
func listOf(action callbackAction) callbackAction {
	switch action {
	case actionAcceptApplication, actionRejectApplication:
		return actionApplicationsPage
	default:
		return actionAppointmentsPage
	}
}

// pageFor страница списка для владельца Telegram аккаунта
func (c *Controller) pageFor(ctx context.Context, telegramID int64, list callbackAction, page int) (string, *keyboardBuilder, error) {
	user, err := c.linkedUser(ctx, telegramID)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, model.ErrUserNotFound
	}
	return c.render(ctx, user, list, page)
}

// decide выполняет действие кнопки от имени владельца Telegram аккаунта
func (c *Controller) decide(ctx context.Context, telegramID int64, raw string) (string, error) {
	data, err := parseCallbackData(raw)
	if err != nil || !data.Action.isDecision() {
		return "", model.WrapError(model.ErrCodeValidation, "unknown button", errInvalidCallback)
	}

	user, err := c.linkedUser(ctx, telegramID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", model.ErrUserNotFound
	}

	switch data.Action {
	case actionAcceptAppointment, actionRejectAppointment:
		status := model.AppointmentStatusAccepted
		if data.Action == actionRejectAppointment {
			status = model.AppointmentStatusRejected
		}
		appt, err := c.services.Appointments.SetStatus(ctx, user.ID, data.ID, status)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s Запись #%d: %s", appointmentStatusEmoji(appt.Status), appt.ID, appt.Status), nil

	default:
		decision := service.DecisionAccept
		if data.Action == actionRejectApplication {
			decision = service.DecisionReject
		}
		app, err := c.services.Applications.Decide(ctx, user.ID, data.ID, decision)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Заявка #%d: %s", app.ID, app.Status), nil
	}
}
