package telegram

import (
	"context"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

func (c *Controller) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user, ok := c.requireUser(ctx, b, update.Message)
	if !ok {
		return
	}
	c.send(ctx, b, update.Message.Chat.ID, welcomeText(user), nil)
}

// handleList команда списка показывает первую страницу
func (c *Controller) handleList(list callbackAction) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		user, ok := c.requireUser(ctx, b, update.Message)
		if !ok {
			return
		}

		text, kb, err := c.render(ctx, user, list, 0)
		if err != nil {
			if model.CodeOf(err) == model.ErrCodeInternal {
				c.logger.Error("Failed to render list",
					zap.String("list", string(list)),
					zap.Int64("user_id", user.ID),
					zap.Error(err),
				)
			}
			c.send(ctx, b, update.Message.Chat.ID, errorText(err), nil)
			return
		}

		c.send(ctx, b, update.Message.Chat.ID, text, kb.Build())
	}
}

// render строит страницу списка; список доступен только своей роли
func (c *Controller) render(ctx context.Context, user *model.User, list callbackAction, page int) (string, *keyboardBuilder, error) {
	switch list {
	case actionAppointmentsPage:
		if !user.IsTutor() {
			return "", nil, errWrongRole
		}
		appts, err := c.services.Appointments.ListForTutor(ctx, user.ID)
		if err != nil {
			return "", nil, err
		}
		text, kb := pendingAppointmentsView(appts, page)
		return text, kb, nil

	case actionSlotsPage:
		if !user.IsTutor() {
			return "", nil, errWrongRole
		}
		slots, err := c.services.Availability.ListForTutor(ctx, user.ID)
		if err != nil {
			return "", nil, err
		}
		text, kb := upcomingSlotsView(slots, c.now(), page)
		return text, kb, nil

	case actionApplicationsPage:
		if user.Role != model.RoleStudent {
			return "", nil, errWrongRole
		}
		apps, err := c.services.Applications.ListPendingForOwner(ctx, user.ID)
		if err != nil {
			return "", nil, err
		}
		text, kb := pendingApplicationsView(apps, page)
		return text, kb, nil

	case actionBookingsPage:
		if user.Role != model.RoleStudent {
			return "", nil, errWrongRole
		}
		appts, err := c.services.Appointments.ListForStudent(ctx, user.ID)
		if err != nil {
			return "", nil, err
		}
		text, kb := studentBookingsView(appts, page)
		return text, kb, nil
	}

	return "", nil, model.NewError(model.ErrCodeValidation, "unknown list")
}

var errWrongRole = model.NewError(model.ErrCodePermissionDenied, "command is not available for this role")
