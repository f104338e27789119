package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Services сервисы, которые нужны боту
type Services struct {
	Users        *service.UserService
	Appointments *service.AppointmentService
	Availability *service.AvailabilityService
	Applications *service.ApplicationService
}

// Controller уведомления и решения по записям/заявкам через Telegram
type Controller struct {
	bot      *bot.Bot
	services Services
	logger   *zap.Logger
	now      func() time.Time
}

// New создаёт бота по токену и регистрирует обработчики
func New(token string, services Services, logger *zap.Logger) (*Controller, error) {
	c := newController(services, logger)

	b, err := bot.New(token, bot.WithDefaultHandler(c.handleDefault))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	c.bot = b

	c.registerHandlers()
	return c, nil
}

func newController(services Services, logger *zap.Logger) *Controller {
	return &Controller{
		services: services,
		logger:   logger,
		now:      time.Now,
	}
}

func (c *Controller) registerHandlers() {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handleStart)

	// Репетитор
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/appointments", bot.MatchTypeExact, c.handleList(actionAppointmentsPage))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/slots", bot.MatchTypeExact, c.handleList(actionSlotsPage))

	// Студент
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/applications", bot.MatchTypeExact, c.handleList(actionApplicationsPage))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/mybookings", bot.MatchTypeExact, c.handleList(actionBookingsPage))

	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.handleCallback)
}

// setCommands устанавливает меню команд
func (c *Controller) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу"},
		{Command: "appointments", Description: "📋 Записи на подтверждение (репетитор)"},
		{Command: "slots", Description: "🗓 Мои слоты (репетитор)"},
		{Command: "applications", Description: "📝 Заявки на мои задания"},
		{Command: "mybookings", Description: "📅 Мои записи"},
	}

	if _, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands}); err != nil {
		return fmt.Errorf("set bot commands: %w", err)
	}
	return nil
}

// Start блокирует до отмены ctx
func (c *Controller) Start(ctx context.Context) {
	if err := c.setCommands(ctx); err != nil {
		c.logger.Warn("Failed to set bot commands", zap.Error(err))
	}

	c.logger.Info("Starting telegram bot")
	c.bot.Start(ctx)
	c.logger.Info("Telegram bot stopped")
}

func (c *Controller) handleDefault(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	c.send(ctx, b, update.Message.Chat.ID, "Неизвестная команда. Используйте /start", nil)
}

// linkedUser профиль по Telegram ID; nil, если аккаунт не привязан
func (c *Controller) linkedUser(ctx context.Context, telegramID int64) (*model.User, error) {
	return c.services.Users.GetByTelegramID(ctx, telegramID)
}

// requireUser отвечает пользователю сам, если профиль не найден
func (c *Controller) requireUser(ctx context.Context, b *bot.Bot, msg *models.Message) (*model.User, bool) {
	if msg.From == nil {
		return nil, false
	}

	user, err := c.linkedUser(ctx, msg.From.ID)
	if err != nil {
		c.logger.Error("Failed to get user", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		c.send(ctx, b, msg.Chat.ID, errorText(err), nil)
		return nil, false
	}
	if user == nil {
		c.send(ctx, b, msg.Chat.ID, notLinkedText(msg.From.ID), nil)
		return nil, false
	}
	return user, true
}

func (c *Controller) send(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fitMessage(text),
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		c.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func notLinkedText(telegramID int64) string {
	return fmt.Sprintf(
		"👋 Telegram ещё не привязан к профилю.\n\n"+
			"Ваш Telegram ID: %d\n"+
			"Привяжите его через POST /users/me/telegram и повторите /start",
		telegramID,
	)
}

func welcomeText(user *model.User) string {
	if user.IsTutor() {
		return fmt.Sprintf(
			"👋 Привет, %s!\n\n"+
				"/appointments - Записи на подтверждение\n"+
				"/slots - Предстоящие слоты",
			user.DisplayName(),
		)
	}
	return fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"/applications - Заявки репетиторов на ваши задания\n"+
			"/mybookings - Мои записи",
		user.DisplayName(),
	)
}
