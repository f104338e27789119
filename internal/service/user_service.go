package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
)

// UserService ведёт профили пользователей и привязку Telegram
type UserService struct {
	store    repository.Store
	geocoder Geocoder // может быть nil
	logger   *zap.Logger
}

func NewUserService(store repository.Store, geocoder Geocoder, logger *zap.Logger) *UserService {
	return &UserService{
		store:    store,
		geocoder: geocoder,
		logger:   logger,
	}
}

// GetByID получает профиль; NotFound, если его нет
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// GetTutor получает профиль репетитора; студент для этого запроса не найден
func (s *UserService) GetTutor(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tutor: %w", err)
	}
	if user == nil || !user.IsTutor() {
		return nil, model.ErrTutorNotFound
	}
	return user, nil
}

// SearchTutors ищет репетиторов в прямоугольнике карты
func (s *UserService) SearchTutors(ctx context.Context, filter repository.TutorFilter) ([]*model.User, error) {
	if err := validateBounds(filter.Bounds); err != nil {
		return nil, err
	}

	filter.Subject = strings.TrimSpace(filter.Subject)

	tutors, err := s.store.Users().SearchTutors(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search tutors: %w", err)
	}
	return tutors, nil
}

// UpdateProfile частично обновляет профиль; править можно только свой.
// При смене адреса координаты берутся из геокодера, его ошибка оставляет старые.
func (s *UserService) UpdateProfile(ctx context.Context, callerID, userID int64, upd model.ProfileUpdate) (*model.User, error) {
	if callerID != userID {
		return nil, model.ErrNotProfileOwner
	}
	if upd.HourlyRate != nil {
		if err := model.ValidateMoney("hourly_rate", *upd.HourlyRate); err != nil {
			return nil, err
		}
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Apply(user) {
		s.geocode(ctx, user)
	}

	if err := s.store.Users().UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("Profile updated", zap.Int64("user_id", userID))

	return user, nil
}

func (s *UserService) geocode(ctx context.Context, user *model.User) {
	if s.geocoder == nil || user.Address == "" {
		return
	}

	lat, lng, err := s.geocoder.Geocode(ctx, user.Address)
	if err != nil {
		s.logger.Warn("Geocoding failed",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return
	}

	user.Lat, user.Lng = lat, lng
}

// GetByTelegramID возвращает nil, nil для непривязанного аккаунта
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.store.Users().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return user, nil
}

// LinkTelegram привязывает Telegram аккаунт к профилю
func (s *UserService) LinkTelegram(ctx context.Context, userID, telegramID int64) (*model.User, error) {
	if telegramID <= 0 {
		return nil, model.NewError(model.ErrCodeValidation, "telegram_id must be positive")
	}

	var user *model.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		existing, err := uow.Users().GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if existing == nil {
			return model.ErrUserNotFound
		}

		if err := uow.Users().LinkTelegram(ctx, userID, telegramID); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return model.NewError(model.ErrCodeConflict, "telegram account is linked to another user")
			}
			return fmt.Errorf("link telegram: %w", err)
		}

		existing.TelegramID = &telegramID
		user = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Telegram linked",
		zap.Int64("user_id", userID),
		zap.Int64("telegram_id", telegramID),
	)

	return user, nil
}
