package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
)

const userColumns = `id, email, role, first_name, last_name, telegram_id, created_at,
	phone_number, address, lat, lng, title, bio, subjects, education_level,
	experience_details, accepts_short_notice, hourly_rate`

type userRepository struct {
	base.Repository
	builder squirrel.StatementBuilderType
}

func newUserRepository(q base.Querier) *userRepository {
	return &userRepository{
		Repository: base.NewRepository(q),
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create создаёт нового пользователя
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (email, role, first_name, last_name, telegram_id,
		                   phone_number, address, lat, lng, title, bio, subjects,
		                   education_level, experience_details, accepts_short_notice, hourly_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		user.Email,
		user.Role,
		user.FirstName,
		user.LastName,
		user.TelegramID,
		user.Phone,
		user.Address,
		user.Lat,
		user.Lng,
		user.Title,
		user.Bio,
		user.Subjects,
		user.EducationLevel,
		user.ExperienceDetails,
		user.AcceptsShortNotice,
		base.ToNullNumeric(user.HourlyRate),
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(r.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := scanUser(r.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}

	return user, nil
}

// LinkTelegram привязывает Telegram аккаунт к пользователю
func (r *userRepository) LinkTelegram(ctx context.Context, userID, telegramID int64) error {
	affected, err := r.ExecAffected(ctx, `UPDATE users SET telegram_id = $1 WHERE id = $2`, telegramID, userID)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("link telegram: %w", ErrDuplicate)
		}
		return fmt.Errorf("link telegram: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// UpdateProfile сохраняет имя и поля профиля
func (r *userRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	query, args, err := r.builder.
		Update("users").
		SetMap(map[string]any{
			"first_name":           user.FirstName,
			"last_name":            user.LastName,
			"phone_number":         user.Phone,
			"address":              user.Address,
			"lat":                  user.Lat,
			"lng":                  user.Lng,
			"title":                user.Title,
			"bio":                  user.Bio,
			"subjects":             user.Subjects,
			"education_level":      user.EducationLevel,
			"experience_details":   user.ExperienceDetails,
			"accepts_short_notice": user.AcceptsShortNotice,
			"hourly_rate":          base.ToNullNumeric(user.HourlyRate),
		}).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update profile query: %w", err)
	}

	affected, err := r.ExecAffected(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// SearchTutors ищет репетиторов в прямоугольнике карты, опционально по предмету
func (r *userRepository) SearchTutors(ctx context.Context, filter TutorFilter) ([]*model.User, error) {
	b := r.builder.
		Select(userColumns).
		From("users").
		Where(squirrel.Eq{"role": model.RoleTutor}).
		Where(squirrel.LtOrEq{"lat": filter.Bounds.North}).
		Where(squirrel.GtOrEq{"lat": filter.Bounds.South}).
		Where(squirrel.LtOrEq{"lng": filter.Bounds.East}).
		Where(squirrel.GtOrEq{"lng": filter.Bounds.West}).
		OrderBy("id")

	if filter.Subject != "" {
		b = b.Where(squirrel.ILike{"subjects": base.ContainsPattern(filter.Subject)})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search tutors query: %w", err)
	}

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search tutors: %w", err)
	}
	defer rows.Close()

	var tutors []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		tutors = append(tutors, user)
	}

	return tutors, rows.Err()
}

// DisplayNames получает имена пользователей пачкой
func (r *userRepository) DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := r.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		names[user.ID] = user.DisplayName()
	}

	return names, rows.Err()
}

func scanUser(row base.Scanner) (*model.User, error) {
	var (
		user model.User
		rate pgtype.Numeric
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Role,
		&user.FirstName,
		&user.LastName,
		&user.TelegramID,
		&user.CreatedAt,
		&user.Phone,
		&user.Address,
		&user.Lat,
		&user.Lng,
		&user.Title,
		&user.Bio,
		&user.Subjects,
		&user.EducationLevel,
		&user.ExperienceDetails,
		&user.AcceptsShortNotice,
		&rate,
	)
	if err != nil {
		return nil, err
	}

	user.HourlyRate = base.FromNullNumeric(rate)
	return &user, nil
}
