package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

// User профиль пользователя из внешнего хранилища профилей
type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	TelegramID *int64    `json:"telegram_id,omitempty"` // nil - Telegram не привязан
	CreatedAt  time.Time `json:"created_at"`
	Profile
}

// Profile публичная часть профиля, по ней ищут репетиторов
type Profile struct {
	Phone              string              `json:"phone_number"`
	Address            string              `json:"address"`
	Lat                float64             `json:"lat"`
	Lng                float64             `json:"lng"`
	Title              string              `json:"title"`
	Bio                string              `json:"bio"`
	Subjects           string              `json:"subjects"` // через запятую
	EducationLevel     string              `json:"education_level"`
	ExperienceDetails  string              `json:"experience_details"`
	AcceptsShortNotice bool                `json:"accepts_short_notice"`
	HourlyRate         decimal.NullDecimal `json:"hourly_rate"`
}

// ProfileUpdate частичное обновление: nil поле не меняется
type ProfileUpdate struct {
	FirstName          *string
	LastName           *string
	Phone              *string
	Address            *string
	Title              *string
	Bio                *string
	Subjects           *string
	EducationLevel     *string
	ExperienceDetails  *string
	AcceptsShortNotice *bool
	HourlyRate         *decimal.Decimal
}

// Apply переносит заданные поля в пользователя; true, если адрес изменился
func (p ProfileUpdate) Apply(u *User) bool {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	set(&u.FirstName, p.FirstName)
	set(&u.LastName, p.LastName)
	set(&u.Phone, p.Phone)
	set(&u.Title, p.Title)
	set(&u.Bio, p.Bio)
	set(&u.Subjects, p.Subjects)
	set(&u.EducationLevel, p.EducationLevel)
	set(&u.ExperienceDetails, p.ExperienceDetails)

	if p.AcceptsShortNotice != nil {
		u.AcceptsShortNotice = *p.AcceptsShortNotice
	}
	if p.HourlyRate != nil {
		u.HourlyRate = decimal.NewNullDecimal(*p.HourlyRate)
	}

	if p.Address == nil {
		return false
	}
	address := strings.TrimSpace(*p.Address)
	changed := address != u.Address
	u.Address = address
	return changed
}

// DisplayName returns "First Last", falling back to email
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func (u *User) IsTutor() bool {
	return u.Role == RoleTutor
}
