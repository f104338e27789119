package telegram

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/service"
)

const (
	dateTimeLayout = "02.01.2006 15:04"

	// Ограничения Telegram: 4096 символов текста, 100 кнопок на клавиатуре
	maxMessageRunes = 4096

	pageSize      = 10 // записи и заявки, по два ряда кнопок не больше 30 кнопок
	slotsPageSize = 20
	maxFieldRunes = 120 // тема, заголовок и комментарий в списке
)

func formatTimeRange(start, end time.Time) string {
	if start.Format("02.01.2006") == end.Format("02.01.2006") {
		return fmt.Sprintf("%s-%s", start.Format(dateTimeLayout), end.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", start.Format(dateTimeLayout), end.Format(dateTimeLayout))
}

// shorten обрезает строку до n символов
func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

// fitMessage гарантирует, что текст пройдёт лимит Telegram
func fitMessage(s string) string {
	return shorten(s, maxMessageRunes)
}

// paginate возвращает элементы страницы; номер страницы приводится к допустимому
func paginate[T any](items []T, page, size int) ([]T, int, int) {
	total := (len(items) + size - 1) / size
	if total == 0 {
		return nil, 0, 0
	}
	if page < 0 {
		page = 0
	}
	if page >= total {
		page = total - 1
	}

	from := page * size
	to := min(from+size, len(items))
	return items[from:to], page, total
}

func pageHeader(title string, count, page, total int) string {
	if total <= 1 {
		return fmt.Sprintf("%s (%d):\n\n", title, count)
	}
	return fmt.Sprintf("%s (%d), стр. %d/%d:\n\n", title, count, page+1, total)
}

func appointmentStatusEmoji(status model.AppointmentStatus) string {
	switch status {
	case model.AppointmentStatusAccepted:
		return "✅"
	case model.AppointmentStatusRejected:
		return "❌"
	default:
		return "⏳"
	}
}

func formatAppointment(appt *model.Appointment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Запись #%d\n", appointmentStatusEmoji(appt.Status), appt.ID)
	if appt.Slot != nil {
		fmt.Fprintf(&sb, "📚 %s\n🕐 %s\n",
			shorten(appt.Slot.Subject, maxFieldRunes),
			formatTimeRange(appt.Slot.StartTime, appt.Slot.EndTime))
	}
	if appt.Message != "" {
		fmt.Fprintf(&sb, "💬 %s\n", shorten(appt.Message, maxFieldRunes))
	}
	return sb.String()
}

// pendingAppointmentsView показывает только ожидающие решения записи
func pendingAppointmentsView(appts []*model.Appointment, page int) (string, *keyboardBuilder) {
	var pending []*model.Appointment
	for _, appt := range appts {
		if appt.Status == model.AppointmentStatusPending {
			pending = append(pending, appt)
		}
	}

	kb := newKeyboard()
	items, page, total := paginate(pending, page, pageSize)
	if total == 0 {
		return "📭 Нет записей, ожидающих подтверждения", kb
	}

	var sb strings.Builder
	sb.WriteString(pageHeader("📋 Записи на подтверждение", len(pending), page, total))
	for _, appt := range items {
		sb.WriteString(formatAppointment(appt))
		sb.WriteString("\n")
		kb.Row(
			button(fmt.Sprintf("✅ #%d", appt.ID), callbackData{Action: actionAcceptAppointment, ID: appt.ID}),
			button(fmt.Sprintf("❌ #%d", appt.ID), callbackData{Action: actionRejectAppointment, ID: appt.ID}),
		)
	}
	kb.Pagination(actionAppointmentsPage, page, total)

	return fitMessage(sb.String()), kb
}

// upcomingSlotsView слоты, которые ещё не начались
func upcomingSlotsView(slots []*model.AvailableSlot, now time.Time, page int) (string, *keyboardBuilder) {
	var upcoming []*model.AvailableSlot
	for _, slot := range slots {
		if slot.StartTime.After(now) {
			upcoming = append(upcoming, slot)
		}
	}

	kb := newKeyboard()
	items, page, total := paginate(upcoming, page, slotsPageSize)
	if total == 0 {
		return "📭 Нет предстоящих слотов", kb
	}

	var sb strings.Builder
	sb.WriteString(pageHeader("🗓 Предстоящие слоты", len(upcoming), page, total))
	for _, slot := range items {
		mark := "🟢"
		if slot.IsBooked {
			mark = "🔴"
		}
		fmt.Fprintf(&sb, "%s %s %s\n", mark,
			formatTimeRange(slot.StartTime, slot.EndTime),
			shorten(slot.Subject, maxFieldRunes))
	}
	kb.Pagination(actionSlotsPage, page, total)

	return fitMessage(sb.String()), kb
}

func formatApplication(app service.ApplicationWithTask) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📝 Заявка #%d", app.ID)
	if app.Task != nil {
		fmt.Fprintf(&sb, " на «%s»", shorten(app.Task.Title, maxFieldRunes))
	}
	sb.WriteString("\n")
	if app.BidAmount.Valid {
		fmt.Fprintf(&sb, "💰 Ставка: %s\n", app.BidAmount.Decimal.StringFixed(2))
	}
	if app.Message != "" {
		fmt.Fprintf(&sb, "💬 %s\n", shorten(app.Message, maxFieldRunes))
	}
	return sb.String()
}

func pendingApplicationsView(apps []service.ApplicationWithTask, page int) (string, *keyboardBuilder) {
	kb := newKeyboard()
	items, page, total := paginate(apps, page, pageSize)
	if total == 0 {
		return "📭 Нет новых заявок на ваши задания", kb
	}

	var sb strings.Builder
	sb.WriteString(pageHeader("📋 Заявки репетиторов", len(apps), page, total))
	for _, app := range items {
		sb.WriteString(formatApplication(app))
		sb.WriteString("\n")
		kb.Row(
			button(fmt.Sprintf("✅ #%d", app.ID), callbackData{Action: actionAcceptApplication, ID: app.ID}),
			button(fmt.Sprintf("❌ #%d", app.ID), callbackData{Action: actionRejectApplication, ID: app.ID}),
		)
	}
	kb.Pagination(actionApplicationsPage, page, total)

	return fitMessage(sb.String()), kb
}

func studentBookingsView(appts []*model.Appointment, page int) (string, *keyboardBuilder) {
	kb := newKeyboard()
	items, page, total := paginate(appts, page, pageSize)
	if total == 0 {
		return "📭 У вас пока нет записей", kb
	}

	var sb strings.Builder
	sb.WriteString(pageHeader("📅 Ваши записи", len(appts), page, total))
	for _, appt := range items {
		sb.WriteString(formatAppointment(appt))
		sb.WriteString("\n")
	}
	kb.Pagination(actionBookingsPage, page, total)

	return fitMessage(sb.String()), kb
}

// errorText сообщение для пользователя по коду ошибки
func errorText(err error) string {
	switch model.CodeOf(err) {
	case model.ErrCodeNotFound:
		return "❌ Не найдено"
	case model.ErrCodePermissionDenied:
		return "❌ Нет доступа"
	case model.ErrCodeConflict, model.ErrCodeInvalidState:
		return "⚠️ Уже обработано или изменено другим запросом"
	case model.ErrCodeValidation:
		return "❌ Неверные данные"
	default:
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}
