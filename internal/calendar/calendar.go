// Package calendar выгружает слоты репетитора в iCalendar.
package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

const productID = "-//tutor-market//availability//EN"

// SlotUID стабильный UID события для слота
func SlotUID(slotID int64) string {
	return fmt.Sprintf("slot-%d@tutor-market", slotID)
}

// Export собирает календарь из слотов. Занятые слоты идут как CONFIRMED,
// свободные как TENTATIVE.
func Export(slots []*model.AvailableSlot, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, slot := range slots {
		event := cal.AddEvent(SlotUID(slot.ID))
		event.SetDtStampTime(stamp.UTC())
		event.SetCreatedTime(slot.CreatedAt.UTC())
		event.SetStartAt(slot.StartTime.UTC())
		event.SetEndAt(slot.EndTime.UTC())

		if slot.IsBooked {
			event.SetSummary(summary(slot.Subject, "booked"))
			event.SetStatus(ics.ObjectStatusConfirmed)
		} else {
			event.SetSummary(summary(slot.Subject, "free"))
			event.SetStatus(ics.ObjectStatusTentative)
		}
	}

	return cal.Serialize()
}

func summary(subject, state string) string {
	if subject == "" {
		return "Lesson (" + state + ")"
	}
	return subject + " (" + state + ")"
}
