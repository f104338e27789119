// Package schedule нарезает диапазон времени репетитора на слоты фиксированной длительности.
package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

const (
	// DefaultSlotDuration длительность слота по умолчанию
	DefaultSlotDuration = 15 * time.Minute
	// DefaultMaxRange самый длинный диапазон одного вызова генерации
	DefaultMaxRange = 28 * 24 * time.Hour
)

// Generator создаёт слоты одинаковой длительности
type Generator struct {
	step     time.Duration
	maxRange time.Duration
}

// NewGenerator создаёт генератор; step <= 0 заменяется на DefaultSlotDuration,
// maxRange <= 0 на DefaultMaxRange
func NewGenerator(step, maxRange time.Duration) *Generator {
	if step <= 0 {
		step = DefaultSlotDuration
	}
	if maxRange <= 0 {
		maxRange = DefaultMaxRange
	}
	return &Generator{step: step, maxRange: maxRange}
}

// Step возвращает длительность одного слота
func (g *Generator) Step() time.Duration {
	return g.step
}

// Generate покрывает [start, end) слотами длительностью step.
// Остаток короче одного шага отбрасывается. Пересечения с уже
// существующими слотами репетитора не проверяются.
func (g *Generator) Generate(tutorID int64, subject string, start, end time.Time) ([]*model.AvailableSlot, error) {
	if !start.Before(end) {
		return nil, model.NewError(model.ErrCodeValidation, "start time must be before end time")
	}
	if end.Sub(start) > g.maxRange {
		return nil, model.NewError(model.ErrCodeValidation,
			fmt.Sprintf("range must not exceed %s", g.maxRange))
	}

	batchID := uuid.New()
	slots := make([]*model.AvailableSlot, 0, int(end.Sub(start)/g.step))

	for current := start; !current.Add(g.step).After(end); current = current.Add(g.step) {
		slots = append(slots, &model.AvailableSlot{
			TutorID:   tutorID,
			Subject:   subject,
			StartTime: current,
			EndTime:   current.Add(g.step),
			BatchID:   batchID,
		})
	}

	return slots, nil
}
