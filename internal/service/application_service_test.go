package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

func TestApplicationService_Submit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.openTask(t)

	bid := decimal.NewNullDecimal(decimal.RequireFromString("30"))
	app, err := f.applications.Submit(ctx, tutorA, task.ID, "  hello  ", bid)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusPending, app.Status)
	assert.Equal(t, "hello", app.Message)
	assert.True(t, app.BidAmount.Decimal.Equal(decimal.NewFromInt(30)))

	_, err = f.applications.Submit(ctx, tutorA, task.ID, "again", decimal.NullDecimal{})
	requireCode(t, err, model.ErrCodeConflict)

	_, err = f.applications.Submit(ctx, tutorA, 9999, "", decimal.NullDecimal{})
	requireCode(t, err, model.ErrCodeNotFound)

	_, err = f.applications.Submit(ctx, studentID, task.ID, "", decimal.NullDecimal{})
	requireCode(t, err, model.ErrCodePermissionDenied)

	_, err = f.applications.Submit(ctx, tutorB, task.ID, "", decimal.NewNullDecimal(decimal.NewFromInt(-1)))
	requireCode(t, err, model.ErrCodeValidation)

	_, err = f.applications.Submit(ctx, tutorB, task.ID, "", decimal.NewNullDecimal(decimal.RequireFromString("30.001")))
	requireCode(t, err, model.ErrCodeValidation)

	_, err = f.applications.Submit(ctx, tutorB, task.ID, "", decimal.NewNullDecimal(decimal.RequireFromString("1e10")))
	requireCode(t, err, model.ErrCodeValidation)
}

func TestApplicationService_AcceptRejectsPendingSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.openTask(t)

	a := f.submit(t, task.ID, tutorA)
	b := f.submit(t, task.ID, tutorB)
	c := f.submit(t, task.ID, tutorC)

	// c уже отклонена до принятия
	_, err := f.applications.Decide(ctx, studentID, c.ID, DecisionReject)
	require.NoError(t, err)

	accepted, err := f.applications.Decide(ctx, studentID, a.ID, DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusAccepted, accepted.Status)

	stored, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, stored.Status)
	require.NotNil(t, stored.AcceptedTutorID)
	assert.Equal(t, tutorA, *stored.AcceptedTutorID)

	apps, err := f.applications.ListForTask(ctx, task.ID)
	require.NoError(t, err)
	statuses := map[int64]model.ApplicationStatus{}
	acceptedCount := 0
	for _, app := range apps {
		statuses[app.ID] = app.Status
		if app.Status == model.ApplicationStatusAccepted {
			acceptedCount++
		}
	}
	assert.Equal(t, 1, acceptedCount)
	assert.Equal(t, model.ApplicationStatusAccepted, statuses[a.ID])
	assert.Equal(t, model.ApplicationStatusRejected, statuses[b.ID])
	assert.Equal(t, model.ApplicationStatusRejected, statuses[c.ID])
}

func TestApplicationService_SecondDecisionConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.openTask(t)
	a := f.submit(t, task.ID, tutorA)
	b := f.submit(t, task.ID, tutorB)

	_, err := f.applications.Decide(ctx, studentID, a.ID, DecisionAccept)
	require.NoError(t, err)

	before, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)

	_, err = f.applications.Decide(ctx, studentID, a.ID, DecisionAccept)
	requireCode(t, err, model.ErrCodeConflict)

	// b уже отклонена автоматически
	_, err = f.applications.Decide(ctx, studentID, b.ID, DecisionAccept)
	requireCode(t, err, model.ErrCodeConflict)

	after, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, *before.AcceptedTutorID, *after.AcceptedTutorID)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestApplicationService_RejectLeavesTaskOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.openTask(t)
	a := f.submit(t, task.ID, tutorA)
	b := f.submit(t, task.ID, tutorB)

	rejected, err := f.applications.Decide(ctx, studentID, a.ID, DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusRejected, rejected.Status)

	stored, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusOpen, stored.Status)
	assert.Nil(t, stored.AcceptedTutorID)

	apps, err := f.applications.ListForTask(ctx, task.ID)
	require.NoError(t, err)
	for _, app := range apps {
		if app.ID == b.ID {
			assert.Equal(t, model.ApplicationStatusPending, app.Status)
		}
	}
}

func TestApplicationService_DecideGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.openTask(t)
	a := f.submit(t, task.ID, tutorA)

	_, err := f.applications.Decide(ctx, tutorB, a.ID, DecisionAccept)
	requireCode(t, err, model.ErrCodePermissionDenied)

	_, err = f.applications.Decide(ctx, studentID, a.ID, "maybe")
	requireCode(t, err, model.ErrCodeValidation)

	_, err = f.applications.Decide(ctx, studentID, 9999, DecisionAccept)
	requireCode(t, err, model.ErrCodeNotFound)
}

func TestApplicationService_AcceptOnStartedTaskRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.openTask(t)
	a := f.submit(t, task.ID, tutorA)
	tutor := tutorB

	_, err := f.tasks.UpdateStatus(ctx, studentID, task.ID, model.TaskStatusInProgress, &tutor)
	require.NoError(t, err)

	_, err = f.applications.Decide(ctx, studentID, a.ID, DecisionAccept)
	requireCode(t, err, model.ErrCodeInvalidState)

	// транзакция откатилась целиком
	apps, err := f.applications.ListForTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, model.ApplicationStatusPending, apps[0].Status)
}

func TestApplicationService_SubmitToStartedTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.openTask(t)
	a := f.submit(t, task.ID, tutorA)

	_, err := f.applications.Decide(ctx, studentID, a.ID, DecisionAccept)
	require.NoError(t, err)

	_, err = f.applications.Submit(ctx, tutorB, task.ID, "late", decimal.NullDecimal{})
	requireCode(t, err, model.ErrCodeInvalidState)
}

func TestApplicationService_Listings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Users().Create(ctx, &model.User{
		Email: "tutor@example.com", Role: model.RoleTutor, FirstName: "Ada", LastName: "Lovelace",
	}))
	tutor, err := f.store.Users().GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, tutor)

	task := f.openTask(t)
	f.submit(t, task.ID, tutor.ID)
	f.submit(t, task.ID, tutorB)

	forTask, err := f.applications.ListForTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, forTask, 2)
	assert.Equal(t, "Ada Lovelace", forTask[0].TutorName)
	assert.Empty(t, forTask[1].TutorName)

	byTutor, err := f.applications.ListByTutor(ctx, tutorB)
	require.NoError(t, err)
	require.Len(t, byTutor, 1)
	require.NotNil(t, byTutor[0].Task)
	assert.Equal(t, task.Title, byTutor[0].Task.Title)

	pending, err := f.applications.ListPendingForOwner(ctx, studentID)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestApplicationService_ConcurrentAcceptSingleWinner(t *testing.T) {
	f := newFixture(t)
	task := f.openTask(t)

	ids := []int64{
		f.submit(t, task.ID, tutorA).ID,
		f.submit(t, task.ID, tutorB).ID,
		f.submit(t, task.ID, tutorC).ID,
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		conflict int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.applications.Decide(context.Background(), studentID, id, DecisionAccept)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case model.IsCode(err, model.ErrCodeConflict):
				conflict++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, len(ids)-1, conflict)

	stored, err := f.tasks.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, stored.Status)
}
