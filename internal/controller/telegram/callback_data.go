package telegram

import (
	"errors"
	"strconv"
	"strings"
)

type callbackAction string

// Формат данных кнопки: action:id, для страниц action:номер (с нуля)
const (
	actionAcceptAppointment callbackAction = "appt_accept"
	actionRejectAppointment callbackAction = "appt_reject"
	actionAcceptApplication callbackAction = "app_accept"
	actionRejectApplication callbackAction = "app_reject"

	actionAppointmentsPage callbackAction = "appts_page"
	actionSlotsPage        callbackAction = "slots_page"
	actionApplicationsPage callbackAction = "apps_page"
	actionBookingsPage     callbackAction = "bookings_page"
)

// noopData кнопка-индикатор без действия
const noopData = "noop"

var errInvalidCallback = errors.New("invalid callback data")

func (a callbackAction) isPage() bool {
	switch a {
	case actionAppointmentsPage, actionSlotsPage, actionApplicationsPage, actionBookingsPage:
		return true
	}
	return false
}

func (a callbackAction) isDecision() bool {
	switch a {
	case actionAcceptAppointment, actionRejectAppointment, actionAcceptApplication, actionRejectApplication:
		return true
	}
	return false
}

type callbackData struct {
	Action callbackAction
	ID     int64
}

func (d callbackData) String() string {
	return string(d.Action) + ":" + strconv.FormatInt(d.ID, 10)
}

// Page номер страницы для действий листания
func (d callbackData) Page() int {
	return int(d.ID)
}

func parseCallbackData(data string) (callbackData, error) {
	raw, rawID, ok := strings.Cut(data, ":")
	if !ok {
		return callbackData{}, errInvalidCallback
	}

	action := callbackAction(raw)
	if !action.isPage() && !action.isDecision() {
		return callbackData{}, errInvalidCallback
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return callbackData{}, errInvalidCallback
	}
	if id <= 0 && !(action.isPage() && id == 0) {
		return callbackData{}, errInvalidCallback
	}

	return callbackData{Action: action, ID: id}, nil
}
