package booking

import (
	"testing"

	"estadia/src/models"
	"estadia/src/types"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		name    string
		from    types.ReserveStatus
		event   Event
		to      types.ReserveStatus
		wantErr bool
	}{
		{"confirmed reschedule", types.RESERVE_CONFIRMED, EventReschedule, types.RESERVE_CONFIRMED, false},
		{"confirmed pay", types.RESERVE_CONFIRMED, EventPay, types.RESERVE_PAID, false},
		{"confirmed cancel", types.RESERVE_CONFIRMED, EventCancel, types.RESERVE_CANCELED, false},
		{"paid cancel", types.RESERVE_PAID, EventCancel, types.RESERVE_CANCELED, false},
		{"paid reschedule", types.RESERVE_PAID, EventReschedule, types.RESERVE_PAID, true},
		{"paid pay", types.RESERVE_PAID, EventPay, types.RESERVE_PAID, true},
		{"canceled reschedule", types.RESERVE_CANCELED, EventReschedule, types.RESERVE_CANCELED, true},
		{"canceled pay", types.RESERVE_CANCELED, EventPay, types.RESERVE_CANCELED, true},
		{"canceled cancel", types.RESERVE_CANCELED, EventCancel, types.RESERVE_CANCELED, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := &models.Reserve{Status: c.from}
			err := Transition(r, c.event)
			if c.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.Nil(t, err)
			}
			assert.Equal(t, c.to, r.Status)
		})
	}
}

func TestTransitionUnknownEvent(t *testing.T) {
	r := &models.Reserve{Status: types.RESERVE_CONFIRMED}
	err := Transition(r, Event("sublet"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, types.RESERVE_CONFIRMED, r.Status)
}
