package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeValid(t *testing.T) {
	for _, typ := range []Type{TypeWorkout, TypeNutrition, TypeCoach, TypeReminder, TypeAchievement, TypeMessage, TypeSystem} {
		assert.True(t, typ.Valid(), string(typ))
	}
	assert.False(t, Type("promo").Valid())
	assert.False(t, Type("").Valid())
}

func TestPriorityValid(t *testing.T) {
	assert.True(t, PriorityLow.Valid())
	assert.True(t, PriorityNormal.Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("urgent").Valid())
}

func TestUnreadCount(t *testing.T) {
	assert.Equal(t, 0, UnreadCount(nil))

	items := []*Notification{
		{ID: "a", IsRead: false},
		{ID: "b", IsRead: true},
		{ID: "c", IsRead: false},
	}
	assert.Equal(t, 2, UnreadCount(items))

	items[0].IsRead = true
	items[2].IsRead = true
	assert.Equal(t, 0, UnreadCount(items))
}
