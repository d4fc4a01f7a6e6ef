package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelMembers(t *testing.T) {
	webhook := map[string]interface{}{
		"channel": map[string]interface{}{
			"members": []interface{}{
				map[string]interface{}{"user_id": "coach1"},
				map[string]interface{}{"user_id": "client1"},
				map[string]interface{}{"role": "moderator"}, // no user_id
			},
		},
	}
	assert.Equal(t, []string{"coach1", "client1"}, channelMembers(webhook))

	assert.Nil(t, channelMembers(map[string]interface{}{}))
	assert.Nil(t, channelMembers(map[string]interface{}{"channel": map[string]interface{}{}}))
}

func TestSenderDisplayName(t *testing.T) {
	withName := map[string]interface{}{
		"user": map[string]interface{}{"name": "Coach Dana"},
	}
	assert.Equal(t, "Coach Dana", senderDisplayName(withName))

	assert.Equal(t, "Your coach", senderDisplayName(map[string]interface{}{}))
	assert.Equal(t, "Your coach", senderDisplayName(map[string]interface{}{
		"user": map[string]interface{}{"name": ""},
	}))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "Great session today!", preview("  Great session today!  "))

	long := strings.Repeat("x", 200)
	got := preview(long)
	assert.Len(t, got, 120)
	assert.True(t, strings.HasSuffix(got, "..."))
}
