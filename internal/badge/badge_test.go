package badge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakePusher struct {
	counts []int
	err    error
}

func (f *fakePusher) PushBadge(ctx context.Context, userID string, count int) error {
	f.counts = append(f.counts, count)
	return f.err
}

func TestSetBadgeOverwrites(t *testing.T) {
	pusher := &fakePusher{}
	sync := NewSynchronizer(pusher, zap.NewNop().Sugar())

	sync.SetBadge(context.Background(), "u1", 3)
	sync.SetBadge(context.Background(), "u1", 1)
	sync.SetBadge(context.Background(), "u1", 5)

	assert.Equal(t, []int{3, 1, 5}, pusher.counts)
}

func TestSetBadgeClampsNegative(t *testing.T) {
	pusher := &fakePusher{}
	sync := NewSynchronizer(pusher, zap.NewNop().Sugar())

	sync.SetBadge(context.Background(), "u1", -4)

	assert.Equal(t, []int{0}, pusher.counts)
}

func TestSetBadgeSwallowsErrors(t *testing.T) {
	pusher := &fakePusher{err: errors.New("gateway down")}
	sync := NewSynchronizer(pusher, zap.NewNop().Sugar())

	// Must not panic or surface the error; the badge is best-effort.
	sync.SetBadge(context.Background(), "u1", 2)
	sync.ClearBadge(context.Background(), "u1")

	assert.Equal(t, []int{2, 0}, pusher.counts)
}
