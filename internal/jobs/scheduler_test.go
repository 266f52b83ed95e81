package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndRunByName(t *testing.T) {
	s := NewScheduler(0)

	var runs int
	require.NoError(t, s.Register(Func("reindex", "@daily", func(context.Context) error {
		runs++
		return nil
	})))
	require.NoError(t, s.Register(Func("manual", "", func(context.Context) error { return nil })))

	assert.Equal(t, []string{"reindex", "manual"}, s.Names())

	require.NoError(t, s.RunByName(context.Background(), "reindex"))
	assert.Equal(t, 1, runs)

	assert.Error(t, s.RunByName(context.Background(), "missing"))
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(0)
	err := s.Register(Func("broken", "every tuesday", func(context.Context) error { return nil }))
	assert.Error(t, err)
	assert.Empty(t, s.Names())
}
