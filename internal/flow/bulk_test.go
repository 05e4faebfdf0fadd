package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DigneZzZ/remnabot/internal/models"
)

func TestCountChoices(t *testing.T) {
	assert.Equal(t, []int{5, 10, 15, 20}, CountChoices(20))
	assert.Equal(t, []int{5, 10}, CountChoices(10))
	assert.Equal(t, []int{3}, CountChoices(3))
	assert.Equal(t, []int{5, 7}, CountChoices(7))
}

func TestBulk_UnlimitedTrafficSkipsReset(t *testing.T) {
	f := NewBulk(20)
	assert.Equal(t, KindBulk, f.Kind())

	require.NoError(t, f.SelectCount(10))
	require.NoError(t, f.SelectDuration(0))
	require.NoError(t, f.SelectTraffic(0))
	assert.Equal(t, BulkConfirm, f.Step)

	assert.Equal(t, UnlimitedDays, f.Days())
	assert.Equal(t, int64(0), f.TrafficBytes())
	assert.Equal(t, models.ResetNoReset, f.Strategy())
}

func TestBulk_FiniteTrafficAsksReset(t *testing.T) {
	f := NewBulk(20)
	require.NoError(t, f.SelectCount(5))
	require.NoError(t, f.SelectDuration(3))
	require.NoError(t, f.SelectTraffic(100))
	assert.Equal(t, BulkReset, f.Step)

	assert.Error(t, f.Confirm(), "cannot confirm before reset is chosen")
	assert.Error(t, f.SelectReset("YEAR"))
	require.NoError(t, f.SelectReset(models.ResetMonth))
	require.NoError(t, f.Confirm())
	assert.Equal(t, BulkRunning, f.Step)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	req := f.UserRequest("abc123", now)
	assert.Equal(t, int64(100)<<30, req.TrafficLimitBytes)
	assert.Equal(t, models.ResetMonth, req.TrafficLimitStrategy)
	assert.Equal(t, now.AddDate(0, 0, 90), req.ExpireAt)
	assert.Equal(t, models.UserStatusActive, req.Status)
}

func TestBulk_RejectsOutOfStep(t *testing.T) {
	f := NewBulk(10)
	assert.Error(t, f.SelectDuration(1))
	assert.Error(t, f.SelectCount(15), "above the configured maximum")
	assert.Error(t, f.SelectCount(7), "not offered")
	assert.Equal(t, BulkCount, f.Step)
}

func TestRandomUsername(t *testing.T) {
	name, err := RandomUsername()
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Za-z0-9]{12}$`, name)

	_, err = ParseUsername(name)
	assert.NoError(t, err, "generated names must pass username validation")
}

func TestGenerateUsernames_Distinct(t *testing.T) {
	seq := []string{"a", "a", "b", "a", "c"}
	i := 0
	gen := func() (string, error) {
		s := seq[i%len(seq)]
		i++
		return s, nil
	}

	names, err := GenerateUsernames(3, gen)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestGenerateUsernames_GivesUp(t *testing.T) {
	gen := func() (string, error) { return "same", nil }
	_, err := GenerateUsernames(2, gen)
	assert.Error(t, err)
}

func TestExecute_PartialFailures(t *testing.T) {
	items := make([]string, 10)
	for i := range items {
		items[i] = fmt.Sprintf("user%02d", i)
	}
	failing := map[string]bool{"user02": true, "user05": true, "user09": true}

	var calls []string
	report := Execute(context.Background(), items, NewLimiter(0), func(_ context.Context, item string) error {
		calls = append(calls, item)
		if failing[item] {
			return errors.New("conflict")
		}
		return nil
	})

	assert.Equal(t, items, calls, "every item is attempted in order")
	assert.Equal(t, 10, report.Total())
	assert.Len(t, report.Succeeded, 7)
	require.Len(t, report.Failed, 3)
	for _, f := range report.Failed {
		assert.True(t, failing[f.Item])
		assert.Equal(t, "conflict", f.Reason)
	}
}

func TestExecute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := []string{"a", "b", "c"}

	report := Execute(ctx, items, NewLimiter(time.Hour), func(_ context.Context, item string) error {
		cancel()
		return nil
	})

	assert.Equal(t, []string{"a"}, report.Succeeded)
	assert.Len(t, report.Failed, 2)
	assert.Equal(t, 3, report.Total())
}

func TestExecute_Paced(t *testing.T) {
	start := time.Now()
	Execute(context.Background(), []string{"a", "b", "c"}, NewLimiter(20*time.Millisecond), func(context.Context, string) error {
		return nil
	})
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}
