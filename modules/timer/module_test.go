package timer

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/wdlgo/internal/router"
	"github.com/specialistvlad/wdlgo/internal/testutil"
	"github.com/specialistvlad/wdlgo/internal/value"
	"github.com/stretchr/testify/require"
)

func TestSleep(t *testing.T) {
	t.Parallel()

	start := time.Now()
	_, err := testutil.Invoke(context.Background(), t, &Module{}, testutil.NewEnv(router.Done), Name, "sleep", value.Number(30))

	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestSleep_NegativeReturnsImmediately(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testutil.Invoke(ctx, t, &Module{}, testutil.NewEnv(router.Done), Name, "sleep", value.Number(-5))

	require.NoError(t, err)
}

func TestSleep_HonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := testutil.Invoke(ctx, t, &Module{}, testutil.NewEnv(router.Done), Name, "sleep", value.Number(10_000))

	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestNow(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mod := &Module{Now: func() time.Time { return fixed }}

	got, err := testutil.Invoke(context.Background(), t, mod, testutil.NewEnv(router.Done), Name, "now")

	require.NoError(t, err)
	require.Equal(t, value.Number(fixed.UnixMilli()), got)
}

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		text string
		want value.Value
	}{
		{text: "2024-03-01T12:00:00Z", want: value.Number(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli())},
		{text: "not a date at all", want: value.Null{}},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			t.Parallel()

			got, err := testutil.Invoke(context.Background(), t, &Module{}, testutil.NewEnv(router.Done), Name, "parse", value.String(tc.text))

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
