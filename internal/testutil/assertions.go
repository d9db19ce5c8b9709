package testutil

import (
	"testing"

	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/orderlog"
	"github.com/stretchr/testify/require"
)

// AssertErrorKind checks that the run failed with an evaluation error of
// the given kind.
func AssertErrorKind(t *testing.T, result *HarnessResult, kind evalerr.Kind) *evalerr.Error {
	t.Helper()

	require.Error(t, result.Err, "expected the program to fail with %s", kind)
	var evalErr *evalerr.Error
	require.ErrorAs(t, result.Err, &evalErr)
	require.Equal(t, kind, evalErr.Kind, "unexpected error: %v", result.Err)
	return evalErr
}

// AssertLogged checks that the program produced a log entry with the given
// level and message.
func AssertLogged(t *testing.T, result *HarnessResult, level orderlog.Level, msg string) {
	t.Helper()

	for _, e := range result.Logs {
		if e.Level == level && e.Msg == msg {
			return
		}
	}
	require.Failf(t, "log entry not found", "no %s entry %q in %+v", level, msg, result.Logs)
}
