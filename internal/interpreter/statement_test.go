package interpreter_test

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/testutil"
	"github.com/specialistvlad/wdlgo/internal/value"
	"github.com/stretchr/testify/require"
)

func TestScope_BlockLocalsDoNotEscape(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		actions {
			{
				let x = 1;
			}
			let y = x;
		}
	`)

	evalErr := testutil.AssertErrorKind(t, result, evalerr.VariableNotFound)
	require.Equal(t, "x", evalErr.ID)
	require.Equal(t, 5, evalErr.Span.Start.Line)
}

func TestScope_NestedAssignmentMutatesOuter(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		actions {
			let x = 1;
			{
				{
					x = x + 41;
				}
			}
		}
	`)

	require.NoError(t, result.Err)
	require.Equal(t, value.Number(42), result.Lookup(t, "x"))
}

func TestScope_Redeclare(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `actions { let x = 1; let x = 2; }`)

	evalErr := testutil.AssertErrorKind(t, result, evalerr.VariableAlreadyInUse)
	require.Equal(t, "x", evalErr.ID)
}

func TestScope_AssignUndeclared(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `actions { ghost = 1; }`)

	testutil.AssertErrorKind(t, result, evalerr.VariableNotFound)
}

func TestIfElseChain(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		function classify(n) {
			if n < 0 {
				return "negative";
			} else if n == 0 {
				return "zero";
			} else {
				return "positive";
			}
		}

		actions {
			let out = [classify(-3), classify(0), classify(8)];
			let untouched = 1;
			if null { untouched = 2; }
		}
	`)

	require.NoError(t, result.Err)
	require.Equal(t, value.Array{value.String("negative"), value.String("zero"), value.String("positive")}, result.Lookup(t, "out"))
	require.Equal(t, value.Number(1), result.Lookup(t, "untouched"))
}

func TestWhile_BreakTerminates(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result := testutil.RunProgramWithOptions(ctx, t, `actions { while (true) { break; } }`, testutil.ProgramOptions{})

	require.NoError(t, result.Err)
}

func TestWhile_ContinueAndNestedBreak(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		actions {
			let i = 0;
			let evens = [];
			let inner = 0;
			while i < 6 {
				i = i + 1;
				if i % 2 == 1 { continue; }
				evens = evens + i;
				while true {
					inner = inner + 1;
					break;
				}
			}
		}
	`)

	require.NoError(t, result.Err)
	require.Equal(t, value.Array{value.Number(2), value.Number(4), value.Number(6)}, result.Lookup(t, "evens"))
	require.Equal(t, value.Number(3), result.Lookup(t, "inner"), "break unwinds only the innermost loop")
}

func TestWhile_ReturnFromLoop(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		function firstOver(list, limit) {
			let i = 0;
			while i < 100 {
				if list[i] == null { return null; }
				if list[i] > limit { return list[i]; }
				i = i + 1;
			}
		}

		actions {
			let found = firstOver([1, 5, 9, 12], 6);
			let none = firstOver([1], 6);
		}
	`)

	require.NoError(t, result.Err)
	require.Equal(t, value.Number(9), result.Lookup(t, "found"))
	require.Equal(t, value.Null{}, result.Lookup(t, "none"))
}

func TestWhile_HonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result := testutil.RunProgramWithOptions(ctx, t, `actions { while (true) { } }`, testutil.ProgramOptions{})

	require.ErrorIs(t, result.Err, context.DeadlineExceeded)
}

func TestSendOnNonChannel(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `actions { let x = 1; x <- 2; }`)

	evalErr := testutil.AssertErrorKind(t, result, evalerr.InvalidType)
	require.Equal(t, "`number` <- `any`", evalErr.Msg)
}

func TestPar_RunsBranchesConcurrently(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	sleeper := testutil.NewMockSleeperModule(nil, 100*time.Millisecond)
	src := `
		actions {
			let results = {};
			par {
				{ let a = sleeper.sleep("a"); }
				{ let b = sleeper.sleep("b"); }
			}
			let after = sleeper.sleep("after");
		}
	`

	// --- Act ---
	result := testutil.RunProgram(t, src, sleeper)

	// --- Assert ---
	require.NoError(t, result.Err)
	a, b, after := sleeper.Record("a"), sleeper.Record("b"), sleeper.Record("after")
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.True(t, a.Overlaps(b), "par branches should run at the same time")
	require.False(t, after.Start.Before(a.End), "par waits for every branch")
	require.False(t, after.Start.Before(b.End), "par waits for every branch")
}

func TestPar_FirstBranchErrorWins(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		actions {
			par {
				{ let a = 1; }
				{ let b = 1 / 0; }
				{ let c = missing; }
			}
		}
	`)

	testutil.AssertErrorKind(t, result, evalerr.DivisionByZero)
}
