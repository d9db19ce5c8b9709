package interpreter_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/registry"
	"github.com/specialistvlad/wdlgo/internal/testutil"
	"github.com/specialistvlad/wdlgo/internal/value"
	"github.com/specialistvlad/wdlgo/modules/channels"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		actions {
			let sum = 1 + 2 * 3;
			let quotient = 7 / 2;
			let remainder = (0 - 7) % 3;
			let text = "n=" + 4;
			let list = [1] + [2, 3] + 4;
			let negated = -(2 - 5);
			let cmp = [1 < 2, 2 <= 2, 3 > 4, 4 >= 5, 1 == 1, "a" != "a"];
		}
	`)

	require.NoError(t, result.Err)
	require.Equal(t, value.Number(7), result.Lookup(t, "sum"))
	require.Equal(t, value.Number(3.5), result.Lookup(t, "quotient"))
	require.Equal(t, value.Number(-1), result.Lookup(t, "remainder"))
	require.Equal(t, value.String("n=4"), result.Lookup(t, "text"))
	require.Equal(t, value.Array{value.Number(1), value.Number(2), value.Number(3), value.Number(4)}, result.Lookup(t, "list"))
	require.Equal(t, value.Number(3), result.Lookup(t, "negated"))
	require.Equal(t, value.Array{
		value.Bool(true), value.Bool(true), value.Bool(false), value.Bool(false), value.Bool(true), value.Bool(false),
	}, result.Lookup(t, "cmp"))
}

func TestDivisionByZero(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"1 / 0", "5 % 0", "0 / 0"} {
		t.Run(expr, func(t *testing.T) {
			t.Parallel()

			result := testutil.RunProgram(t, "actions { let x = "+expr+"; }")

			evalErr := testutil.AssertErrorKind(t, result, evalerr.DivisionByZero)
			require.NotNil(t, evalErr.Span)
			require.Equal(t, 1, evalErr.Span.Start.Line)
		})
	}
}

func TestInvalidOperandTypes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		expr string
		msg  string
	}{
		{expr: `1 + true`, msg: "`number` + `bool`"},
		{expr: `{} + 1`, msg: "`object` + `number`"},
		{expr: `"a" * 2`, msg: "`string` * `number`"},
		{expr: `-"a"`, msg: "-`string`"},
		{expr: `<-5`, msg: "<-`number`"},
		{expr: `(5).missingKey`, msg: "`number`.missingKey"},
		{expr: `[1][true]`, msg: "`array`[`bool`]"},
		{expr: `(3)()`, msg: "`number`()"},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			t.Parallel()

			result := testutil.RunProgram(t, "actions { let x = "+tc.expr+"; }")

			evalErr := testutil.AssertErrorKind(t, result, evalerr.InvalidType)
			require.Equal(t, tc.msg, evalErr.Msg)
		})
	}
}

func TestShortCircuit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
		global hits = 0;

		function touch() {
			hits = hits + 1;
			return true;
		}

		actions {
			let a = false and touch();
			let b = true or touch();
			let c = "x" ?? touch();
			let d = null ?? 5;
			let e = true and touch();
			let f = 0 or "";
		}
	`

	// --- Act ---
	result := testutil.RunProgram(t, src)

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, value.Bool(false), result.Lookup(t, "a"))
	require.Equal(t, value.Bool(true), result.Lookup(t, "b"))
	require.Equal(t, value.String("x"), result.Lookup(t, "c"))
	require.Equal(t, value.Number(5), result.Lookup(t, "d"))
	require.Equal(t, value.Bool(true), result.Lookup(t, "e"))
	require.Equal(t, value.Bool(false), result.Lookup(t, "f"))
	require.Equal(t, value.Number(1), result.Lookup(t, "hits"), "only the unguarded call may run")
}

func TestMemberAndOffsetNullSemantics(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		actions {
			let obj = { a: 1, nested: { b: [10, 20] } };
			let missing = ({}).missingKey;
			let outOfRange = [1, 2, 3][10];
			let negative = [1, 2, 3][-1];
			let truncated = [1, 2, 3][1.9];
			let deep = obj.nested.b[1];
			let byKey = obj["a"];
			let noKey = obj["zzz"];
			let char = "héllo"[1];
		}
	`)

	require.NoError(t, result.Err)
	require.Equal(t, value.Null{}, result.Lookup(t, "missing"))
	require.Equal(t, value.Null{}, result.Lookup(t, "outOfRange"))
	require.Equal(t, value.Null{}, result.Lookup(t, "negative"))
	require.Equal(t, value.Number(2), result.Lookup(t, "truncated"))
	require.Equal(t, value.Number(20), result.Lookup(t, "deep"))
	require.Equal(t, value.Number(1), result.Lookup(t, "byKey"))
	require.Equal(t, value.Null{}, result.Lookup(t, "noKey"))
	require.Equal(t, value.String("é"), result.Lookup(t, "char"))
}

func TestObjectLiteral_LastDuplicateWins(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		global trace = [];

		function mark(n) {
			trace = trace + n;
			return n;
		}

		actions {
			let o = { a: mark(1), b: mark(2), a: mark(3) };
		}
	`)

	require.NoError(t, result.Err)
	require.Equal(t, value.Object{"a": value.Number(3), "b": value.Number(2)}, result.Lookup(t, "o"))
	require.Equal(t, value.Array{value.Number(1), value.Number(2), value.Number(3)}, result.Lookup(t, "trace"), "entries run in source order")
}

func TestChannelRoundTrip(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		actions {
			let ch = channel.new(1);
			ch <- 42;
			let v = <-ch;
		}
	`, &channels.Module{})

	require.NoError(t, result.Err)
	require.Equal(t, value.Number(42), result.Lookup(t, "v"))
	require.IsType(t, value.Channel(0), result.Lookup(t, "ch"))
}

func TestChannel_ClosedAndDrained(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		actions {
			let ch = channel.new(2);
			ch <- "last";
			channel.close(ch);
			let drained = <-ch;
			let boom = <-ch;
		}
	`, &channels.Module{})

	evalErr := testutil.AssertErrorKind(t, result, evalerr.Fatal)
	require.Equal(t, "cannot receive on closed channel", evalErr.Msg)
	require.Equal(t, value.String("last"), result.Lookup(t, "drained"))
}

func TestChannel_SendOnClosed(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		actions {
			let ch = channel.new(1);
			channel::close(ch);
			ch <- 1;
		}
	`, &channels.Module{})

	evalErr := testutil.AssertErrorKind(t, result, evalerr.Fatal)
	require.Equal(t, "cannot send on closed channel", evalErr.Msg)
	require.Equal(t, 4, evalErr.Span.Start.Line)
}

func TestNativeArgumentCoercion(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	pair := &testutil.SimpleModule{
		Module: "probe",
		Name:   "pair",
		Handler: &registry.Handler{
			Params: []registry.Param{
				{Name: "label", Kind: registry.KindString},
				{Name: "count", Kind: registry.KindNumber},
			},
			Fn: func(_ context.Context, args registry.Args) (any, error) {
				return args.String(0), nil
			},
		},
	}

	// --- Act ---
	ok := testutil.RunProgram(t, `actions { let v = probe.pair("x", 42); }`, pair)
	bad := testutil.RunProgram(t, `actions { let v = probe::pair(42, "x"); }`, pair)
	named := testutil.RunProgram(t, `actions { let v = probe.pair(count: 1, label: "n"); }`, pair)

	// --- Assert ---
	require.NoError(t, ok.Err)
	require.Equal(t, value.String("x"), ok.Lookup(t, "v"))

	evalErr := testutil.AssertErrorKind(t, bad, evalerr.InvalidType)
	require.Equal(t, "expected `string`, given `number` for argument 1", evalErr.Msg)
	require.Equal(t, 1, evalErr.Span.Start.Line)

	require.NoError(t, named.Err)
	require.Equal(t, value.String("n"), named.Lookup(t, "v"))
}

func TestNativeModuleShadowedByVariable(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `
		actions {
			let channel = { new: "not a native" };
			let v = channel.new;
		}
	`, &channels.Module{})

	require.NoError(t, result.Err)
	require.Equal(t, value.String("not a native"), result.Lookup(t, "v"))
}

func TestUnknownIdentifier(t *testing.T) {
	t.Parallel()

	result := testutil.RunProgram(t, `actions { let v = nope::thing; }`)

	evalErr := testutil.AssertErrorKind(t, result, evalerr.VariableNotFound)
	require.Equal(t, "nope::thing", evalErr.ID)
}

func TestNativeWithoutParameters(t *testing.T) {
	t.Parallel()

	ok := testutil.RunProgram(t, `actions { let v = noop::noop(); }`, &testutil.NoOpModule{})
	extra := testutil.RunProgram(t, `actions { let v = noop.noop(1); }`, &testutil.NoOpModule{})

	require.NoError(t, ok.Err)
	require.Equal(t, value.Null{}, ok.Lookup(t, "v"))
	testutil.AssertErrorKind(t, extra, evalerr.ArityMismatch)
}
