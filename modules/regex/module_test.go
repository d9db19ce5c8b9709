package regex

import (
	"context"
	"testing"

	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/router"
	"github.com/specialistvlad/wdlgo/internal/testutil"
	"github.com/specialistvlad/wdlgo/internal/value"
	"github.com/stretchr/testify/require"
)

func TestRegex(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		fn   string
		args []value.Value
		want value.Value
	}{
		{
			name: "match",
			fn:   "match",
			args: []value.Value{value.String(`^st-\d+$`), value.String("st-12")},
			want: value.Bool(true),
		},
		{
			name: "no match",
			fn:   "match",
			args: []value.Value{value.String(`^st-\d+$`), value.String("area-1")},
			want: value.Bool(false),
		},
		{
			name: "find all",
			fn:   "find",
			args: []value.Value{value.String(`\d+`), value.String("a1 b22 c333")},
			want: value.Array{value.String("1"), value.String("22"), value.String("333")},
		},
		{
			name: "find nothing",
			fn:   "find",
			args: []value.Value{value.String(`\d+`), value.String("none")},
			want: value.Array{},
		},
		{
			name: "replace with group",
			fn:   "replace",
			args: []value.Value{value.String(`(\w+)@(\w+)`), value.String("bob@home"), value.String("$2:$1")},
			want: value.String("home:bob"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := testutil.Invoke(context.Background(), t, &Module{}, testutil.NewEnv(router.Done), Name, tc.fn, tc.args...)

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestRegex_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := testutil.Invoke(context.Background(), t, &Module{}, testutil.NewEnv(router.Done), Name, "match", value.String("("), value.String("x"))

	require.Error(t, err)
	require.Equal(t, evalerr.Fatal, evalerr.KindOf(err))
	require.Contains(t, err.Error(), "invalid regex pattern `(`")
}
