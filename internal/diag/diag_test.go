package diag

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = "actions {\n    let x = 1 / 0;\n}\n"

func span(line, from, to int) ast.Span {
	return ast.Span{Start: ast.Location{Line: line, Column: from}, End: ast.Location{Line: line, Column: to}}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want Outcome
	}{
		{name: "success", err: nil, want: Finished},
		{name: "done", err: evalerr.New(evalerr.OrderDone), want: Done},
		{name: "cancel", err: evalerr.New(evalerr.OrderCancel), want: Cancelled},
		{name: "evaluation error", err: evalerr.New(evalerr.DivisionByZero), want: Failed},
		{name: "foreign error", err: errors.New("boom"), want: Failed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	// --- Act ---
	got := Excerpt(source, span(2, 13, 18))

	// --- Assert ---
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "  |", lines[0])
	assert.Equal(t, "2 |     let x = 1 / 0;", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "  |             "), "carets start under column 13: %q", lines[2])
	assert.Contains(t, lines[2], "^^^^^")
	assert.NotContains(t, lines[2], "^^^^^^")
}

func TestExcerpt_Bounds(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Excerpt(source, span(42, 1, 2)))
	assert.Empty(t, Excerpt(source, ast.Span{}))

	multiLine := ast.Span{Start: ast.Location{Line: 1, Column: 1}, End: ast.Location{Line: 3, Column: 2}}
	assert.Contains(t, Excerpt(source, multiLine), strings.Repeat("^", len("actions {")))
}

func TestSpanOf(t *testing.T) {
	t.Parallel()

	s, ok := SpanOf(evalerr.New(evalerr.DivisionByZero).At(span(2, 13, 18)))
	require.True(t, ok)
	assert.Equal(t, 2, s.Start.Line)

	_, ok = SpanOf(evalerr.New(evalerr.DivisionByZero))
	assert.False(t, ok)

	_, parseErr := parser.Parse("actions { let = 1; }")
	s, ok = SpanOf(parseErr)
	require.True(t, ok)
	assert.Equal(t, 1, s.Start.Line)

	_, ok = SpanOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestPrinter(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		want     Outcome
		contains []string
	}{
		{
			name:     "finished",
			want:     Finished,
			contains: []string{"order finished"},
		},
		{
			name:     "cancelled",
			err:      evalerr.New(evalerr.OrderCancel).At(span(2, 5, 10)),
			want:     Cancelled,
			contains: []string{"order cancelled"},
		},
		{
			name:     "failure with excerpt",
			err:      evalerr.New(evalerr.DivisionByZero).At(span(2, 13, 18)),
			want:     Failed,
			contains: []string{"division by zero", "--> main.wdl:2:13", "2 |     let x = 1 / 0;"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			var out bytes.Buffer
			p := NewPrinter(&out, "main.wdl", source)

			// --- Act ---
			got := p.Outcome(tc.err)

			// --- Assert ---
			assert.Equal(t, tc.want, got)
			for _, want := range tc.contains {
				assert.Contains(t, out.String(), want)
			}
			assert.NotContains(t, out.String(), "(at ", "the position is shown by the excerpt")
		})
	}
}
