package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOptionBareFlags(t *testing.T) {
	short, long := ExtractOption("-a, -b, --verbose")
	require.Len(t, short, 2)
	require.Len(t, long, 1)
	assert.Equal(t, "-a", short[0].Flag)
	assert.Equal(t, "-b", short[1].Flag)
	assert.Equal(t, "--verbose", long[0].Flag)
	assert.False(t, short[0].ExpectsArg())
}

func TestExtractOptionEqualsArg(t *testing.T) {
	short, _ := ExtractOption("-a=foo")
	require.Len(t, short, 1)
	assert.Equal(t, "-a", short[0].Flag)
	assert.Equal(t, "foo", short[0].ArgName)
	assert.True(t, short[0].ExpectsArg())
}

func TestExtractOptionBareUppercaseArg(t *testing.T) {
	short, _ := ExtractOption("-a FOO")
	require.Len(t, short, 1)
	assert.Equal(t, "FOO", short[0].ArgName)
}

func TestExtractOptionBracketedArg(t *testing.T) {
	cases := []struct{ in, flag, arg string }{
		{"-a<foo>", "-a", "foo"},
		{"-a=[foo]", "-a", "foo"},
		{"-a=<foo>", "-a", "foo"},
		{"-a=<foo bar>", "-a", "foo bar"},
	}
	for _, c := range cases {
		short, _ := ExtractOption(c.in)
		require.Lenf(t, short, 1, "input %q", c.in)
		assert.Equal(t, c.flag, short[0].Flag)
		assert.Equal(t, c.arg, short[0].ArgName)
	}
}

func TestExtractOptionUnbalancedBracketsDoNotMatch(t *testing.T) {
	short, long := ExtractOption("-a=[foo>")
	assert.Empty(t, short)
	assert.Empty(t, long)
}

func TestExtractOptionDoesNotMatchTrailingHyphen(t *testing.T) {
	for _, in := range []string{"---x", "-x-", "--a-", "--a-b-"} {
		short, long := ExtractOption(in)
		assert.Emptyf(t, short, "input %q", in)
		assert.Emptyf(t, long, "input %q", in)
	}
}

func TestExtractOptionPipeSeparatedBareWords(t *testing.T) {
	short, long := ExtractOption("-a|b|c")
	require.Len(t, short, 3)
	assert.Equal(t, "-a", short[0].Flag)
	assert.Equal(t, "b", short[1].Flag)
	assert.Equal(t, "c", short[2].Flag)
	assert.Empty(t, long)
}

func TestExtractOptionFallbackAssignmentForm(t *testing.T) {
	short, long := ExtractOption("bs=BYTES")
	assert.Empty(t, short)
	require.Len(t, long, 1)
	assert.Equal(t, "bs", long[0].Flag)
	assert.Equal(t, "BYTES", long[0].ArgName)
}

func TestExtractParagraphExpectsArg(t *testing.T) {
	short, long, expectsArg := ExtractParagraph("-v, --verbose")
	assert.Equal(t, []string{"-v"}, short)
	assert.Equal(t, []string{"--verbose"}, long)
	assert.False(t, expectsArg)

	short2, long2, expectsArg2 := ExtractParagraph("-o, --output FOO")
	assert.Equal(t, []string{"-o"}, short2)
	assert.Equal(t, []string{"--output"}, long2)
	assert.True(t, expectsArg2)
}
