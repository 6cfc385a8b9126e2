package lexer

import (
	"testing"

	"github.com/aledsdavies/explainshell/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeBasicCommand(t *testing.T) {
	toks := New("grep -i foo bar.txt").Tokenize()
	assert.Equal(t, []Kind{Word, Word, Word, Word, EOF}, kinds(toks))
	assert.Equal(t, "grep", toks[0].Lexeme)
	assert.Equal(t, "-i", toks[1].Lexeme)
}

func TestTokenizeQuoting(t *testing.T) {
	toks := New(`echo "hello world" 'raw $x'`).Tokenize()
	require.Len(t, toks, 4) // echo, "hello world", 'raw $x', EOF
	assert.Equal(t, "hello world", toks[1].Lexeme)
	assert.True(t, toks[1].Quoted)
	assert.Equal(t, "raw $x", toks[2].Lexeme)
	assert.True(t, toks[2].Quoted)
}

func TestTokenizeUnclosedSingleQuote(t *testing.T) {
	l := New("echo 'unterminated")
	l.Tokenize()
	require.Error(t, l.Err())
	var lexErr *Error
	require.ErrorAs(t, l.Err(), &lexErr)
	assert.Equal(t, "UnclosedQuote", lexErr.Kind)
}

func TestFDRedirectDisambiguation(t *testing.T) {
	// "2>file" is a single fd-redirect: Number immediately followed by Redir.
	toks := New("cmd 2>file").Tokenize()
	require.Equal(t, []Kind{Word, Number, Redir, Word, EOF}, kinds(toks))
	assert.Equal(t, "", toks[2].PrecedingWhitespace)

	// "a 2 >file" is a word, a number, then a redirect: whitespace breaks
	// the adjacency the fd-redirect rule depends on.
	toks2 := New("cmd a 2 >file").Tokenize()
	require.Equal(t, []Kind{Word, Word, Number, Redir, Word, EOF}, kinds(toks2))
	assert.NotEqual(t, "", toks2[3].PrecedingWhitespace)
}

func TestTokenizeOperatorsGreedyLongestMatch(t *testing.T) {
	toks := New("a && b || c").Tokenize()
	require.Len(t, toks, 6)
	assert.Equal(t, "&&", toks[1].Lexeme)
	assert.Equal(t, "||", toks[3].Lexeme)
}

func TestTokenizeRedirectOperators(t *testing.T) {
	toks := New("cmd 2>&1 >out.txt <<<here &>all").Tokenize()
	var redirs []Token
	for _, tk := range toks {
		if tk.Kind == Redir {
			redirs = append(redirs, tk)
		}
	}
	require.Len(t, redirs, 4)
	assert.Equal(t, RedirGreatAmp, redirs[0].RedirKind)
	assert.Equal(t, RedirGreat, redirs[1].RedirKind)
	assert.Equal(t, RedirDLessLess, redirs[2].RedirKind)
	assert.Equal(t, RedirAmpGreat, redirs[3].RedirKind)
}

func TestTokenizeProcessSubstitution(t *testing.T) {
	toks := New("diff <(sort a) <(sort b)").Tokenize()
	require.Equal(t, []Kind{Word, Word, Word, EOF}, kinds(toks))
	require.Len(t, toks[1].Expansions, 1)
	assert.Equal(t, "<(sort a)", toks[1].Lexeme)
}

func TestTokenizeCommandSubstitutionDepthOneCap(t *testing.T) {
	toks := New("echo $(a $(b))").Tokenize()
	require.Len(t, toks, 3) // echo, the substitution word, EOF
	word := toks[1]
	require.Len(t, word.Expansions, 1)
	assert.Equal(t, "$(a $(b))", word.Lexeme)
}

func TestTokenizeBraceGroupDelimiters(t *testing.T) {
	toks := New("{ echo hi; }").Tokenize()
	assert.Equal(t, []Kind{LBrace, Word, Word, Operator, RBrace, EOF}, kinds(toks))
}

func TestTokenizeTildeExpansion(t *testing.T) {
	toks := New("ls ~/bin ~alice/x").Tokenize()
	require.Len(t, toks, 4)
	require.Len(t, toks[1].Expansions, 1)
	assert.Equal(t, ast.ExpansionTilde, toks[1].Expansions[0].Kind)
	require.Len(t, toks[2].Expansions, 1)
}

func TestTokenizeTrailingComment(t *testing.T) {
	l := New("echo hi # the rest")
	toks := l.Tokenize()
	assert.Equal(t, []Kind{Word, Word, EOF}, kinds(toks))
	require.NoError(t, l.Err())
}

func TestTokenizeHashInsideWord(t *testing.T) {
	toks := New("echo foo#bar").Tokenize()
	require.Equal(t, []Kind{Word, Word, EOF}, kinds(toks))
	assert.Equal(t, "foo#bar", toks[1].Lexeme)
}
