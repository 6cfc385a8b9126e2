// Package lexer implements a shell-aware tokenizer: quoting, escapes,
// control-character runs split by greedy longest operator match, and
// preceding-whitespace tracking for fd-redirect disambiguation.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aledsdavies/explainshell/internal/ast"
)

// ASCII fast-path classification tables, built once in init().
var (
	isWhitespace [128]bool
	isWordChar   [128]bool
	isControl    [128]bool // chars that form operator runs: ( ) ; < > | &
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
	}
	const wordPunct = "+-./*?=$%:@~^,[]!\\"
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWordChar[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9') || strings.IndexByte(wordPunct, ch) >= 0
	}
	for _, ch := range "();<>|&" {
		isControl[ch] = true
	}
}

// operatorSpellings lists every valid operator/redirection spelling, longest
// first, so control runs are split by greedy longest match.
var operatorSpellings = []struct {
	text string
	kind Kind
	rk   RedirKind
}{
	{"<<<", Redir, RedirDLessLess},
	{"&>>", Redir, RedirAmpGreatGreat},
	{"&&", Operator, RedirNone},
	{"||", Operator, RedirNone},
	{"|&", Operator, RedirNone},
	{"&>", Redir, RedirAmpGreat},
	{">&", Redir, RedirGreatAmp},
	{"<&", Redir, RedirLessAmp},
	{">>", Redir, RedirGreatGreat},
	{"<<", Redir, RedirDLess},
	{"<", Redir, RedirLess},
	{">", Redir, RedirGreat},
	{"&", Operator, RedirNone},
	{"|", Operator, RedirNone},
	{";", Operator, RedirNone},
	{"(", LParen, RedirNone},
	{")", RParen, RedirNone},
}

// Error is a lexical error: UnclosedQuote, UnterminatedEscape, or
// IllegalCharacter, each carrying the byte offset where it occurred.
type Error struct {
	Kind string // "UnclosedQuote" | "UnterminatedEscape" | "IllegalCharacter"
	Pos  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at byte %d: %s", e.Kind, e.Pos, e.Msg)
}

// Lexer tokenizes a single input string into a lazy sequence of Tokens.
type Lexer struct {
	input string
	pos   int // byte offset of the current rune
	rpos  int // byte offset of the next rune
	ch    rune

	err error
}

// New creates a Lexer over the given input string.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.advance()
	return l
}

// Err returns the first lexical error encountered, if any.
func (l *Lexer) Err() error { return l.err }

func (l *Lexer) advance() {
	l.pos = l.rpos
	if l.rpos >= len(l.input) {
		l.ch = 0
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.rpos:])
	if r == utf8.RuneError && size == 1 {
		r = rune(l.input[l.rpos])
	}
	l.ch = r
	l.rpos += size
}

func (l *Lexer) peek() rune {
	if l.rpos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.rpos:])
	return r
}

func wordChar(r rune) bool {
	if r < 128 {
		return isWordChar[r]
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func controlChar(r rune) bool {
	return r < 128 && isControl[byte(r)]
}

func spaceChar(r rune) bool {
	if r < 128 {
		return isWhitespace[r]
	}
	return unicode.IsSpace(r)
}

// Tokenize runs the lexer to completion and returns every token including
// the trailing EOF.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == EOF {
			break
		}
	}
	return toks
}

// Next returns the next token from the input.
func (l *Lexer) Next() Token {
	ws := l.skipWhitespace()

	start := l.pos
	if l.ch == 0 {
		return Token{Kind: EOF, Start: start, End: start, PrecedingWhitespace: ws}
	}

	switch {
	case l.ch == '#':
		// A comment runs to the end of the input. The skipped bytes stay
		// uncovered by any token so the matcher can annotate them later.
		for l.ch != 0 {
			l.advance()
		}
		return Token{Kind: EOF, Start: l.pos, End: l.pos, PrecedingWhitespace: ws}
	case l.ch == '{':
		l.advance()
		return Token{Kind: LBrace, Lexeme: "{", Start: start, End: l.pos, PrecedingWhitespace: ws}
	case l.ch == '}':
		l.advance()
		return Token{Kind: RBrace, Lexeme: "}", Start: start, End: l.pos, PrecedingWhitespace: ws}
	case (l.ch == '<' || l.ch == '>') && l.peek() == '(':
		// Process substitution <(...) / >(...) reads as a word, not a
		// redirection operator followed by a group.
		return l.lexWord(start, ws)
	case controlChar(l.ch):
		return l.lexControlRun(start, ws)
	default:
		return l.lexWord(start, ws)
	}
}

func (l *Lexer) skipWhitespace() string {
	start := l.pos
	for l.ch != 0 && spaceChar(l.ch) {
		l.advance()
	}
	return l.input[start:l.pos]
}

// lexControlRun collects the maximal run of control characters starting at
// the current position, then greedily splits it into the longest valid
// operator/redirection spellings, returning only the first (subsequent
// ones are produced by later Next() calls since we rewind to just past the
// first spelling).
func (l *Lexer) lexControlRun(start int, ws string) Token {
	runStart := l.pos
	for l.ch != 0 && controlChar(l.ch) {
		l.advance()
	}
	run := l.input[runStart:l.pos]

	for _, op := range operatorSpellings {
		if strings.HasPrefix(run, op.text) {
			end := runStart + len(op.text)
			// Rewind the lexer to just past this spelling; the rest of the
			// run (if any) is re-lexed on the next call.
			l.rewindTo(end)
			return Token{Kind: op.kind, Lexeme: op.text, RedirKind: op.rk, Start: start, End: end, PrecedingWhitespace: ws}
		}
	}

	// Unreachable in practice: every single control character is itself a
	// valid 1-char operator spelling.
	l.err = &Error{Kind: "IllegalCharacter", Pos: runStart, Msg: fmt.Sprintf("unrecognized control sequence %q", run)}
	end := runStart + 1
	l.rewindTo(end)
	return Token{Kind: ILLEGAL, Lexeme: run[:1], Start: start, End: end, PrecedingWhitespace: ws}
}

// rewindTo repositions the lexer so that the next rune read begins at byte
// offset pos.
func (l *Lexer) rewindTo(pos int) {
	l.rpos = pos
	l.advance()
}

// lexWord scans a single shell word: a mixture of unquoted wordchar runs,
// single- and double-quoted segments, backslash escapes, and expansions.
// The lexeme accumulates the *unquoted* content; the token's span covers
// the full original text including quote delimiters.
func (l *Lexer) lexWord(start int, ws string) Token {
	var b strings.Builder
	quoted := false
	var parts []*ast.Expansion
	consumedAny := false

	for {
		switch {
		case l.ch == 0:
			goto done
		case spaceChar(l.ch):
			goto done
		case (l.ch == '<' || l.ch == '>') && l.peek() == '(':
			consumedAny = true
			exp := l.lexProcessSubstitutionInto(&b)
			parts = append(parts, exp)
		case l.ch == '{' || l.ch == '}' || controlChar(l.ch):
			goto done
		case l.ch == '\'':
			quoted = true
			consumedAny = true
			l.advance() // consume opening quote
			for l.ch != '\'' {
				if l.ch == 0 {
					l.err = &Error{Kind: "UnclosedQuote", Pos: l.pos, Msg: "unterminated single-quoted string"}
					goto done
				}
				b.WriteRune(l.ch)
				l.advance()
			}
			l.advance() // consume closing quote
		case l.ch == '"':
			quoted = true
			consumedAny = true
			qStart := l.pos
			l.advance() // consume opening quote
			for l.ch != '"' {
				if l.ch == 0 {
					l.err = &Error{Kind: "UnclosedQuote", Pos: qStart, Msg: "unterminated double-quoted string"}
					goto done
				}
				if l.ch == '\\' {
					nxt := l.peek()
					if nxt == '$' || nxt == '`' || nxt == '"' || nxt == '\\' || nxt == '\n' {
						l.advance() // backslash
						if nxt != '\n' {
							b.WriteRune(l.ch)
						}
						l.advance() // escaped char
						continue
					}
					b.WriteRune(l.ch)
					l.advance()
					continue
				}
				if l.ch == '$' || l.ch == '`' {
					exp := l.lexExpansionInto(&b)
					if exp != nil {
						parts = append(parts, exp)
					}
					continue
				}
				b.WriteRune(l.ch)
				l.advance()
			}
			l.advance() // consume closing quote
		case l.ch == '\\':
			consumedAny = true
			l.advance()
			if l.ch == '\n' {
				l.advance() // line continuation: produces no character
				continue
			}
			if l.ch == 0 {
				l.err = &Error{Kind: "UnterminatedEscape", Pos: l.pos, Msg: "trailing backslash at end of input"}
				goto done
			}
			b.WriteRune(l.ch)
			l.advance()
		case l.ch == '$' || l.ch == '`':
			consumedAny = true
			exp := l.lexExpansionInto(&b)
			if exp != nil {
				parts = append(parts, exp)
			}
		case l.ch == '~' && b.Len() == 0 && len(parts) == 0:
			consumedAny = true
			tildeStart := l.pos
			b.WriteRune(l.ch)
			l.advance()
			for wordChar(l.ch) && l.ch != '/' {
				b.WriteRune(l.ch)
				l.advance()
			}
			parts = append(parts, &ast.Expansion{Kind: ast.ExpansionTilde, Sp: ast.Span{Start: tildeStart, End: l.pos}})
		case wordChar(l.ch) || l.ch == '#':
			// '#' only starts a comment at token start; mid-word it is
			// an ordinary character ("foo#bar").
			consumedAny = true
			b.WriteRune(l.ch)
			l.advance()
		default:
			l.err = &Error{Kind: "IllegalCharacter", Pos: l.pos, Msg: fmt.Sprintf("unexpected character %q", l.ch)}
			l.advance()
			goto done
		}
	}
done:
	if !consumedAny {
		// Nothing consumable here; emit a single illegal char to guarantee
		// forward progress.
		r := l.ch
		l.advance()
		l.err = &Error{Kind: "IllegalCharacter", Pos: start, Msg: fmt.Sprintf("unexpected character %q", r)}
		return Token{Kind: ILLEGAL, Lexeme: string(r), Start: start, End: l.pos, PrecedingWhitespace: ws}
	}

	text := b.String()
	end := l.pos
	kind := Word
	if !quoted && len(parts) == 0 && text != "" && isAllDigits(text) {
		kind = Number
	}
	tok := Token{Kind: kind, Lexeme: text, Quoted: quoted, Start: start, End: end, PrecedingWhitespace: ws, Expansions: parts}
	return tok
}

// lexProcessSubstitutionInto consumes a process substitution <(...) or
// >(...), appending its literal text to b and returning its Expansion span.
func (l *Lexer) lexProcessSubstitutionInto(b *strings.Builder) *ast.Expansion {
	start := l.pos
	b.WriteRune(l.ch) // '<' or '>'
	l.advance()
	b.WriteRune(l.ch) // '('
	l.advance()
	depth := 1
	for depth > 0 && l.ch != 0 {
		if l.ch == '(' {
			depth++
		} else if l.ch == ')' {
			depth--
			if depth == 0 {
				break
			}
		}
		b.WriteRune(l.ch)
		l.advance()
	}
	if l.ch == ')' {
		b.WriteRune(l.ch)
		l.advance()
	}
	return &ast.Expansion{Kind: ast.ExpansionSubstitution, Sp: ast.Span{Start: start, End: l.pos}}
}

// lexExpansionInto consumes one expansion ($name, ${...}, $(...), `...`,
// or a bare positional $1) starting at the current '$' or '`' character,
// appending its literal text to b, and returns the recorded Expansion (with
// an absolute span) for attachment to the enclosing Word.
//
// Nested command substitutions are not recursively parsed: $(a $(b))
// records the outer substitution's span opaquely, without descending into
// the inner one. The depth cap bounds worst-case work per input.
func (l *Lexer) lexExpansionInto(b *strings.Builder) *ast.Expansion {
	start := l.pos
	if l.ch == '`' {
		b.WriteRune(l.ch)
		l.advance()
		for l.ch != '`' && l.ch != 0 {
			if l.ch == '\\' {
				b.WriteRune(l.ch)
				l.advance()
				if l.ch != 0 {
					b.WriteRune(l.ch)
					l.advance()
				}
				continue
			}
			b.WriteRune(l.ch)
			l.advance()
		}
		if l.ch == '`' {
			b.WriteRune(l.ch)
			l.advance()
		}
		return &ast.Expansion{Kind: ast.ExpansionSubstitution, Sp: ast.Span{Start: start, End: l.pos}}
	}

	// l.ch == '$'
	b.WriteRune(l.ch)
	l.advance()

	switch {
	case l.ch == '(':
		b.WriteRune(l.ch)
		l.advance()
		depth := 1
		for depth > 0 && l.ch != 0 {
			if l.ch == '(' {
				depth++
			} else if l.ch == ')' {
				depth--
				if depth == 0 {
					break
				}
			}
			b.WriteRune(l.ch)
			l.advance()
		}
		if l.ch == ')' {
			b.WriteRune(l.ch)
			l.advance()
		}
		return &ast.Expansion{Kind: ast.ExpansionSubstitution, Sp: ast.Span{Start: start, End: l.pos}}
	case l.ch == '{':
		b.WriteRune(l.ch)
		l.advance()
		for l.ch != '}' && l.ch != 0 {
			b.WriteRune(l.ch)
			l.advance()
		}
		if l.ch == '}' {
			b.WriteRune(l.ch)
			l.advance()
		}
		return &ast.Expansion{Kind: ast.ExpansionParameterNamed, Sp: ast.Span{Start: start, End: l.pos}}
	case l.ch >= '0' && l.ch <= '9':
		b.WriteRune(l.ch)
		l.advance()
		return &ast.Expansion{Kind: ast.ExpansionParameterDigits, Sp: ast.Span{Start: start, End: l.pos}}
	case wordChar(l.ch):
		for wordChar(l.ch) {
			b.WriteRune(l.ch)
			l.advance()
		}
		return &ast.Expansion{Kind: ast.ExpansionParameterNamed, Sp: ast.Span{Start: start, End: l.pos}}
	default:
		// A bare '$' with nothing expansion-like following; not an
		// expansion, just a literal dollar sign already appended to b.
		return nil
	}
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
