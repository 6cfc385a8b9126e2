package lexer

import (
	"fmt"

	"github.com/aledsdavies/explainshell/internal/ast"
)

// Kind identifies the lexical category of a Token.
type Kind int

const (
	EOF Kind = iota
	ILLEGAL

	Word     // an unquoted or quoted shell word
	Number   // a bare run of digits (candidate fd or numeric word)
	Operator // ; & && || | |&
	Redir    // < > >> << <<< >& <& &> &>> ("<<-" lexes as "<<" then a "-word")
	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case ILLEGAL:
		return "ILLEGAL"
	case Word:
		return "Word"
	case Number:
		return "Number"
	case Operator:
		return "Operator"
	case Redir:
		return "Redir"
	case LParen:
		return "LParen"
	case RParen:
		return "RParen"
	case LBrace:
		return "LBrace"
	case RBrace:
		return "RBrace"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// RedirKind distinguishes which redirection operator a Redir token spells.
type RedirKind int

const (
	RedirNone RedirKind = iota
	RedirLess
	RedirGreat
	RedirDLess
	RedirDLessDash
	RedirDLessLess // <<<
	RedirGreatGreat
	RedirGreatAmp // >&
	RedirLessAmp  // <&
	RedirAmpGreat // &>
	RedirAmpGreatGreat
)

// Token is a single lexical token with position and whitespace information.
//
// PrecedingWhitespace is the exact whitespace text consumed immediately
// before this token; it disambiguates "2>file" (fd redirect) from
// "a 2 >file" (word then redirect), per the lexer's whitespace-tracking
// contract.
type Token struct {
	Kind Kind
	// Lexeme is the token's unquoted value for Word tokens (quotes and
	// escapes already processed); for all other kinds it is the operator
	// or punctuation spelling.
	Lexeme string
	// Quoted is true if the token text originated from any quoted span,
	// making it ineligible for reserved-word promotion by the parser.
	Quoted bool

	PrecedingWhitespace string

	Start int
	End   int

	RedirKind RedirKind

	// Expansions records every parameter/command/process/tilde expansion
	// found inside a Word token, in source order.
	Expansions []*ast.Expansion
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@[%d,%d)", t.Kind, t.Lexeme, t.Start, t.End)
}
