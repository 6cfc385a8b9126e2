package parser

import "fmt"

// SyntaxError is the single error type the parser produces. Kind identifies
// which grammar rule failed, so callers (and tests) can distinguish failure
// modes without parsing the message text.
type SyntaxError struct {
	Kind    string
	Pos     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Pos, e.Message)
}

func newUnexpectedToken(pos int, want, got string) *SyntaxError {
	return &SyntaxError{
		Kind:    "unexpected_token",
		Pos:     pos,
		Message: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

func newUnclosedGroup(pos int, opener string) *SyntaxError {
	return &SyntaxError{
		Kind:    "unclosed_group",
		Pos:     pos,
		Message: fmt.Sprintf("%q opened here was never closed", opener),
	}
}

func newExpectedSemicolonInGroup(pos int) *SyntaxError {
	return &SyntaxError{
		Kind:    "expected_semicolon_in_group",
		Pos:     pos,
		Message: "a \"{ ... }\" group requires a \";\" before the closing \"}\"",
	}
}

func newInvalidRedirectTarget(pos int, detail string) *SyntaxError {
	return &SyntaxError{
		Kind:    "invalid_redirect_target",
		Pos:     pos,
		Message: detail,
	}
}

func newReservedWordInWrongPosition(pos int, word string) *SyntaxError {
	return &SyntaxError{
		Kind:    "reserved_word_in_wrong_position",
		Pos:     pos,
		Message: fmt.Sprintf("%q may not appear here", word),
	}
}

func newEmptyCommand(pos int) *SyntaxError {
	return &SyntaxError{
		Kind:    "empty_command",
		Pos:     pos,
		Message: "expected a command",
	}
}
