// Package explain wires the lexer, parser, and matcher into the single
// Explain entry point, and owns input validation.
package explain

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/explainshell/internal/config"
	"github.com/aledsdavies/explainshell/internal/matcher"
	"github.com/aledsdavies/explainshell/internal/store"
)

// InputError reports an input that was rejected before parsing.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// Explainer explains command lines against a man-page store. It is safe
// for concurrent use as long as its Store is.
type Explainer struct {
	Store store.Store
	// MaxInputBytes caps the length of an input line; zero means the
	// configured default.
	MaxInputBytes int
}

// New creates an Explainer over st with the default input cap.
func New(st store.Store) *Explainer {
	return &Explainer{Store: st, MaxInputBytes: config.DefaultMaxInputBytes}
}

// Explain annotates one command line.
func (e *Explainer) Explain(input string) (*matcher.Explanation, error) {
	return e.ExplainSection(input, "")
}

// ExplainSection annotates one command line, biasing man-page lookups to
// the given man section when non-empty.
func (e *Explainer) ExplainSection(input, section string) (*matcher.Explanation, error) {
	limit := e.MaxInputBytes
	if limit <= 0 {
		limit = config.DefaultMaxInputBytes
	}
	if len(input) > limit {
		return nil, &InputError{Reason: fmt.Sprintf("command line exceeds %d bytes", limit)}
	}
	if strings.ContainsAny(input, "\n\r") {
		return nil, &InputError{Reason: "command line may not contain newlines"}
	}
	return matcher.Match(input, e.Store, section)
}
