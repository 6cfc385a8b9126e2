package explain_test

import (
	"strings"
	"testing"

	"github.com/aledsdavies/explainshell/internal/explain"
	"github.com/aledsdavies/explainshell/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExplainer() *explain.Explainer {
	s := store.NewMemStore()
	s.AddManPage(&store.ManPage{
		Source:   "ls.1.gz",
		Name:     "ls",
		Synopsis: "ls - list directory contents",
		Paragraphs: []store.Paragraph{
			{Idx: 0, Text: "use a long listing format", Section: "OPTIONS", IsOption: true, Short: []string{"-l"}},
		},
	})
	return explain.New(s)
}

func TestExplainKnownCommand(t *testing.T) {
	e := newExplainer()
	ex, err := e.Explain("ls -l")
	require.NoError(t, err)
	require.Len(t, ex.Groups, 2)
	assert.Equal(t, "command0", ex.Groups[1].Name)
	require.Len(t, ex.Groups[1].Results, 2)
	assert.Equal(t, "ls - list directory contents", ex.Groups[1].Results[0].Text)
}

func TestExplainRejectsNewlines(t *testing.T) {
	e := newExplainer()
	_, err := e.Explain("ls\n-l")
	var ie *explain.InputError
	require.ErrorAs(t, err, &ie)
}

func TestExplainRejectsOversizedInput(t *testing.T) {
	e := newExplainer()
	_, err := e.Explain("ls " + strings.Repeat("a", 1000))
	var ie *explain.InputError
	require.ErrorAs(t, err, &ie)

	e.MaxInputBytes = 2000
	_, err = e.Explain("ls " + strings.Repeat("a", 1000))
	require.NoError(t, err)
}

func TestExplainUnknownProgram(t *testing.T) {
	e := newExplainer()
	_, err := e.Explain("nosuchprogram")
	var pnf *store.ProgramNotFoundError
	require.ErrorAs(t, err, &pnf)
}

func TestExplainEmptyInput(t *testing.T) {
	e := newExplainer()
	ex, err := e.Explain("")
	require.NoError(t, err)
	require.Len(t, ex.Groups, 1)
	assert.Empty(t, ex.Groups[0].Results)
}
