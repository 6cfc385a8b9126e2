package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/explainshell/internal/ast"
)

func TestParseSimpleCommand(t *testing.T) {
	list, err := Parse("grep -i foo bar.txt")
	require.NoError(t, err)
	require.Len(t, list.Pipelines, 1)
	require.Len(t, list.Pipelines[0].Elements, 1)

	cmd, ok := list.Pipelines[0].Elements[0].(*ast.Command)
	require.True(t, ok)
	words := cmd.Words()
	require.Len(t, words, 4)
	assert.Equal(t, "grep", words[0].Text)
	assert.Equal(t, "bar.txt", words[3].Text)
}

func TestParsePipeline(t *testing.T) {
	list, err := Parse("cat file.txt | grep foo | wc -l")
	require.NoError(t, err)
	require.Len(t, list.Pipelines, 1)
	pipe := list.Pipelines[0]
	require.Len(t, pipe.Elements, 3)
	require.Len(t, pipe.Pipes, 2)
	assert.Equal(t, "|", pipe.Pipes[0].Op)
}

func TestParseLogicalList(t *testing.T) {
	list, err := Parse("make build && make test || echo failed")
	require.NoError(t, err)
	require.Len(t, list.Pipelines, 3)
	require.Len(t, list.Ops, 2)
	assert.Equal(t, "&&", list.Ops[0].Op)
	assert.Equal(t, "||", list.Ops[1].Op)
	assert.Nil(t, list.TrailingOp)
}

func TestParseTrailingBackground(t *testing.T) {
	list, err := Parse("sleep 10 &")
	require.NoError(t, err)
	require.Len(t, list.Pipelines, 1)
	require.NotNil(t, list.TrailingOp)
	assert.Equal(t, "&", list.TrailingOp.Op)
}

func TestParseRedirectAndFD(t *testing.T) {
	list, err := Parse("cmd 2>&1 >out.txt")
	require.NoError(t, err)
	cmd := list.Pipelines[0].Elements[0].(*ast.Command)
	var redirs []*ast.Redirect
	for _, p := range cmd.Parts {
		if r, ok := p.(*ast.Redirect); ok {
			redirs = append(redirs, r)
		}
	}
	require.Len(t, redirs, 2)
	assert.True(t, redirs[0].HasFD)
	assert.Equal(t, 2, redirs[0].SrcFD)
	assert.Equal(t, ast.RedirOut, redirs[0].Kind)
	assert.True(t, redirs[0].Target.HasDup)
	assert.Equal(t, 1, redirs[0].Target.DupFD)

	assert.False(t, redirs[1].HasFD)
	assert.Equal(t, ast.RedirOut, redirs[1].Kind)
	assert.Equal(t, "out.txt", redirs[1].Target.Word.Text)
}

func TestParseProcessSubstitutionArgument(t *testing.T) {
	list, err := Parse("cat <(echo x) >out 2>&1")
	require.NoError(t, err)
	cmd := list.Pipelines[0].Elements[0].(*ast.Command)
	words := cmd.Words()
	require.Len(t, words, 2)
	assert.Equal(t, "<(echo x)", words[1].Text)
	require.Len(t, words[1].Parts, 1)
	assert.Equal(t, ast.ExpansionSubstitution, words[1].Parts[0].Kind)
}

func TestParseSubshell(t *testing.T) {
	list, err := Parse("(cd /tmp && ls)")
	require.NoError(t, err)
	require.Len(t, list.Pipelines[0].Elements, 1)
	sub, ok := list.Pipelines[0].Elements[0].(*ast.Compound)
	require.True(t, ok)
	assert.Equal(t, ast.CompoundSubshell, sub.Group)
	require.Len(t, sub.Body.Pipelines, 2)
}

func TestParseBraceGroupRequiresSemicolon(t *testing.T) {
	_, err := Parse("{ echo hi }")
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, "expected_semicolon_in_group", synErr.Kind)
}

func TestParseBraceGroup(t *testing.T) {
	list, err := Parse("{ echo hi; echo bye; }")
	require.NoError(t, err)
	grp, ok := list.Pipelines[0].Elements[0].(*ast.Compound)
	require.True(t, ok)
	assert.Equal(t, ast.CompoundGroupCmd, grp.Group)
	require.NotNil(t, grp.OpenWord)
	require.NotNil(t, grp.CloseWord)
	require.Len(t, grp.Body.Pipelines, 2)
}

func TestParseFunctionDeclaration(t *testing.T) {
	list, err := Parse("deploy() { echo start; echo end; }")
	require.NoError(t, err)
	fn, ok := list.Pipelines[0].Elements[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "deploy", fn.Name.Text)
	assert.Equal(t, ast.CompoundGroupCmd, fn.Body.Group)
}

func TestParseIfClause(t *testing.T) {
	list, err := Parse("if grep -q foo file; then echo yes; else echo no; fi")
	require.NoError(t, err)
	ifc, ok := list.Pipelines[0].Elements[0].(*ast.IfClause)
	require.True(t, ok)
	require.Len(t, ifc.Branches, 1)
	require.NotNil(t, ifc.Else)
	// if, then, else, fi
	require.Len(t, ifc.Keywords, 4)
	assert.Equal(t, "if", ifc.Keywords[0].Word)
	assert.Equal(t, "fi", ifc.Keywords[len(ifc.Keywords)-1].Word)
}

func TestParseIfElifChain(t *testing.T) {
	list, err := Parse("if a; then b; elif c; then d; fi")
	require.NoError(t, err)
	ifc := list.Pipelines[0].Elements[0].(*ast.IfClause)
	require.Len(t, ifc.Branches, 2)
	assert.Nil(t, ifc.Else)
}

func TestParseForClauseWithIn(t *testing.T) {
	list, err := Parse("for f in a b c; do echo $f; done")
	require.NoError(t, err)
	forc, ok := list.Pipelines[0].Elements[0].(*ast.ForClause)
	require.True(t, ok)
	assert.Equal(t, "f", forc.Var.Text)
	assert.True(t, forc.HasIn)
	require.Len(t, forc.Items, 3)
}

func TestParseForClauseWithoutIn(t *testing.T) {
	list, err := Parse("for f; do echo $f; done")
	require.NoError(t, err)
	forc := list.Pipelines[0].Elements[0].(*ast.ForClause)
	assert.False(t, forc.HasIn)
	assert.Empty(t, forc.Items)
}

func TestParseSelectClause(t *testing.T) {
	list, err := Parse("select opt in a b; do echo $opt; done")
	require.NoError(t, err)
	sel, ok := list.Pipelines[0].Elements[0].(*ast.SelectClause)
	require.True(t, ok)
	assert.Equal(t, "opt", sel.Var.Text)
	assert.True(t, sel.HasIn)
	require.Len(t, sel.Items, 2)
}

func TestParseWhileAndUntil(t *testing.T) {
	list, err := Parse("while true; do echo x; done")
	require.NoError(t, err)
	wc := list.Pipelines[0].Elements[0].(*ast.WhileClause)
	assert.False(t, wc.Until)

	list2, err := Parse("until false; do echo x; done")
	require.NoError(t, err)
	uc := list2.Pipelines[0].Elements[0].(*ast.WhileClause)
	assert.True(t, uc.Until)
}

func TestParseNegatedPipeline(t *testing.T) {
	list, err := Parse("! grep -q foo file")
	require.NoError(t, err)
	assert.True(t, list.Pipelines[0].Negated)
}

func TestParseLeadingAssignment(t *testing.T) {
	list, err := Parse("FOO=bar BAZ=qux cmd arg")
	require.NoError(t, err)
	cmd := list.Pipelines[0].Elements[0].(*ast.Command)
	a0, ok := cmd.Parts[0].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "FOO", a0.Name)
	assert.Equal(t, "bar", a0.Value.Text)

	a1, ok := cmd.Parts[1].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "BAZ", a1.Name)

	words := cmd.Words()
	require.Len(t, words, 2)
	assert.Equal(t, "cmd", words[0].Text)
}

func TestParseHeredocTerminator(t *testing.T) {
	list, err := Parse("cat <<EOF")
	require.NoError(t, err)
	cmd := list.Pipelines[0].Elements[0].(*ast.Command)
	r := cmd.Parts[1].(*ast.Redirect)
	assert.Equal(t, ast.RedirHeredoc, r.Kind)
	assert.Equal(t, "EOF", r.Target.Heredoc)
}

func TestParseHeredocStripTerminator(t *testing.T) {
	list, err := Parse("cat <<-EOF")
	require.NoError(t, err)
	cmd := list.Pipelines[0].Elements[0].(*ast.Command)
	r := cmd.Parts[1].(*ast.Redirect)
	assert.Equal(t, ast.RedirHeredocStrip, r.Kind)
	assert.Equal(t, "EOF", r.Target.Heredoc)
}

func TestParseUnclosedSubshellError(t *testing.T) {
	_, err := Parse("(echo hi")
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, "unclosed_group", synErr.Kind)
}

func TestParseEmptyCommandError(t *testing.T) {
	_, err := Parse("cmd | | cmd2")
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, "empty_command", synErr.Kind)
}

func TestParseBracePlaceholderWord(t *testing.T) {
	list, err := Parse("find . -exec grep x {} +")
	require.NoError(t, err)
	cmd := list.Pipelines[0].Elements[0].(*ast.Command)
	words := cmd.Words()
	require.Len(t, words, 7)
	assert.Equal(t, "{}", words[5].Text)
	assert.Equal(t, "+", words[6].Text)
}

func TestParseRedirectSpanCoversTarget(t *testing.T) {
	list, err := Parse("cmd 2>&1")
	require.NoError(t, err)
	cmd := list.Pipelines[0].Elements[0].(*ast.Command)
	r := cmd.Parts[1].(*ast.Redirect)
	assert.Equal(t, 4, r.Sp.Start)
	assert.Equal(t, 8, r.Sp.End)
}

func TestParseDanglingCompoundCloser(t *testing.T) {
	_, err := Parse("echo hi; done")
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, "reserved_word_in_wrong_position", synErr.Kind)
}
