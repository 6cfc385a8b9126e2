// Package matcher walks the parser's AST and classifies every span of the
// input as a program, a known flag, an argument, a shell construct, or
// unknown, producing grouped explanation spans.
package matcher

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/aledsdavies/explainshell/internal/ast"
	"github.com/aledsdavies/explainshell/internal/help"
	"github.com/aledsdavies/explainshell/internal/lexer"
	"github.com/aledsdavies/explainshell/internal/parser"
	"github.com/aledsdavies/explainshell/internal/store"
	"github.com/aledsdavies/explainshell/internal/util"
)

// Result is one annotated span of the input. Text is the explanation drawn
// from a man page or the help catalog; an empty Text marks the span as
// unknown. Match is filled during finalization with the exact input slice
// the span covers, and HelpClass is a stable identifier shared by every
// span carrying the same explanation text.
type Result struct {
	Start     int
	End       int
	Text      string
	Match     string
	HelpClass string
}

// Unknown reports whether this span carries no explanation.
func (r Result) Unknown() bool { return r.Text == "" }

// Group is a named bucket of results: "shell" for shell constructs, or
// "commandN" for the Nth simple command. Command groups carry the resolved
// man page (nil when the program was not found) and any suggested
// alternatives.
type Group struct {
	Name        string
	Results     []Result
	ManPage     *store.ManPage
	Suggestions []*store.ManPage
}

// ExpansionSpan records a parameter/command/process/tilde substitution
// found inside any visited word.
type ExpansionSpan struct {
	Start int
	End   int
	Kind  ast.ExpansionKind
}

// Explanation is the full output of one Match call.
type Explanation struct {
	Groups     []*Group
	Expansions []ExpansionSpan
}

// AllResults returns every result across all groups, sorted by start.
func (e *Explanation) AllResults() []Result {
	var all []Result
	for _, g := range e.Groups {
		all = append(all, g.Results...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Start < all[j].Start })
	return all
}

// NotImplementedError reports a bash construct the grammar explicitly
// declines to handle.
type NotImplementedError struct {
	Construct string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("bash construct not implemented: %s", e.Construct)
}

// notImplemented lists reserved words opening constructs outside the
// supported grammar subset.
var notImplemented = map[string]bool{
	"case":     true,
	"coproc":   true,
	"function": true,
}

var shortSeriesRe = regexp.MustCompile(`^-[^-].+`)

// frame is one entry of the matcher's group stack. endWords is non-nil when
// the group is a nested command awaiting one of the listed terminator words
// (an empty non-nil slice means the nested command runs to the end).
type frame struct {
	group    *Group
	endWords []string
}

// Matcher holds the per-request state threaded through the AST walk.
type Matcher struct {
	s       string
	store   store.Store
	section string

	groups      []*Group
	stack       []frame
	compounds   []string // open compound contexts, for reserved-word help selection
	functions   map[string]bool
	expansions  []ExpansionSpan
	numCommands int

	prevOption    *store.Paragraph
	currentOption *store.Paragraph

	lookupErr *store.ProgramNotFoundError
}

// Match parses s and annotates every span of it against st. section, when
// non-empty, biases man-page lookups to that man section.
func Match(s string, st store.Store, section string) (*Explanation, error) {
	m := &Matcher{
		s:         s,
		store:     st,
		section:   section,
		functions: make(map[string]bool),
	}
	shell := &Group{Name: "shell"}
	m.groups = []*Group{shell}
	m.stack = []frame{{group: shell}}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return &Explanation{Groups: m.groups}, nil
	}
	if strings.HasPrefix(trimmed, "#") {
		// The whole input is a comment; there is nothing to parse.
		i := strings.IndexByte(s, '#')
		shell.Results = append(shell.Results, Result{
			Start: i, End: len(s), Text: help.Comment, Match: s[i:], HelpClass: "help-0",
		})
		return &Explanation{Groups: m.groups}, nil
	}

	if err := m.preflight(); err != nil {
		return nil, err
	}

	root, err := parser.Parse(s)
	if err != nil {
		return nil, err
	}
	m.visitList(root)

	if err := m.promoteLookupError(); err != nil {
		return nil, err
	}

	m.finalize()
	return &Explanation{Groups: m.groups, Expansions: m.expansions}, nil
}

// preflight rejects constructs outside the supported grammar before the
// parser turns them into a less useful syntax error.
func (m *Matcher) preflight() error {
	l := lexer.New(m.s)
	toks := l.Tokenize()
	if err := l.Err(); err != nil {
		return err
	}

	cmdStart := true
	for _, t := range toks {
		if cmdStart && t.Kind == lexer.Word && !t.Quoted && notImplemented[t.Lexeme] {
			return &NotImplementedError{Construct: t.Lexeme}
		}
		switch t.Kind {
		case lexer.Operator, lexer.LParen, lexer.LBrace:
			cmdStart = true
		case lexer.EOF:
		default:
			cmdStart = false
		}
	}
	return nil
}

// promoteLookupError re-raises the lookup failure when the input was a
// single unknown command with no other shell content - there is nothing
// useful left to say about it.
func (m *Matcher) promoteLookupError() error {
	if m.lookupErr == nil {
		return nil
	}
	if len(m.groups) == 2 && m.groups[1].ManPage == nil && len(m.groups[0].Results) == 0 {
		return m.lookupErr
	}
	return nil
}

func (m *Matcher) shell() *Group { return m.groups[0] }

func (m *Matcher) current() *frame { return &m.stack[len(m.stack)-1] }

func (m *Matcher) emit(g *Group, r Result) {
	g.Results = append(g.Results, r)
}

func unknownResult(sp ast.Span) Result {
	return Result{Start: sp.Start, End: sp.End}
}

func (m *Matcher) recordExpansions(w *ast.Word) {
	for _, p := range w.Parts {
		m.expansions = append(m.expansions, ExpansionSpan{Start: p.Sp.Start, End: p.Sp.End, Kind: p.Kind})
	}
}

// find resolves a program name through the store, trying the requested
// section first when one was configured.
func (m *Matcher) find(name string) ([]*store.ManPage, error) {
	if m.section != "" {
		if pages, err := m.store.FindManPage(name + "." + m.section); err == nil {
			return pages, nil
		}
	}
	return m.store.FindManPage(name)
}

// findOption looks up flag on page and records the hit (or miss) as the
// current option, the two-slot memory driving argument absorption.
func (m *Matcher) findOption(page *store.ManPage, flag string) *store.Paragraph {
	opt := page.FindOption(flag)
	m.currentOption = opt
	return opt
}

func (m *Matcher) visitList(l *ast.List) {
	for i, p := range l.Pipelines {
		m.visitPipeline(p)
		if i < len(l.Ops) {
			op := l.Ops[i]
			m.emit(m.shell(), Result{Start: op.Sp.Start, End: op.Sp.End, Text: help.Operators[op.Op]})
		}
	}
	if l.TrailingOp != nil {
		op := l.TrailingOp
		m.emit(m.shell(), Result{Start: op.Sp.Start, End: op.Sp.End, Text: help.Operators[op.Op]})
	}
}

func (m *Matcher) visitPipeline(p *ast.Pipeline) {
	if p.Negated {
		m.emit(m.shell(), Result{Start: p.Sp.Start, End: p.Sp.Start + 1, Text: help.ReservedWords["!"]})
	}
	for i, el := range p.Elements {
		m.visitElement(el)
		if i < len(p.Pipes) {
			pipe := p.Pipes[i]
			m.emit(m.shell(), Result{Start: pipe.Sp.Start, End: pipe.Sp.End, Text: help.Pipelines})
		}
	}
}

func (m *Matcher) visitElement(n ast.PipelineElement) {
	switch node := n.(type) {
	case *ast.Command:
		m.visitCommand(node)
	case *ast.Compound:
		m.visitCompound(node, false)
	case *ast.Function:
		m.visitFunction(node)
	case *ast.IfClause:
		m.visitIfClause(node)
	case *ast.ForClause:
		m.visitForClause(node)
	case *ast.WhileClause:
		m.visitWhileClause(node)
	case *ast.SelectClause:
		m.visitSelectClause(node)
	}
}

func (m *Matcher) visitCompound(c *ast.Compound, inFunction bool) {
	switch c.Group {
	case ast.CompoundSubshell:
		m.emit(m.shell(), Result{Start: c.Sp.Start, End: c.Sp.Start + 1, Text: help.Subshell})
		m.visitList(c.Body)
		if i := strings.IndexByte(m.s[c.Body.Sp.End:], ')'); i >= 0 {
			pos := c.Body.Sp.End + i
			m.emit(m.shell(), Result{Start: pos, End: pos + 1, Text: help.Subshell})
		}
	case ast.CompoundGroupCmd:
		text := help.ReservedWords["{"]
		if inFunction {
			text = help.FunctionDecl
		}
		if c.OpenWord != nil {
			m.emit(m.shell(), Result{Start: c.OpenWord.Sp.Start, End: c.OpenWord.Sp.End, Text: text})
		}
		m.visitList(c.Body)
		if c.CloseWord != nil {
			m.emit(m.shell(), Result{Start: c.CloseWord.Sp.Start, End: c.CloseWord.Sp.End, Text: text})
		}
	}
	for _, r := range c.Redirects {
		m.visitRedirect(r)
	}
}

func (m *Matcher) visitFunction(f *ast.Function) {
	m.functions[f.Name.Text] = true

	// The declaration span covers "name()".
	end := f.Name.Sp.End
	if i := strings.IndexByte(m.s[f.Name.Sp.End:], ')'); i >= 0 {
		end = f.Name.Sp.End + i + 1
	}
	m.emit(m.shell(), Result{Start: f.Name.Sp.Start, End: end, Text: help.FunctionDecl})
	m.visitCompound(f.Body, true)
}

// visitKeywords annotates a compound statement's reserved words using the
// innermost open compound context ("done" inside a for loop gets the
// for-loop documentation).
func (m *Matcher) visitKeywords(kws []*ast.ReservedWord) {
	ctx := m.compounds[len(m.compounds)-1]
	for _, kw := range kws {
		text := help.CompoundReservedWords[ctx][kw.Word]
		m.emit(m.shell(), Result{Start: kw.Sp.Start, End: kw.Sp.End, Text: text})
	}
}

func (m *Matcher) visitIfClause(c *ast.IfClause) {
	m.compounds = append(m.compounds, "if")
	m.visitKeywords(c.Keywords)
	for _, br := range c.Branches {
		m.visitList(br.Cond)
		m.visitList(br.Then)
	}
	if c.Else != nil {
		m.visitList(c.Else)
	}
	m.compounds = m.compounds[:len(m.compounds)-1]
	for _, r := range c.Redirects {
		m.visitRedirect(r)
	}
}

func (m *Matcher) visitForClause(c *ast.ForClause) {
	m.compounds = append(m.compounds, "for")
	m.visitKeywords(c.Keywords)
	m.emit(m.shell(), unknownResult(c.Var.Sp))
	for _, it := range c.Items {
		m.recordExpansions(it)
		m.emit(m.shell(), unknownResult(it.Sp))
	}
	m.visitList(c.Body)
	m.compounds = m.compounds[:len(m.compounds)-1]
	for _, r := range c.Redirects {
		m.visitRedirect(r)
	}
}

func (m *Matcher) visitWhileClause(c *ast.WhileClause) {
	ctx := "while"
	if c.Until {
		ctx = "until"
	}
	m.compounds = append(m.compounds, ctx)
	m.visitKeywords(c.Keywords)
	m.visitList(c.Cond)
	m.visitList(c.Body)
	m.compounds = m.compounds[:len(m.compounds)-1]
	for _, r := range c.Redirects {
		m.visitRedirect(r)
	}
}

func (m *Matcher) visitSelectClause(c *ast.SelectClause) {
	m.compounds = append(m.compounds, "select")
	m.visitKeywords(c.Keywords)
	m.emit(m.shell(), unknownResult(c.Var.Sp))
	for _, it := range c.Items {
		m.recordExpansions(it)
		m.emit(m.shell(), unknownResult(it.Sp))
	}
	m.visitList(c.Body)
	m.compounds = m.compounds[:len(m.compounds)-1]
	for _, r := range c.Redirects {
		m.visitRedirect(r)
	}
}

func (m *Matcher) visitRedirect(r *ast.Redirect) {
	text := help.RedirectionKind[r.Kind]
	if r.Target.HasDup && r.Kind == ast.RedirOut {
		// ">&N" was rewritten to kind '>' by the parser; the dup target
		// picks the fd-duplication documentation back.
		text = help.RedirectionKind[ast.RedirDupOut]
	}
	m.emit(m.shell(), Result{Start: r.Sp.Start, End: r.Sp.End, Text: text})
	if r.Target.Word != nil {
		m.recordExpansions(r.Target.Word)
	}
}

// visitCommand handles a simple command: resolve the program word to a
// man page, open a command group, and run every subsequent word through
// the decision ladder.
func (m *Matcher) visitCommand(c *ast.Command) {
	depth := len(m.stack)
	defer func() {
		m.stack = m.stack[:depth]
		m.prevOption, m.currentOption = nil, nil
	}()

	var firstWord *ast.Word
	for _, p := range c.Parts {
		if w, ok := p.(*ast.Word); ok {
			firstWord = w
			break
		}
	}

	if firstWord != nil && m.functions[firstWord.Text] {
		m.visitFunctionCall(c, firstWord)
		return
	}

	parts := util.NewPeekable(c.Parts)
	started := false
	for {
		p, ok := parts.Next()
		if !ok {
			break
		}
		switch part := p.(type) {
		case *ast.Redirect:
			m.visitRedirect(part)
		case *ast.Assignment:
			m.emit(m.shell(), Result{Start: part.Sp.Start, End: part.Sp.End, Text: help.Assignment})
			m.recordExpansions(part.Value)
		case *ast.Word:
			m.recordExpansions(part)
			if !started {
				started = true
				m.startCommand(part, nil, parts)
			} else {
				m.matchWord(part)
			}
		}
	}
}

func (m *Matcher) visitFunctionCall(c *ast.Command, name *ast.Word) {
	first := true
	for _, p := range c.Parts {
		switch part := p.(type) {
		case *ast.Redirect:
			m.visitRedirect(part)
		case *ast.Assignment:
			m.emit(m.shell(), Result{Start: part.Sp.Start, End: part.Sp.End, Text: help.Assignment})
			m.recordExpansions(part.Value)
		case *ast.Word:
			m.recordExpansions(part)
			if first {
				first = false
				m.emit(m.shell(), Result{Start: part.Sp.Start, End: part.Sp.End, Text: help.FunctionCall(name.Text)})
			} else {
				m.emit(m.shell(), Result{Start: part.Sp.Start, End: part.Sp.End, Text: help.FunctionArg(name.Text)})
			}
		}
	}
}

// startCommand opens a new command group for w. endWords is non-nil when
// the group is a nested command (rule 4/7 of the decision ladder); parts,
// when non-nil, allows probing the following word for multi-word programs.
func (m *Matcher) startCommand(w *ast.Word, endWords []string, parts *util.Peekable[ast.CommandPart]) {
	g := &Group{Name: fmt.Sprintf("command%d", m.numCommands)}
	m.numCommands++
	m.groups = append(m.groups, g)
	m.stack = append(m.stack, frame{group: g, endWords: endWords})
	m.prevOption, m.currentOption = nil, nil

	// A program word produced by an expansion cannot be resolved; leave
	// the group empty so subsequent words fall through as unknown.
	if len(w.Parts) > 0 {
		m.emit(g, unknownResult(w.Sp))
		return
	}

	pages, err := m.find(w.Text)
	if err != nil {
		var pnf *store.ProgramNotFoundError
		if errors.As(err, &pnf) && m.lookupErr == nil {
			m.lookupErr = pnf
		}
		m.emit(g, unknownResult(w.Sp))
		return
	}

	page := pages[0]
	end := w.Sp.End
	if page.MultiCmd && parts != nil {
		if next, ok := parts.Peek(); ok {
			if nw, isWord := next.(*ast.Word); isWord && len(nw.Parts) == 0 {
				if multi, merr := m.find(w.Text + " " + nw.Text); merr == nil {
					pages = multi
					page = multi[0]
					end = nw.Sp.End
					parts.Next() // the second program word is consumed here
				}
			}
		}
	}

	g.ManPage = page
	g.Suggestions = pages[1:]
	m.emit(g, Result{Start: w.Sp.Start, End: end, Text: page.SynopsisText()})
}

// matchWord applies the decision ladder to a non-program word of the
// current command group.
func (m *Matcher) matchWord(w *ast.Word) {
	fr := m.current()

	// Rule 1: nested-command terminator.
	if fr.endWords != nil && containsWord(fr.endWords, w.Text) {
		m.stack = m.stack[:len(m.stack)-1]
		parent := m.current().group
		text := ""
		if n := len(parent.Results); n > 0 {
			text = parent.Results[n-1].Text
		}
		m.emit(parent, Result{Start: w.Sp.Start, End: w.Sp.End, Text: text})
		m.prevOption, m.currentOption = nil, nil
		return
	}

	m.prevOption = m.currentOption
	m.currentOption = nil
	page := fr.group.ManPage

	if page != nil {
		// Rule 2: exact option match, stripping any "=value" suffix from
		// long options.
		lookup := w.Text
		hadEq := false
		if strings.HasPrefix(lookup, "--") {
			if i := strings.IndexByte(lookup, '='); i >= 0 {
				lookup = lookup[:i]
				hadEq = true
			}
		}
		if opt := m.findOption(page, lookup); opt != nil {
			if hadEq {
				// The argument was inside this word; nothing left to absorb.
				m.currentOption = nil
			}
			m.emit(fr.group, Result{Start: w.Sp.Start, End: w.Sp.End, Text: opt.Text})
			return
		}

		// Rule 3: short-option series.
		if shortSeriesRe.MatchString(w.Text) {
			if m.matchShortSeries(fr.group, page, w) {
				return
			}
			m.currentOption = nil
		}
	}

	// Rule 4: previous-option argument.
	if m.prevOption != nil && m.prevOption.ExpectsArg {
		vals := m.prevOption.ExpectsArgValues
		if len(vals) == 0 || containsWord(vals, w.Text) {
			if m.prevOption.NestsCommand() {
				m.startCommand(w, m.prevOption.NestedCmdTerminators, nil)
				return
			}
			if n := len(fr.group.Results); n > 0 {
				fr.group.Results[n-1].End = w.Sp.End
			} else {
				m.emit(fr.group, Result{Start: w.Sp.Start, End: w.Sp.End, Text: m.prevOption.Text})
			}
			m.currentOption = nil
			return
		}
	}

	if page != nil {
		// Rule 5: partial match without a leading dash.
		if page.PartialMatch {
			if res, all := m.fuzzyChars(page, w.Text, w.Sp.Start); all {
				fr.group.Results = append(fr.group.Results, res...)
				return
			}
			m.currentOption = nil
		}

		// Rule 6: positional argument.
		if _, text, ok := page.FirstArgument(); ok {
			m.emit(fr.group, Result{Start: w.Sp.Start, End: w.Sp.End, Text: text})
			return
		}

		// Rule 7: nested command by argument.
		if page.NestsCommand() {
			m.startCommand(w, page.NestedCmdTerminators, nil)
			return
		}
	}

	// Rule 8: unknown.
	m.emit(fr.group, unknownResult(w.Sp))
}

// matchShortSeries handles a "-abc"-shaped word. It reports whether the
// word was consumed; false sends the caller on to the next ladder rule.
func (m *Matcher) matchShortSeries(g *Group, page *store.ManPage, w *ast.Word) bool {
	res, firstKnown := m.fuzzyDash(page, w.Text, w.Sp.Start)
	if firstKnown {
		g.Results = append(g.Results, res...)
		return true
	}
	if page.PartialMatch {
		// The dash itself isn't a flag here; retry from the first
		// character, folding the dash into the leading flag's span.
		chars, all := m.fuzzyChars(page, w.Text[1:], w.Sp.Start+1)
		if all && len(chars) > 0 {
			chars[0].Start = w.Sp.Start
			g.Results = append(g.Results, chars...)
		} else {
			m.emit(g, unknownResult(w.Sp))
		}
		return true
	}
	return false
}

// fuzzyDash splits "-abc" into "-a" followed by single characters. The
// moment a token resolves to an option that expects an argument, the
// entire remainder of the word becomes that option's argument and
// splitting stops ("-r0n1" yields "-r", "0", "n1").
func (m *Matcher) fuzzyDash(page *store.ManPage, text string, start int) ([]Result, bool) {
	rs := []rune(text[1:])
	tokens := []string{"-" + string(rs[0])}
	for _, r := range rs[1:] {
		tokens = append(tokens, string(r))
	}

	var out []Result
	firstKnown := false
	pos := start
	for i, tok := range tokens {
		flag := tok
		if !strings.HasPrefix(tok, "-") {
			flag = "-" + tok
		}
		opt := m.findOption(page, flag)
		if opt == nil {
			out = append(out, Result{Start: pos, End: pos + len(tok)})
			pos += len(tok)
			continue
		}
		if i == 0 {
			firstKnown = true
		}
		if opt.ExpectsArg {
			out = append(out, Result{Start: pos, End: start + len(text), Text: opt.Text})
			return out, firstKnown
		}
		out = append(out, Result{Start: pos, End: pos + len(tok), Text: opt.Text})
		pos += len(tok)
	}
	return out, firstKnown
}

// fuzzyChars splits a dashless word character by character ("xzvf" for a
// partial-match program), reporting whether every character resolved.
func (m *Matcher) fuzzyChars(page *store.ManPage, text string, start int) ([]Result, bool) {
	var out []Result
	all := true
	pos := start
	for _, r := range text {
		tok := string(r)
		opt := m.findOption(page, "-"+tok)
		if opt == nil {
			all = false
			out = append(out, Result{Start: pos, End: pos + len(tok)})
		} else {
			out = append(out, Result{Start: pos, End: pos + len(tok), Text: opt.Text})
		}
		pos += len(tok)
	}
	return out, all
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

// finalize runs the post-traversal passes: mark uncovered positions as
// unknown, merge adjacent equal matches, fill match strings, and assign
// help classes.
func (m *Matcher) finalize() {
	m.markUnparsed()
	for _, g := range m.groups {
		sort.SliceStable(g.Results, func(i, j int) bool { return g.Results[i].Start < g.Results[j].Start })
	}
	m.mergeAdjacent()
	for _, g := range m.groups {
		for i := range g.Results {
			r := &g.Results[i]
			r.Match = m.s[r.Start:r.End]
		}
	}
	m.assignHelpClasses()
}

// markUnparsed covers every input position with a span: whitespace counts
// as covered, a trailing uncovered "#" run becomes a single comment span,
// and any other uncovered position becomes a one-byte unknown span in the
// shell group.
func (m *Matcher) markUnparsed() {
	covered := make([]bool, len(m.s))
	lastEnd := 0
	for _, g := range m.groups {
		for _, r := range g.Results {
			for i := r.Start; i < r.End; i++ {
				covered[i] = true
			}
			if r.End > lastEnd {
				lastEnd = r.End
			}
		}
	}
	for i, r := range m.s {
		if unicode.IsSpace(r) {
			for b := i; b < i+len(string(r)); b++ {
				covered[b] = true
			}
		}
	}

	for i := 0; i < len(m.s); i++ {
		if covered[i] {
			continue
		}
		if m.s[i] == '#' && i >= lastEnd {
			m.emit(m.shell(), Result{Start: i, End: len(m.s), Text: help.Comment})
			break
		}
		m.emit(m.shell(), Result{Start: i, End: i + 1})
	}
}

// mergeAdjacent collapses, within each group, runs of results that share
// the same explanation text and occupy consecutive positions in the global
// start-sorted ordering ("-v -v -v" becomes one span).
func (m *Matcher) mergeAdjacent() {
	type ref struct {
		start int
		g, i  int
	}
	var all []ref
	for gi, g := range m.groups {
		for ri, r := range g.Results {
			all = append(all, ref{start: r.Start, g: gi, i: ri})
		}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].start < all[b].start })

	globalIdx := make([][]int, len(m.groups))
	for gi, g := range m.groups {
		globalIdx[gi] = make([]int, len(g.Results))
	}
	for k, r := range all {
		globalIdx[r.g][r.i] = k
	}

	for gi, g := range m.groups {
		var merged []Result
		i := 0
		for i < len(g.Results) {
			j := i + 1
			for j < len(g.Results) && g.Results[j].Text == g.Results[i].Text {
				j++
			}
			chunk := make([]int, 0, j-i)
			for k := i; k < j; k++ {
				chunk = append(chunk, k)
			}
			for _, run := range util.GroupContinuous(chunk, func(k int) int { return globalIdx[gi][k] }) {
				first, last := g.Results[run[0]], g.Results[run[len(run)-1]]
				merged = append(merged, Result{Start: first.Start, End: last.End, Text: first.Text})
			}
			i = j
		}
		g.Results = merged
	}
}

// assignHelpClasses gives every span sharing the same explanation text a
// stable identifier, so a UI can highlight them together. Unknown spans
// all share the "unknown" class.
func (m *Matcher) assignHelpClasses() {
	classes := make(map[string]string)
	n := 0
	for _, g := range m.groups {
		for i := range g.Results {
			r := &g.Results[i]
			if r.Unknown() {
				r.HelpClass = "unknown"
				continue
			}
			c, ok := classes[r.Text]
			if !ok {
				c = fmt.Sprintf("help-%d", n)
				n++
				classes[r.Text] = c
			}
			r.HelpClass = c
		}
	}
}
