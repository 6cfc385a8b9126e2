// Package parser implements a recursive-descent parser for a useful
// subset of the POSIX/Bash grammar: it consumes the lexer's token stream
// and produces a position-annotated ast.List, peeking at most two tokens
// ahead.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aledsdavies/explainshell/internal/ast"
	"github.com/aledsdavies/explainshell/internal/lexer"
)

var assignmentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// Parser turns a token stream into an ast.List.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// Parse lexes and parses src, returning the top-level command list.
func Parse(src string) (*ast.List, error) {
	l := lexer.New(src)
	toks := l.Tokenize()
	if err := l.Err(); err != nil {
		return nil, err
	}

	p := &Parser{toks: toks}
	list, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.EOF {
		if t := p.cur(); t.Kind == lexer.Word && !t.Quoted && isCompoundCloser(t.Lexeme) {
			return nil, newReservedWordInWrongPosition(t.Start, t.Lexeme)
		}
		return nil, newUnexpectedToken(p.cur().Start, "end of input", p.cur().String())
	}
	return list, nil
}

// isCompoundCloser reports whether word closes (or continues) a compound
// statement; such a word with no open compound is a positioning error.
func isCompoundCloser(word string) bool {
	switch word {
	case "then", "fi", "elif", "else", "do", "done":
		return true
	}
	return false
}

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }

func (p *Parser) peek(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF sentinel
	}
	return p.toks[i]
}

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func isWordLex(t lexer.Token, lexeme string) bool {
	return t.Kind == lexer.Word && !t.Quoted && t.Lexeme == lexeme
}

// isListTerminator reports whether tok can never start a pipeline, meaning
// the list being parsed ends here (possibly via a trailing separator that
// was already consumed by the caller).
func isListTerminator(t lexer.Token) bool {
	switch t.Kind {
	case lexer.EOF, lexer.RParen, lexer.RBrace:
		return true
	case lexer.Word:
		return !t.Quoted && isCompoundCloser(t.Lexeme)
	}
	return false
}

func wordFromToken(t lexer.Token) *ast.Word {
	return &ast.Word{Text: t.Lexeme, Sp: ast.Span{Start: t.Start, End: t.End}, Parts: t.Expansions}
}

func reservedFromToken(t lexer.Token) *ast.ReservedWord {
	return &ast.ReservedWord{Word: t.Lexeme, Sp: ast.Span{Start: t.Start, End: t.End}}
}

// parseList parses "pipeline ((';'|'&'|'&&'|'||') pipeline?)*", stopping
// when the next separator would be followed by a token that cannot start a
// pipeline (EOF, a closing bracket, or a reserved word belonging to an
// enclosing compound).
func (p *Parser) parseList() (*ast.List, error) {
	start := p.cur().Start
	list := &ast.List{}

	first, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	list.Pipelines = append(list.Pipelines, first)
	end := first.Sp.End

	for p.cur().Kind == lexer.Operator && isListSeparator(p.cur().Lexeme) {
		opTok := p.advance()
		end = opTok.End

		if isListTerminator(p.cur()) {
			list.TrailingOp = &ast.ListOp{Op: opTok.Lexeme, Sp: ast.Span{Start: opTok.Start, End: opTok.End}}
			break
		}

		list.Ops = append(list.Ops, &ast.ListOp{Op: opTok.Lexeme, Sp: ast.Span{Start: opTok.Start, End: opTok.End}})
		next, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		list.Pipelines = append(list.Pipelines, next)
		end = next.Sp.End
	}

	list.Sp = ast.Span{Start: start, End: end}
	return list, nil
}

func isListSeparator(lexeme string) bool {
	switch lexeme {
	case ";", "&", "&&", "||":
		return true
	}
	return false
}

// parsePipeline parses "'!'? element (('|'|'|&') element)*".
func (p *Parser) parsePipeline() (*ast.Pipeline, error) {
	start := p.cur().Start
	negated := false
	if isWordLex(p.cur(), "!") {
		p.advance()
		negated = true
	}

	first, err := p.parsePipelineElement()
	if err != nil {
		return nil, err
	}
	elems := []ast.PipelineElement{first}
	var pipes []*ast.PipeOp
	end := first.Span().End

	for p.cur().Kind == lexer.Operator && (p.cur().Lexeme == "|" || p.cur().Lexeme == "|&") {
		opTok := p.advance()
		pipes = append(pipes, &ast.PipeOp{Op: opTok.Lexeme, Sp: ast.Span{Start: opTok.Start, End: opTok.End}})
		next, err := p.parsePipelineElement()
		if err != nil {
			return nil, err
		}
		elems = append(elems, next)
		end = next.Span().End
	}

	return &ast.Pipeline{Negated: negated, Elements: elems, Pipes: pipes, Sp: ast.Span{Start: start, End: end}}, nil
}

// parsePipelineElement dispatches to whichever grammar rule the current
// token introduces: a subshell, a brace group, a compound statement, a
// function declaration, or a plain simple command.
func (p *Parser) parsePipelineElement() (ast.PipelineElement, error) {
	tok := p.cur()

	switch {
	case tok.Kind == lexer.LParen:
		return p.parseSubshell()
	case tok.Kind == lexer.LBrace:
		return p.parseGroup()
	case isWordLex(tok, "if"):
		return p.parseIfClause()
	case isWordLex(tok, "for"):
		return p.parseForClause()
	case isWordLex(tok, "while"):
		return p.parseWhileClause(false)
	case isWordLex(tok, "until"):
		return p.parseWhileClause(true)
	case isWordLex(tok, "select"):
		return p.parseSelectClause()
	case tok.Kind == lexer.Word && !tok.Quoted && p.peek(1).Kind == lexer.LParen &&
		p.peek(1).PrecedingWhitespace == "" && p.peek(2).Kind == lexer.RParen:
		return p.parseFunction()
	default:
		return p.parseSimpleCommand()
	}
}

func (p *Parser) parseSubshell() (*ast.Compound, error) {
	open := p.advance() // '('
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.RParen {
		return nil, newUnclosedGroup(open.Start, "(")
	}
	closeTok := p.advance()
	redirs, err := p.parseTrailingRedirects()
	if err != nil {
		return nil, err
	}
	end := closeTok.End
	if len(redirs) > 0 {
		end = redirs[len(redirs)-1].Sp.End
	}
	return &ast.Compound{Group: ast.CompoundSubshell, Body: body, Redirects: redirs, Sp: ast.Span{Start: open.Start, End: end}}, nil
}

func (p *Parser) parseGroup() (*ast.Compound, error) {
	open := p.advance() // '{'
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if body.TrailingOp == nil {
		return nil, newExpectedSemicolonInGroup(p.cur().Start)
	}
	if p.cur().Kind != lexer.RBrace {
		return nil, newUnclosedGroup(open.Start, "{")
	}
	closeTok := p.advance()
	redirs, err := p.parseTrailingRedirects()
	if err != nil {
		return nil, err
	}
	end := closeTok.End
	if len(redirs) > 0 {
		end = redirs[len(redirs)-1].Sp.End
	}
	return &ast.Compound{
		Group:     ast.CompoundGroupCmd,
		Body:      body,
		Redirects: redirs,
		OpenWord:  reservedFromToken(open),
		CloseWord: reservedFromToken(closeTok),
		Sp:        ast.Span{Start: open.Start, End: end},
	}, nil
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	nameTok := p.advance()
	p.advance() // '('
	p.advance() // ')'

	elem, err := p.parsePipelineElement()
	if err != nil {
		return nil, err
	}
	body, ok := elem.(*ast.Compound)
	if !ok {
		return nil, newUnexpectedToken(elem.Span().Start, "a compound command body", "simple command")
	}
	return &ast.Function{Name: wordFromToken(nameTok), Body: body, Sp: ast.Span{Start: nameTok.Start, End: body.Sp.End}}, nil
}

func (p *Parser) parseIfClause() (*ast.IfClause, error) {
	start := p.cur().Start
	var keywords []*ast.ReservedWord

	ifTok := p.advance() // "if"
	keywords = append(keywords, reservedFromToken(ifTok))

	cond, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if !isWordLex(p.cur(), "then") {
		return nil, newUnexpectedToken(p.cur().Start, "\"then\"", p.cur().String())
	}
	keywords = append(keywords, reservedFromToken(p.advance()))

	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	branches := []ast.IfBranch{{Cond: cond, Then: body}}

	for isWordLex(p.cur(), "elif") {
		keywords = append(keywords, reservedFromToken(p.advance()))
		c, err := p.parseList()
		if err != nil {
			return nil, err
		}
		if !isWordLex(p.cur(), "then") {
			return nil, newUnexpectedToken(p.cur().Start, "\"then\"", p.cur().String())
		}
		keywords = append(keywords, reservedFromToken(p.advance()))
		b, err := p.parseList()
		if err != nil {
			return nil, err
		}
		branches = append(branches, ast.IfBranch{Cond: c, Then: b})
	}

	var elseBody *ast.List
	if isWordLex(p.cur(), "else") {
		keywords = append(keywords, reservedFromToken(p.advance()))
		elseBody, err = p.parseList()
		if err != nil {
			return nil, err
		}
	}

	if !isWordLex(p.cur(), "fi") {
		return nil, newUnclosedGroup(start, "if")
	}
	fiTok := p.advance()
	keywords = append(keywords, reservedFromToken(fiTok))

	redirs, err := p.parseTrailingRedirects()
	if err != nil {
		return nil, err
	}
	end := fiTok.End
	if len(redirs) > 0 {
		end = redirs[len(redirs)-1].Sp.End
	}

	return &ast.IfClause{Branches: branches, Else: elseBody, Keywords: keywords, Redirects: redirs, Sp: ast.Span{Start: start, End: end}}, nil
}

func (p *Parser) parseForClause() (*ast.ForClause, error) {
	start := p.cur().Start
	var keywords []*ast.ReservedWord

	forTok := p.advance() // "for"
	keywords = append(keywords, reservedFromToken(forTok))

	if p.cur().Kind != lexer.Word || p.cur().Quoted {
		return nil, newUnexpectedToken(p.cur().Start, "a loop variable name", p.cur().String())
	}
	nameTok := p.advance()

	hasIn := false
	var items []*ast.Word
	if isWordLex(p.cur(), "in") {
		hasIn = true
		keywords = append(keywords, reservedFromToken(p.advance()))
		for !(p.cur().Kind == lexer.Operator && p.cur().Lexeme == ";") && !isWordLex(p.cur(), "do") && p.cur().Kind != lexer.EOF {
			items = append(items, wordFromToken(p.advance()))
		}
	}

	if p.cur().Kind == lexer.Operator && p.cur().Lexeme == ";" {
		p.advance()
	}

	if !isWordLex(p.cur(), "do") {
		return nil, newUnexpectedToken(p.cur().Start, "\"do\"", p.cur().String())
	}
	keywords = append(keywords, reservedFromToken(p.advance()))

	body, err := p.parseList()
	if err != nil {
		return nil, err
	}

	if !isWordLex(p.cur(), "done") {
		return nil, newUnclosedGroup(start, "for")
	}
	doneTok := p.advance()
	keywords = append(keywords, reservedFromToken(doneTok))

	redirs, err := p.parseTrailingRedirects()
	if err != nil {
		return nil, err
	}
	end := doneTok.End
	if len(redirs) > 0 {
		end = redirs[len(redirs)-1].Sp.End
	}

	return &ast.ForClause{
		Var: wordFromToken(nameTok), HasIn: hasIn, Items: items, Body: body,
		Keywords: keywords, Redirects: redirs, Sp: ast.Span{Start: start, End: end},
	}, nil
}

func (p *Parser) parseSelectClause() (*ast.SelectClause, error) {
	start := p.cur().Start
	var keywords []*ast.ReservedWord

	selTok := p.advance() // "select"
	keywords = append(keywords, reservedFromToken(selTok))

	if p.cur().Kind != lexer.Word || p.cur().Quoted {
		return nil, newUnexpectedToken(p.cur().Start, "a select variable name", p.cur().String())
	}
	nameTok := p.advance()

	hasIn := false
	var items []*ast.Word
	if isWordLex(p.cur(), "in") {
		hasIn = true
		keywords = append(keywords, reservedFromToken(p.advance()))
		for !(p.cur().Kind == lexer.Operator && p.cur().Lexeme == ";") && !isWordLex(p.cur(), "do") && p.cur().Kind != lexer.EOF {
			items = append(items, wordFromToken(p.advance()))
		}
	}

	if p.cur().Kind == lexer.Operator && p.cur().Lexeme == ";" {
		p.advance()
	}

	if !isWordLex(p.cur(), "do") {
		return nil, newUnexpectedToken(p.cur().Start, "\"do\"", p.cur().String())
	}
	keywords = append(keywords, reservedFromToken(p.advance()))

	body, err := p.parseList()
	if err != nil {
		return nil, err
	}

	if !isWordLex(p.cur(), "done") {
		return nil, newUnclosedGroup(start, "select")
	}
	doneTok := p.advance()
	keywords = append(keywords, reservedFromToken(doneTok))

	redirs, err := p.parseTrailingRedirects()
	if err != nil {
		return nil, err
	}
	end := doneTok.End
	if len(redirs) > 0 {
		end = redirs[len(redirs)-1].Sp.End
	}

	return &ast.SelectClause{
		Var: wordFromToken(nameTok), HasIn: hasIn, Items: items, Body: body,
		Keywords: keywords, Redirects: redirs, Sp: ast.Span{Start: start, End: end},
	}, nil
}

func (p *Parser) parseWhileClause(until bool) (*ast.WhileClause, error) {
	start := p.cur().Start
	var keywords []*ast.ReservedWord

	kwTok := p.advance() // "while" or "until"
	keywords = append(keywords, reservedFromToken(kwTok))

	cond, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if !isWordLex(p.cur(), "do") {
		return nil, newUnexpectedToken(p.cur().Start, "\"do\"", p.cur().String())
	}
	keywords = append(keywords, reservedFromToken(p.advance()))

	body, err := p.parseList()
	if err != nil {
		return nil, err
	}

	opener := "while"
	if until {
		opener = "until"
	}
	if !isWordLex(p.cur(), "done") {
		return nil, newUnclosedGroup(start, opener)
	}
	doneTok := p.advance()
	keywords = append(keywords, reservedFromToken(doneTok))

	redirs, err := p.parseTrailingRedirects()
	if err != nil {
		return nil, err
	}
	end := doneTok.End
	if len(redirs) > 0 {
		end = redirs[len(redirs)-1].Sp.End
	}

	return &ast.WhileClause{Until: until, Cond: cond, Body: body, Keywords: keywords, Redirects: redirs, Sp: ast.Span{Start: start, End: end}}, nil
}

// parseSimpleCommand parses a run of leading assignments, words, and
// redirects that ends at the first token that cannot extend it.
func (p *Parser) parseSimpleCommand() (*ast.Command, error) {
	start := p.cur().Start
	var parts []ast.CommandPart
	seenWord := false

loop:
	for {
		tok := p.cur()
		switch {
		case tok.Kind == lexer.LBrace && p.peek(1).Kind == lexer.RBrace && p.peek(1).PrecedingWhitespace == "":
			// A bare "{}" inside a command is an ordinary word (find's
			// -exec placeholder), not a group opener.
			open := p.advance()
			closeTok := p.advance()
			parts = append(parts, &ast.Word{Text: "{}", Sp: ast.Span{Start: open.Start, End: closeTok.End}})
			seenWord = true
		case tok.Kind == lexer.EOF, tok.Kind == lexer.Operator, tok.Kind == lexer.RParen, tok.Kind == lexer.RBrace, tok.Kind == lexer.LParen, tok.Kind == lexer.LBrace:
			break loop
		case tok.Kind == lexer.Redir:
			r, err := p.parseRedirect()
			if err != nil {
				return nil, err
			}
			parts = append(parts, r)
		case tok.Kind == lexer.Number && p.peek(1).Kind == lexer.Redir && p.peek(1).PrecedingWhitespace == "":
			r, err := p.parseRedirect()
			if err != nil {
				return nil, err
			}
			parts = append(parts, r)
		case tok.Kind == lexer.Number:
			p.advance()
			parts = append(parts, wordFromToken(tok))
			seenWord = true
		case tok.Kind == lexer.Word:
			if !seenWord && !tok.Quoted && assignmentRe.MatchString(tok.Lexeme) {
				p.advance()
				name, value := splitAssignment(tok)
				parts = append(parts, &ast.Assignment{Name: name, Value: value, Sp: ast.Span{Start: tok.Start, End: tok.End}})
				continue
			}
			p.advance()
			parts = append(parts, wordFromToken(tok))
			seenWord = true
		default:
			break loop
		}
	}

	if len(parts) == 0 {
		return nil, newEmptyCommand(start)
	}
	end := parts[len(parts)-1].Span().End
	return &ast.Command{Parts: parts, Sp: ast.Span{Start: start, End: end}}, nil
}

func splitAssignment(tok lexer.Token) (string, *ast.Word) {
	eq := strings.IndexByte(tok.Lexeme, '=')
	name := tok.Lexeme[:eq]
	valueText := tok.Lexeme[eq+1:]
	valueStart := tok.Start + eq + 1

	var parts []*ast.Expansion
	for _, e := range tok.Expansions {
		if e.Sp.Start >= valueStart {
			parts = append(parts, e)
		}
	}
	return name, &ast.Word{Text: valueText, Sp: ast.Span{Start: valueStart, End: tok.End}, Parts: parts}
}

func (p *Parser) parseTrailingRedirects() ([]*ast.Redirect, error) {
	var out []*ast.Redirect
	for p.cur().Kind == lexer.Redir || (p.cur().Kind == lexer.Number && p.peek(1).Kind == lexer.Redir && p.peek(1).PrecedingWhitespace == "") {
		r, err := p.parseRedirect()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (p *Parser) parseRedirect() (*ast.Redirect, error) {
	start := p.cur().Start
	hasFD := false
	fd := -1
	if p.cur().Kind == lexer.Number && p.peek(1).Kind == lexer.Redir && p.peek(1).PrecedingWhitespace == "" {
		fdTok := p.advance()
		n, _ := strconv.Atoi(fdTok.Lexeme)
		fd, hasFD = n, true
	}

	opTok := p.cur()
	if opTok.Kind != lexer.Redir {
		return nil, newUnexpectedToken(opTok.Start, "a redirection operator", opTok.String())
	}
	p.advance()

	kind, target, err := p.resolveRedirTarget(opTok)
	if err != nil {
		return nil, err
	}

	// The redirect's span runs through the last token its target consumed
	// ("2>&1" covers the duplicated fd, "<<EOF" covers the terminator word).
	end := p.toks[p.pos-1].End
	return &ast.Redirect{SrcFD: fd, HasFD: hasFD, Kind: kind, Target: target, Sp: ast.Span{Start: start, End: end}}, nil
}

func (p *Parser) resolveRedirTarget(opTok lexer.Token) (ast.RedirKind, ast.RedirTarget, error) {
	switch opTok.RedirKind {
	case lexer.RedirLess:
		t, err := p.wordOrNumberTarget(opTok)
		return ast.RedirIn, t, err
	case lexer.RedirGreat:
		t, err := p.wordOrNumberTarget(opTok)
		return ast.RedirOut, t, err
	case lexer.RedirGreatGreat:
		t, err := p.wordOrNumberTarget(opTok)
		return ast.RedirAppend, t, err
	case lexer.RedirDLessLess: // "<<<" here-string
		t, err := p.wordOrNumberTarget(opTok)
		return ast.RedirHeredocQuote, t, err
	case lexer.RedirDLess:
		// "-" is a wordchar, so "<<-EOF" lexes as Redir("<<") immediately
		// followed (no whitespace) by Word("-EOF"); detect that adjacency to
		// recognize the tab-stripping variant.
		if p.cur().Kind != lexer.Word {
			return 0, ast.RedirTarget{}, newInvalidRedirectTarget(p.cur().Start, "\"<<\" requires a terminator word")
		}
		term := p.advance()
		if term.PrecedingWhitespace == "" && strings.HasPrefix(term.Lexeme, "-") {
			return ast.RedirHeredocStrip, ast.RedirTarget{Heredoc: strings.TrimPrefix(term.Lexeme, "-")}, nil
		}
		return ast.RedirHeredoc, ast.RedirTarget{Heredoc: term.Lexeme}, nil
	case lexer.RedirGreatAmp: // ">&"
		if p.cur().Kind == lexer.Number && p.cur().PrecedingWhitespace == "" {
			n, _ := strconv.Atoi(p.advance().Lexeme)
			return ast.RedirOut, ast.RedirTarget{HasDup: true, DupFD: n}, nil
		}
		if p.cur().Kind == lexer.Operator && p.cur().Lexeme == "&" && p.cur().PrecedingWhitespace == "" {
			return 0, ast.RedirTarget{}, newInvalidRedirectTarget(p.cur().Start, "\">&\" may not be followed by \"&\"")
		}
		// ">&word" with a non-numeric target behaves like "&>word".
		t, err := p.wordOrNumberTarget(opTok)
		return ast.RedirBoth, t, err
	case lexer.RedirLessAmp: // "<&"
		if p.cur().Kind == lexer.Number && p.cur().PrecedingWhitespace == "" {
			n, _ := strconv.Atoi(p.advance().Lexeme)
			return ast.RedirDupIn, ast.RedirTarget{HasDup: true, DupFD: n}, nil
		}
		t, err := p.wordOrNumberTarget(opTok)
		return ast.RedirDupIn, t, err
	case lexer.RedirAmpGreat: // "&>"
		if p.cur().Kind == lexer.Operator && p.cur().Lexeme == "&" && p.cur().PrecedingWhitespace == "" {
			return 0, ast.RedirTarget{}, newInvalidRedirectTarget(p.cur().Start, "\"&>\" may not be followed by \"&\"")
		}
		t, err := p.wordOrNumberTarget(opTok)
		return ast.RedirBoth, t, err
	case lexer.RedirAmpGreatGreat: // "&>>"
		t, err := p.wordOrNumberTarget(opTok)
		return ast.RedirBothAppend, t, err
	default:
		return 0, ast.RedirTarget{}, newUnexpectedToken(opTok.Start, "a redirection operator", opTok.Lexeme)
	}
}

func (p *Parser) wordOrNumberTarget(opTok lexer.Token) (ast.RedirTarget, error) {
	if p.cur().Kind != lexer.Word && p.cur().Kind != lexer.Number {
		return ast.RedirTarget{}, newInvalidRedirectTarget(p.cur().Start, "\""+opTok.Lexeme+"\" requires a target")
	}
	tok := p.advance()
	return ast.RedirTarget{Word: wordFromToken(tok)}, nil
}
