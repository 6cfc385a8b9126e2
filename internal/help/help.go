// Package help holds the static documentation catalog for shell constructs
// that the matcher annotates directly (pipes, operators, redirections,
// reserved words, compound-statement keywords).
package help

import (
	"fmt"

	"github.com/aledsdavies/explainshell/internal/ast"
)

// Pipelines documents the "|" and "|&" pipe connectives.
const Pipelines = `A pipeline is a sequence of one or more commands separated by the ` +
	`control operator "|" or "|&". The standard output of each command is ` +
	`connected to the standard input of the next. If "|&" is used, the ` +
	`standard error of the command is connected to the next command's ` +
	`standard input as well, equivalent to "2>&1 |". The return status of a ` +
	`pipeline is the exit status of the last command, each of which runs in ` +
	`its own subshell.`

// Redirection is the general preamble shared by every redirection kind.
const Redirection = `Before a command is executed, its input and output may be redirected ` +
	`using a special notation interpreted by the shell. Redirections are ` +
	`processed in the order they appear, left to right.`

const (
	opSemicolon = `Commands separated by ";" are executed sequentially; the shell waits ` +
		`for each command to terminate in turn. The return status is the exit ` +
		`status of the last command executed.`
	opBackground = `If a command is terminated by the control operator "&", the shell ` +
		`executes the command in the background in a subshell. The shell does ` +
		`not wait for the command to finish, and the return status is 0.`
	opAndOr = `AND and OR lists are sequences of one or more pipelines separated by ` +
		`the "&&" and "||" control operators, evaluated left to right. In an ` +
		`AND list, command2 runs only if command1 returned a zero exit status; ` +
		`in an OR list, command2 runs only if command1 returned a non-zero exit ` +
		`status. The return status of the list is the exit status of the last ` +
		`command executed.`
)

// Operators maps each list operator to its documentation.
var Operators = map[string]string{
	";":  opSemicolon,
	"&":  opBackground,
	"&&": opAndOr,
	"||": opAndOr,
}

const (
	redirectingInput = `Redirection of input causes the file named by the word following "<" ` +
		`to be opened for reading on the given file descriptor, or file ` +
		`descriptor 0 if none is specified. General form: [n]<word.`
	redirectingOutput = `Redirection of output causes the file named by the following word to ` +
		`be opened for writing on the given file descriptor, or file ` +
		`descriptor 1 if none is specified. The file is created if it does not ` +
		`exist and truncated if it does. General form: [n]>word.`
	appendingOutput = `Redirection of output in this fashion causes the named file to be ` +
		`opened for appending on the given file descriptor, or file descriptor ` +
		`1 if none is specified, and created if it does not exist. General ` +
		`form: [n]>>word.`
	redirectingBoth = `This construct redirects both standard output (file descriptor 1) and ` +
		`standard error (file descriptor 2) to the named file. The two ` +
		`equivalent forms are "&>word" and ">&word"; the former is preferred ` +
		`and is semantically equivalent to ">word 2>&1".`
	appendingBoth = `This construct appends both standard output and standard error to the ` +
		`named file. Form: "&>>word", equivalent to ">>word 2>&1".`
	hereDocuments = `A here-document instructs the shell to read input from the current ` +
		`source until a line containing only the delimiter word is seen. The ` +
		`word following "<<" (or "<<-", which also strips leading tabs) names ` +
		`the delimiter; no expansion is performed on it unless it is unquoted.`
	hereString = `A here-string supplies the (expanded) word following "<<<" to the ` +
		`command on its standard input.`
	dupOut = `"N>&M" duplicates output file descriptor M onto N, instead of opening ` +
		`a new file.`
	dupIn = `"N<&M" duplicates input file descriptor M onto N, instead of opening ` +
		`a new file.`
)

// RedirectionKind maps every ast.RedirKind to its documentation string.
var RedirectionKind = map[ast.RedirKind]string{
	ast.RedirIn:           redirectingInput,
	ast.RedirOut:          redirectingOutput,
	ast.RedirAppend:       appendingOutput,
	ast.RedirHeredoc:      hereDocuments,
	ast.RedirHeredocStrip: hereDocuments,
	ast.RedirHeredocQuote: hereString,
	ast.RedirDupOut:       dupOut,
	ast.RedirDupIn:        dupIn,
	ast.RedirBoth:         redirectingBoth,
	ast.RedirBothAppend:   appendingBoth,
}

const (
	negate   = `If the reserved word "!" precedes a pipeline, the exit status of that pipeline is the logical negation of its usual exit status.`
	group    = `"{ list; }" executes list in the current shell environment; list must end with ";" or a newline. Unlike "(" and ")", "{" and "}" are reserved words and must be separated from list by whitespace.`
	subshell = `"( list )" executes list in a subshell environment. Variable assignments and builtin commands that affect the shell's environment do not persist after the subshell exits.`
)

// ReservedWords maps the context-free reserved words to their documentation.
var ReservedWords = map[string]string{
	"!": negate,
	"{": group,
	"}": group,
}

// Subshell documents the "( ... )" compound command specifically (distinct
// from the "{"/"}" entry above, since a subshell is never a reserved word).
const Subshell = subshell

const (
	ifText = `"if list; then list; [elif list; then list;]... [else list;] fi" - the ` +
		`if list runs; if it exits zero the then list runs. Otherwise each ` +
		`elif list is tried in turn, and if one exits zero its then list runs. ` +
		`If none do, the else list runs if present.`
	forText = `"for name [in word ...]; do list; done" - name is set to each word in ` +
		`turn and list is executed each time. With no "in word" clause, the ` +
		`for command iterates over the positional parameters instead.`
	whileUntilText = `"while list-1; do list-2; done" / "until list-1; do list-2; done" - ` +
		`while runs list-2 as long as list-1 exits zero; until is identical but ` +
		`negates the test, running list-2 as long as list-1 exits non-zero.`
	selectText = `"select name [in word ...]; do list; done" - the words are expanded ` +
		`and printed as a numbered menu; a line is read and used to set name, ` +
		`then list runs. Repeats until a "break" is executed.`
)

// CompoundReservedWords maps a compound-statement context ("if", "for",
// "while", "until", "select") to every reserved word used in that context,
// each pointing at the same documentation for the construct as a whole.
var CompoundReservedWords = map[string]map[string]string{
	"if":     addWords(ifText, "if", "then", "elif", "else", "fi"),
	"for":    addWords(forText, "for", "in", "do", "done"),
	"while":  addWords(whileUntilText, "while", "do", "done"),
	"until":  addWords(whileUntilText, "until", "do", "done"),
	"select": addWords(selectText, "select", "in", "do", "done"),
}

func addWords(text string, words ...string) map[string]string {
	m := make(map[string]string, len(words))
	for _, w := range words {
		m[w] = text
	}
	return m
}

// Assignment documents a leading NAME=value assignment word.
const Assignment = `A variable assignment preceding a command; this implementation tracks it but never evaluates it.`

// Comment documents a trailing "#..." span.
const Comment = `The rest of the line is a comment and is ignored.`

// NoSynopsis is used when a man page was found with no synopsis text.
const NoSynopsis = "no synopsis found"

// FunctionDecl documents a function declaration's "name() { ... }" header.
const FunctionDecl = `Function declaration: defines a named shell function that can later be invoked like any other command.`

// FunctionCall documents the invocation of a previously declared function.
func FunctionCall(name string) string {
	return fmt.Sprintf("calls the previously defined function %q", name)
}

// FunctionArg documents a word passed as an argument to a function call.
func FunctionArg(name string) string {
	return fmt.Sprintf("argument to the function %q", name)
}
