// Package extractor recovers flag syntax from manual-page option
// paragraphs: the short and long flag spellings, whether an option takes
// an argument, and the argument's name.
package extractor

import (
	"regexp"
	"strings"
)

// ExtractedOption is a single flag found inside an option paragraph, with
// its argument name if the paragraph's text declared one (e.g. "-x FOO").
type ExtractedOption struct {
	Flag    string
	ArgName string
}

// ExpectsArg reports whether this option takes an argument.
func (o ExtractedOption) ExpectsArg() bool { return o.ArgName != "" }

// flagBody mirrors the Python regex's opt group: "--?(?:\?|\#|(?:\w+-)*\w+)".
const flagBody = `--?(?:\?|\#|(?:\w+-)*\w+)`

const endingBody = `,\s*|\s+|$|/|\|`

var (
	// bracketArgRe covers "-a[FOO]", "-a<FOO>", "-a=[FOO]", "-a=<FOO>": an
	// argument wrapped in a matched bracket pair. Go's RE2 engine cannot
	// express the Python original's conditional backreference that checks
	// bracket-pair balance inline, so both bracket kinds are matched
	// generically here and validated for balance in code afterward.
	bracketArgRe = regexp.MustCompile(`^(` + flagBody + `)\s*=?\s*([<\[])\s*=?\s*([^\]>]+)([\]>])(` + endingBody + `)`)

	// equalsArgRe covers "-a=FOO" / "-a=foo-bar": an argument following an
	// explicit '=', restricted (per the original) to letters and hyphens.
	equalsArgRe = regexp.MustCompile(`^(` + flagBody + `)\s*=\s*([-a-zA-Z]+)(` + endingBody + `)`)

	// bareArgRe covers "-a FOO": an argument separated only by whitespace,
	// restricted to uppercase letters so ordinary prose words following a
	// flag aren't mistaken for its argument.
	bareArgRe = regexp.MustCompile(`^(` + flagBody + `)\s+([A-Z]+)(` + endingBody + `)`)

	// flagOnlyRe covers a flag with no argument at all.
	flagOnlyRe = regexp.MustCompile(`^(` + flagBody + `)(` + endingBody + `)`)

	// fallbackRe covers "bs=BYTES"-style options (dd and friends) that
	// don't start with '-' at all.
	fallbackRe = regexp.MustCompile(`^(\w+)\s*=\s*(\w+)(,\s*|\s+|$)`)

	eatBetweenRe = regexp.MustCompile(`^\s*(?:or|,|\|)\s*`)
)

type optMatch struct {
	flag    string
	arg     string
	ending  string
	matched int // number of bytes consumed, relative to the search start
}

// matchOption tries each non-conditional pattern in turn, in the same
// preference order the original single conditional regex would resolve
// them (bracketed argument, then assigned argument, then bare uppercase
// argument, then no argument), and reports the first that matches at pos.
func matchOption(s string, pos int) (optMatch, bool) {
	sub := s[pos:]

	if m := bracketArgRe.FindStringSubmatch(sub); m != nil {
		open, arg, closeCh := m[2], m[3], m[4]
		if (open == "[" && closeCh == "]") || (open == "<" && closeCh == ">") {
			return optMatch{flag: m[1], arg: arg, ending: m[5], matched: len(m[0])}, true
		}
		// Unbalanced brackets: not a valid bracketed-arg match. Fall
		// through to the remaining patterns exactly like the Python
		// original does when its bracket-balance check fails.
	}
	if m := equalsArgRe.FindStringSubmatch(sub); m != nil {
		return optMatch{flag: m[1], arg: m[2], ending: m[3], matched: len(m[0])}, true
	}
	if m := bareArgRe.FindStringSubmatch(sub); m != nil {
		return optMatch{flag: m[1], arg: m[2], ending: m[3], matched: len(m[0])}, true
	}
	if m := flagOnlyRe.FindStringSubmatch(sub); m != nil {
		return optMatch{flag: m[1], ending: m[2], matched: len(m[0])}, true
	}
	return optMatch{}, false
}

func matchFallback(s string, pos int) (optMatch, bool) {
	sub := s[pos:]
	m := fallbackRe.FindStringSubmatch(sub)
	if m == nil {
		return optMatch{}, false
	}
	return optMatch{flag: m[1], arg: m[2], ending: m[3], matched: len(m[0])}, true
}

func eatBetween(s string, pos int) int {
	m := eatBetweenRe.FindString(s[pos:])
	return pos + len(m)
}

// ExtractOption extracts every option flag from a single cleaned option
// paragraph's text, split into short (single '-') and long ("--") forms.
func ExtractOption(text string) (short, long []ExtractedOption) {
	trimmed := strings.TrimLeft(text, " \t\n\r")
	startpos := len(text) - len(trimmed)
	currpos := startpos

	m, ok := matchOption(text, currpos)
	for ok {
		po := ExtractedOption{Flag: m.flag, ArgName: m.arg}
		if strings.HasPrefix(m.flag, "--") {
			long = append(long, po)
		} else {
			short = append(short, po)
		}
		currpos += m.matched
		currpos = eatBetween(text, currpos)

		if m.ending == "|" {
			m, ok = matchOption(text, currpos)
			if !ok {
				// "-a|b|c": walk forward collecting '|'-separated bare
				// words as additional short options.
				walkStart := currpos
				for currpos < len(text) && !isSpace(text[currpos]) {
					if text[currpos] == '|' {
						short = append(short, ExtractedOption{Flag: text[walkStart:currpos]})
						walkStart = currpos + 1
					}
					currpos++
				}
				if leftover := text[walkStart:currpos]; leftover != "" {
					short = append(short, ExtractedOption{Flag: leftover})
				}
			}
			continue
		}
		m, ok = matchOption(text, currpos)
	}

	if currpos == startpos {
		fm, fok := matchFallback(text, currpos)
		for fok {
			long = append(long, ExtractedOption{Flag: fm.flag, ArgName: fm.arg})
			currpos += fm.matched
			currpos = eatBetween(text, currpos)
			fm, fok = matchFallback(text, currpos)
		}
	}

	return short, long
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// ExtractParagraph extracts an option paragraph's flags and reports whether
// any of them expects an argument (the disjunction of every short/long
// option's ExpectsArg).
// The returned flag slices carry the bare flag strings, matching the final
// shape stored alongside a ManPage's option paragraphs.
func ExtractParagraph(text string) (short, long []string, expectsArg bool) {
	s, l := ExtractOption(text)
	for _, o := range s {
		short = append(short, o.Flag)
		expectsArg = expectsArg || o.ExpectsArg()
	}
	for _, o := range l {
		long = append(long, o.Flag)
		expectsArg = expectsArg || o.ExpectsArg()
	}
	return short, long, expectsArg
}
