// Package store implements the man-page lookup layer the matcher
// consumes: the Store interface and MemStore, its one concrete in-memory
// implementation, loadable from the persisted record format.
package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aledsdavies/explainshell/internal/util"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
)

// Paragraph is one paragraph of a man page's body text, extended in place
// with the fields extractor.ExtractParagraph populates when IsOption is
// true. Go has no clean way to "extend" a struct with polymorphic variants
// the way the persisted JSON does, so the Option fields live alongside the
// Paragraph fields and are only meaningful when IsOption is set - one
// struct per wire record instead of a base/derived pair.
type Paragraph struct {
	Idx      int    `json:"idx" cbor:"idx"`
	Text     string `json:"text" cbor:"text"`
	Section  string `json:"section" cbor:"section"`
	IsOption bool   `json:"is_option" cbor:"is_option"`

	// Populated only when IsOption is true.
	Short      []string `json:"short,omitempty" cbor:"short,omitempty"`
	Long       []string `json:"long,omitempty" cbor:"long,omitempty"`
	ExpectsArg bool     `json:"expects_arg,omitempty" cbor:"expects_arg,omitempty"`
	// ExpectsArgValues restricts the acceptable argument values, when the
	// paragraph enumerated them.
	ExpectsArgValues []string `json:"expects_arg_values,omitempty" cbor:"expects_arg_values,omitempty"`
	// Argument names this paragraph as describing a positional argument
	// (e.g. "FILE"); empty when this paragraph is a plain flag.
	Argument string `json:"argument,omitempty" cbor:"argument,omitempty"`
	// NestedCmdTerminators lists the words that end a nested command
	// started by this option (e.g. find's "-exec ... ';'"). A non-nil,
	// possibly empty slice means this option starts a nested command.
	NestedCmdTerminators []string `json:"nested_cmd,omitempty" cbor:"nested_cmd,omitempty"`
}

// Opts returns every short and long flag spelling for this option paragraph.
func (p Paragraph) Opts() []string {
	out := make([]string, 0, len(p.Short)+len(p.Long))
	out = append(out, p.Short...)
	out = append(out, p.Long...)
	return out
}

// NestsCommand reports whether this option begins a nested command.
func (p Paragraph) NestsCommand() bool { return p.NestedCmdTerminators != nil }

// Alias is one (name, score) edge from an alternate program name to a
// ManPage's canonical identity.
type Alias struct {
	Name  string `json:"name" cbor:"name"`
	Score int    `json:"score" cbor:"score"`
}

// ManPage is a fully processed man page, as produced by the ingestion
// pipeline and persisted in the record store.
type ManPage struct {
	Source     string      `json:"source" cbor:"source"`
	Name       string      `json:"name" cbor:"name"`
	Synopsis   string      `json:"synopsis" cbor:"synopsis"`
	Paragraphs []Paragraph `json:"paragraphs" cbor:"paragraphs"`
	Aliases    []Alias     `json:"aliases" cbor:"aliases"`

	PartialMatch bool `json:"partial_match" cbor:"partial_match"`
	MultiCmd     bool `json:"multi_cmd" cbor:"multi_cmd"`
	// NestedCmdTerminators, when non-nil, means arbitrary positional
	// arguments to this program may start a nested command (e.g. sudo,
	// xargs). Its words end that nested command the same way an option's
	// terminators do; an empty non-nil slice lets the nested command run
	// to the end of the command.
	NestedCmdTerminators []string `json:"nested_cmd,omitempty" cbor:"nested_cmd,omitempty"`
}

// NestsCommand reports whether bare arguments to this program start a
// nested command.
func (m *ManPage) NestsCommand() bool { return m.NestedCmdTerminators != nil }

// SynopsisText returns the man page's synopsis, or help.NoSynopsis if none
// was recorded.
func (m *ManPage) SynopsisText() string {
	if m.Synopsis == "" {
		return noSynopsis
	}
	return m.Synopsis
}

// Options returns every paragraph flagged as an option.
func (m *ManPage) Options() []Paragraph {
	var out []Paragraph
	for _, p := range m.Paragraphs {
		if p.IsOption {
			out = append(out, p)
		}
	}
	return out
}

// FindOption returns the option paragraph declaring flag, or nil.
func (m *ManPage) FindOption(flag string) *Paragraph {
	for i := range m.Paragraphs {
		p := &m.Paragraphs[i]
		if !p.IsOption {
			continue
		}
		for _, o := range p.Opts() {
			if o == flag {
				return p
			}
		}
	}
	return nil
}

// FirstArgument returns the text of the first (by paragraph insertion
// order) positional-argument group. When several paragraphs declare
// different Argument names, whichever distinct name was encountered first
// while scanning paragraphs in order wins, and every paragraph sharing
// that name is joined - insertion order keeps the choice deterministic.
func (m *ManPage) FirstArgument() (name, text string, ok bool) {
	var keys []string
	texts := make(map[string][]string)
	for _, p := range m.Paragraphs {
		if !p.IsOption || p.Argument == "" {
			continue
		}
		if _, seen := texts[p.Argument]; !seen {
			keys = append(keys, p.Argument)
		}
		texts[p.Argument] = append(texts[p.Argument], p.Text)
	}
	if len(keys) == 0 {
		return "", "", false
	}
	return keys[0], strings.Join(texts[keys[0]], "\n\n"), true
}

// Store is the lookup contract the matcher consumes. It must be safe for
// concurrent use.
type Store interface {
	// FindManPage resolves name to its matching man pages: the first
	// element is the primary match, and any remaining elements are
	// suggestions. name may carry a ".section" suffix to bias the
	// lookup to a specific man section.
	FindManPage(name string) ([]*ManPage, error)
}

// ProgramNotFoundError reports that no man page matched a lookup, carrying
// best-effort fuzzy suggestions for the name that was searched.
type ProgramNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *ProgramNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("program does not exist: %s", e.Name)
	}
	return fmt.Sprintf("program does not exist: %s (did you mean: %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}

const noSynopsis = "no synopsis found"

type entry struct {
	page  *ManPage
	score int
}

// MemStore is the one concrete Store implementation: an in-memory name
// index plus alias graph, built by explicit Add/Load calls rather than a
// package-level registry.
type MemStore struct {
	mu sync.RWMutex

	// byName maps a folded program name to every (page, score) edge that
	// resolves to it: the page's own canonical name (score 10) plus every
	// alias pointing at it (the alias's own declared score).
	byName map[string][]entry
	// reverse maps a page to every folded name that resolves to it,
	// canonical name included, used to discover alias collisions.
	reverse map[*ManPage][]string

	names []string // every distinct name ever indexed, for fuzzy suggestions
	fold  cases.Caser
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		byName:  make(map[string][]entry),
		reverse: make(map[*ManPage][]string),
		fold:    cases.Fold(),
	}
}

func (s *MemStore) normalize(name string) string {
	return s.fold.String(strings.TrimSpace(name))
}

// AddManPage indexes m under its canonical name (score 10) and every one
// of its declared aliases.
func (s *MemStore) AddManPage(m *ManPage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addEdge(m.Name, m, canonicalScore)
	for _, a := range m.Aliases {
		s.addEdge(a.Name, m, a.Score)
	}
}

const canonicalScore = 10

func (s *MemStore) addEdge(name string, m *ManPage, score int) {
	key := s.normalize(name)
	if key == "" {
		return
	}
	if _, exists := s.byName[key]; !exists {
		s.names = append(s.names, key)
	}
	s.byName[key] = append(s.byName[key], entry{page: m, score: score})
	s.reverse[m] = append(s.reverse[m], key)
}

// splitSection splits "name.section" into its parts; section is "" if no
// dot-suffix was present.
func splitSection(name string) (base, section string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

func manSection(m *ManPage) string {
	_, section := splitSection(strings.TrimSuffix(m.Source, ".gz"))
	return section
}

// FindManPage implements Store. The canonical name outranks aliases, a
// ".section" suffix restricts the match to that man section, and
// unqualified lookups also return transitive name collisions as
// suggestions.
func (s *MemStore) FindManPage(name string) ([]*ManPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base, section := splitSection(name)
	key := s.normalize(base)

	edges := s.byName[key]
	if len(edges) == 0 {
		return nil, s.notFound(name, key)
	}

	sorted := make([]entry, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].score > sorted[j].score })

	pages := dedupe(sorted)

	if section != "" {
		sort.SliceStable(pages, func(i, j int) bool {
			return manSection(pages[i]) == section && manSection(pages[j]) != section
		})
		if manSection(pages[0]) != section {
			return nil, &ProgramNotFoundError{Name: name}
		}
		return pages, nil
	}

	pages = append(pages, s.collisions(key, pages)...)
	return pages, nil
}

func dedupe(sorted []entry) []*ManPage {
	seen := make(map[*ManPage]bool, len(sorted))
	var pages []*ManPage
	for _, e := range sorted {
		if seen[e.page] {
			continue
		}
		seen[e.page] = true
		pages = append(pages, e.page)
	}
	return pages
}

// collisions finds every other man page transitively reachable through an
// alias edge from key; unqualified lookups return them as suggestions
// after the direct matches.
func (s *MemStore) collisions(key string, existing []*ManPage) []*ManPage {
	skip := make(map[*ManPage]bool, len(existing))
	for _, p := range existing {
		skip[p] = true
	}

	var out []*ManPage
	visitedNames := map[string]bool{key: true}
	frontier := []string{key}

	for len(frontier) > 0 {
		var next []string
		for _, n := range frontier {
			for _, e := range s.byName[n] {
				if !skip[e.page] {
					skip[e.page] = true
					out = append(out, e.page)
				}
				for _, otherName := range s.reverse[e.page] {
					if !visitedNames[otherName] {
						visitedNames[otherName] = true
						next = append(next, otherName)
					}
				}
			}
		}
		frontier = next
	}
	return out
}

func (s *MemStore) notFound(origName, key string) error {
	ranked := fuzzy.RankFindFold(key, s.names)
	sort.Sort(ranked)
	var suggestions []string
	for i, r := range ranked {
		if i >= 5 {
			break
		}
		suggestions = append(suggestions, r.Target)
	}
	return &ProgramNotFoundError{Name: origName, Suggestions: suggestions}
}

// orderForIndexing sorts a freshly decoded batch so that a record whose
// alias list names another record's canonical name in the same batch is
// indexed after that other record, via util.TopoSort - this only matters
// for the batch's own s.names ordering (used for fuzzy suggestions), since
// lookups work regardless of insertion order, but it keeps that ordering
// deterministic rather than dependent on decode order.
func orderForIndexing(pages []*ManPage) ([]*ManPage, error) {
	byName := make(map[string]*ManPage, len(pages))
	for _, p := range pages {
		byName[p.Name] = p
	}
	parents := func(p *ManPage) []*ManPage {
		var out []*ManPage
		for _, a := range p.Aliases {
			if target, ok := byName[a.Name]; ok && target != p {
				out = append(out, target)
			}
		}
		return out
	}
	return util.TopoSort(pages, parents)
}

var _ Store = (*MemStore)(nil)
