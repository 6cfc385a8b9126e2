// Command explain annotates a shell command line with documentation from a
// corpus of processed man pages, printing one colored span per token.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aledsdavies/explainshell/internal/config"
	"github.com/aledsdavies/explainshell/internal/explain"
	"github.com/aledsdavies/explainshell/internal/matcher"
	"github.com/aledsdavies/explainshell/internal/store"
)

func main() {
	cfg := config.FromEnv()

	var (
		storePath string
		section   string
		noColor   bool
	)

	rootCmd := &cobra.Command{
		Use:   `explain [flags] "command line"`,
		Short: "Explain a shell command line using a man-page corpus",
		Long: `Explain decomposes a shell command line into spans and annotates each
one with documentation drawn from a store of processed man pages.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			return run(cmd, args[0], storePath, section, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&storePath, "store", "s", cfg.StorePath, "File or directory of man-page records (.json or .cbor)")
	rootCmd.PersistentFlags().StringVar(&section, "section", "", "Bias lookups to a specific man section")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, input, storePath, section string, cfg config.Config) error {
	if storePath == "" {
		return fmt.Errorf("no store given: pass --store or set EXPLAIN_STORE_PATH")
	}
	st, err := loadStore(storePath)
	if err != nil {
		return err
	}

	e := explain.New(st)
	if cfg.MaxInputBytes > 0 {
		e.MaxInputBytes = cfg.MaxInputBytes
	}
	ex, err := e.ExplainSection(input, section)
	if err != nil {
		return err
	}
	if cfg.Debug {
		fmt.Fprintf(os.Stderr, "matched %d group(s), %d expansion(s)\n", len(ex.Groups), len(ex.Expansions))
	}

	render(cmd, input, ex)
	return nil
}

// loadStore reads every record file under path (or path itself when it is
// a file) into a fresh in-memory store.
func loadStore(path string) (*store.MemStore, error) {
	st := store.NewMemStore()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening store %q: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading store directory %q: %w", path, err)
		}
		files = files[:0]
		for _, e := range entries {
			switch filepath.Ext(e.Name()) {
			case ".json", ".cbor":
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	}

	total := 0
	for _, f := range files {
		r, err := os.Open(f)
		if err != nil {
			return nil, fmt.Errorf("opening record file %q: %w", f, err)
		}
		var n int
		if filepath.Ext(f) == ".cbor" {
			n, err = st.LoadCBOR(r)
		} else {
			n, err = st.LoadJSON(r)
		}
		r.Close()
		if err != nil {
			return nil, err
		}
		total += n
	}
	if total == 0 {
		return nil, fmt.Errorf("store %q contains no records", path)
	}
	return st, nil
}

var commandPalette = []*color.Color{
	color.New(color.FgCyan),
	color.New(color.FgGreen),
	color.New(color.FgMagenta),
	color.New(color.FgBlue),
}

var (
	shellColor   = color.New(color.FgYellow)
	unknownColor = color.New(color.FgRed)
)

func groupColor(name string, ordinal int) *color.Color {
	if name == "shell" {
		return shellColor
	}
	return commandPalette[ordinal%len(commandPalette)]
}

type coloredSpan struct {
	matcher.Result
	col *color.Color
}

// render prints the input line colored by group, followed by one legend
// line per span.
func render(cmd *cobra.Command, input string, ex *matcher.Explanation) {
	var spans []coloredSpan
	ordinal := 0
	for _, g := range ex.Groups {
		col := groupColor(g.Name, ordinal)
		if g.Name != "shell" {
			ordinal++
		}
		for _, r := range g.Results {
			c := col
			if r.Unknown() {
				c = unknownColor
			}
			spans = append(spans, coloredSpan{Result: r, col: c})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	out := cmd.OutOrStdout()

	var line strings.Builder
	pos := 0
	for _, s := range spans {
		if s.Start > pos {
			line.WriteString(input[pos:s.Start])
		}
		line.WriteString(s.col.Sprint(input[s.Start:s.End]))
		pos = s.End
	}
	if pos < len(input) {
		line.WriteString(input[pos:])
	}
	fmt.Fprintln(out, line.String())
	fmt.Fprintln(out)

	for _, s := range spans {
		text := s.Text
		if s.Unknown() {
			text = "unknown"
		}
		fmt.Fprintf(out, "%s  %s\n", s.col.Sprint(s.Match), indentContinuations(text))
	}

	for _, g := range ex.Groups {
		if g.ManPage == nil || len(g.Suggestions) == 0 {
			continue
		}
		names := make([]string, len(g.Suggestions))
		for i, p := range g.Suggestions {
			names[i] = p.Name
		}
		fmt.Fprintf(out, "\n%s: see also %s\n", g.ManPage.Name, strings.Join(names, ", "))
	}
}

func indentContinuations(text string) string {
	return strings.ReplaceAll(text, "\n", "\n    ")
}
