// Command gen-docs writes the release documentation for plotline: shell
// completion scripts, man pages and a markdown command reference. It is run
// before packaging a release.
//
// Usage:
//
//	go run ./scripts/gen-docs [-out dist] [-only completions,man,markdown]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/AbdelazizMoustafa10m/plotline/internal/cli"
)

// generator writes one kind of documentation below dir.
type generator struct {
	name string
	dir  string
	run  func(root *cobra.Command, dir string) error
}

func main() {
	out := flag.String("out", ".", "Output root directory")
	only := flag.String("only", "", "Comma-separated subset of: completions, man, markdown")
	flag.Parse()

	gens := []generator{
		{name: "completions", dir: "completions", run: writeCompletions},
		{name: "man", dir: filepath.Join("man", "man1"), run: writeManPages},
		{name: "markdown", dir: filepath.Join("docs", "commands"), run: writeMarkdown},
	}

	want := map[string]bool{}
	for _, name := range strings.Split(*only, ",") {
		if name = strings.TrimSpace(name); name != "" {
			want[name] = true
		}
	}

	for _, g := range gens {
		if len(want) > 0 && !want[g.name] {
			continue
		}
		dir := filepath.Join(*out, g.dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "error creating output dir %q: %v\n", dir, err)
			os.Exit(1)
		}
		// Generators mutate the command tree, so each gets a fresh one.
		if err := g.run(cli.NewRootCmd(), dir); err != nil {
			fmt.Fprintf(os.Stderr, "error generating %s: %v\n", g.name, err)
			os.Exit(1)
		}
		fmt.Printf("Generated %s in %s/\n", g.name, dir)
	}
}

func writeCompletions(root *cobra.Command, dir string) error {
	shells := map[string]func(f *os.File) error{
		"plotline.bash": func(f *os.File) error { return root.GenBashCompletionV2(f, true) },
		"_plotline":     func(f *os.File) error { return root.GenZshCompletion(f) },
		"plotline.fish": func(f *os.File) error { return root.GenFishCompletion(f, true) },
		"plotline.ps1":  func(f *os.File) error { return root.GenPowerShellCompletionWithDesc(f) },
	}
	for name, gen := range shells {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %q: %w", path, err)
		}
		if err := gen(f); err != nil {
			f.Close() //nolint:errcheck
			return fmt.Errorf("writing %q: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %q: %w", path, err)
		}
	}
	return nil
}

func writeManPages(root *cobra.Command, dir string) error {
	header := &doc.GenManHeader{
		Title:   "PLOTLINE",
		Section: "1",
		Source:  "plotline",
		Manual:  "plotline Manual",
	}
	return doc.GenManTree(root, header, dir)
}

func writeMarkdown(root *cobra.Command, dir string) error {
	root.DisableAutoGenTag = true
	return doc.GenMarkdownTree(root, dir)
}
