package main

import (
	"fmt"
	"os"

	"github.com/glintlang/glint/compiler"
)

// CheckCmd parses and analyzes a script without executing it. Analyzer
// warnings print but leave the exit status clean; syntax and semantic
// errors fail the command.
type CheckCmd struct {
	File string `arg:"" help:"Script file, or '-' for stdin."`
}

func (c *CheckCmd) Run() error {
	source, err := readSource(c.File)
	if err != nil {
		return err
	}

	res := compiler.Validate(source)
	if !res.Valid {
		fmt.Fprintln(os.Stderr, res.Err.Error())
		if snip := compiler.FormatSnippet(source, res.Err.Pos, res.Err.Len); snip != "" {
			fmt.Fprintln(os.Stderr, snip)
		}
		return fmt.Errorf("%s has errors", c.File)
	}

	a := compiler.NewAnalyzer()
	a.Analyze(res.Program)
	for _, d := range a.Diagnostics() {
		fmt.Fprintln(os.Stderr, d.String())
		if snip := compiler.FormatSnippet(source, d.Pos, 1); snip != "" {
			fmt.Fprintln(os.Stderr, snip)
		}
	}
	if a.HasErrors() {
		return fmt.Errorf("%s has errors", c.File)
	}

	fmt.Printf("%s: ok\n", c.File)
	return nil
}
