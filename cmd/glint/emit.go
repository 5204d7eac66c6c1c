package main

import (
	"fmt"
	"os"

	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/gen"
)

// EmitCmd translates a script into one of the generated source targets.
type EmitCmd struct {
	File   string `arg:"" help:"Script file, or '-' for stdin."`
	Target string `help:"Output language." enum:"script,c" default:"script"`
	Output string `help:"Write output here instead of stdout." short:"o" type:"path"`
}

func (e *EmitCmd) Run() error {
	env, err := loadEnvironment(scriptDir(e.File))
	if err != nil {
		return err
	}
	source, err := readSource(e.File)
	if err != nil {
		return err
	}

	prog, err := compiler.Parse(source)
	if err != nil {
		return err
	}

	var out string
	switch e.Target {
	case "script":
		out, err = gen.EmitScript(prog, env.cat)
	case "c":
		out, err = gen.EmitC(prog, env.cat)
	}
	if err != nil {
		return err
	}

	if e.Output != "" {
		return os.WriteFile(e.Output, []byte(out), 0o644)
	}
	fmt.Print(out)
	return nil
}
