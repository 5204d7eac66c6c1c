package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/interp"
)

// RunCmd executes a script against the recording stub host and prints
// the capability trace. No real GUI is involved: handles are synthetic
// and every capability call just records itself.
type RunCmd struct {
	File string   `arg:"" help:"Script file, or '-' for stdin."`
	Fn   string   `help:"Function to call after the top-level statements run." placeholder:"NAME"`
	Args []string `arg:"" optional:"" help:"Arguments for --fn. Numbers, true, false, and null convert; anything else passes as a string."`
}

func (r *RunCmd) Run() error {
	env, err := loadEnvironment(scriptDir(r.File))
	if err != nil {
		return err
	}
	source, err := readSource(r.File)
	if err != nil {
		return err
	}

	prog, err := compiler.Parse(source)
	if err != nil {
		return err
	}

	host := interp.NewStubHost()
	in := interp.New(prog)
	if err := in.Bind(interp.Bindings{
		Globals: host.Globals(),
		Host:    host.Table(env.cat),
		Catalog: env.cat,
		Allow:   env.allow,
		Events:  &interp.EventRecorder{},
	}); err != nil {
		printTrace(host)
		return err
	}

	result := interp.Undefined
	if r.Fn != "" {
		args := make([]interp.Value, len(r.Args))
		for i, raw := range r.Args {
			args[i] = parseArg(raw)
		}
		result, err = in.Exec(r.Fn, args...)
		if err != nil {
			printTrace(host)
			return err
		}
	}

	printTrace(host)
	fmt.Printf("result: %s\n", result.Display())
	return nil
}

// parseArg converts a command-line argument into a script value.
func parseArg(raw string) interp.Value {
	switch raw {
	case "true":
		return interp.True
	case "false":
		return interp.False
	case "null":
		return interp.Null
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return interp.FromNumber(n)
	}
	return interp.FromString(raw)
}

func printTrace(host *interp.StubHost) {
	calls := host.Calls()
	if len(calls) == 0 {
		return
	}
	fmt.Println("trace:")
	for _, c := range calls {
		args := make([]string, len(c.Args))
		for i, a := range c.Args {
			args[i] = a.Display()
		}
		fmt.Printf("  %s(%s) -> %s\n", c.Name, strings.Join(args, ", "), c.Result.Display())
	}
}
