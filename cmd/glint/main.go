package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/glintlang/glint/catalog"
)

var cli struct {
	Policy string `help:"Path to a glint.toml policy. Defaults to searching upward from the working directory." type:"path"`

	Check  CheckCmd  `cmd:"" help:"Parse and analyze a script without running it."`
	Run    RunCmd    `cmd:"" help:"Dry-run a script against the recording stub host."`
	Emit   EmitCmd   `cmd:"" help:"Translate a script to another source language."`
	Bundle BundleCmd `cmd:"" help:"Pack a script into a verifiable bundle, or verify one."`
	Push   PushCmd   `cmd:"" help:"Upload a script to a running glint server."`
	Serve  ServeCmd  `cmd:"" help:"Serve the script service over Connect RPC."`
	Lsp    LspCmd    `cmd:"" help:"Run the language server on stdio."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("glint"),
		kong.Description("Tooling for the Glint scripting language: validate, dry-run, translate, bundle, and serve sandboxed GUI scripts."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

// environment is the loaded policy context shared by the commands:
// all three fields stay nil when no glint.toml is in reach, which
// means an empty catalog and an unrestricted gate.
type environment struct {
	policy *catalog.Policy
	cat    *catalog.Catalog
	allow  *catalog.AllowList
}

// loadEnvironment resolves --policy, or walks upward from startDir:
// the script's directory for file commands, the working directory
// otherwise.
func loadEnvironment(startDir string) (environment, error) {
	var (
		p   *catalog.Policy
		err error
	)
	if cli.Policy != "" {
		p, err = loadPolicyFile(cli.Policy)
	} else {
		p, err = catalog.FindAndLoad(startDir)
	}
	if err != nil {
		return environment{}, err
	}
	if p == nil {
		return environment{}, nil
	}

	cat, err := p.LoadCatalog()
	if err != nil {
		return environment{}, err
	}
	return environment{policy: p, cat: cat, allow: p.Allow}, nil
}

// loadPolicyFile reads a policy from an explicit path, so --policy can
// name a file that is not called glint.toml.
func loadPolicyFile(path string) (*catalog.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	p, err := catalog.ParsePolicy(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	p.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// scriptDir is the policy search root for a script path.
func scriptDir(path string) string {
	if path == "-" {
		return "."
	}
	return filepath.Dir(path)
}

// readSource reads a script file, with "-" meaning stdin.
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
