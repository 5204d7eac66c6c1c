package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glintlang/glint/bundle"
	"github.com/glintlang/glint/catalog"
	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/gen"
)

// BundleCmd packs a script plus both generated targets into a CBOR
// bundle, or re-derives an existing bundle's artifacts to verify it.
type BundleCmd struct {
	File   string `arg:"" optional:"" help:"Script file to pack, or '-' for stdin."`
	Output string `help:"Bundle output path. Defaults to the script name with a .cbor extension." short:"o" type:"path"`
	Name   string `help:"Artifact name recorded in the bundle. Defaults to the script file's base name."`
	Verify string `help:"Verify an existing bundle instead of packing one." type:"path"`
}

func (b *BundleCmd) Run() error {
	if b.Verify != "" {
		env, err := loadEnvironment(scriptDir(b.Verify))
		if err != nil {
			return err
		}
		return verifyBundle(b.Verify, env.cat)
	}
	if b.File == "" {
		return fmt.Errorf("a script file or --verify is required")
	}

	env, err := loadEnvironment(scriptDir(b.File))
	if err != nil {
		return err
	}
	source, err := readSource(b.File)
	if err != nil {
		return err
	}

	name := b.Name
	if name == "" {
		if b.File == "-" {
			return fmt.Errorf("--name is required when reading stdin")
		}
		name = strings.TrimSuffix(filepath.Base(b.File), filepath.Ext(b.File))
	}
	out := b.Output
	if out == "" {
		if b.File == "-" {
			return fmt.Errorf("--output is required when reading stdin")
		}
		out = strings.TrimSuffix(b.File, filepath.Ext(b.File)) + ".cbor"
	}

	bun, err := bundle.Build(name, source, emitPair(env.cat))
	if err != nil {
		return err
	}
	data, err := bundle.Marshal(bun)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d bytes, digest %s)\n", out, len(data), hex.EncodeToString(bun.Digest[:]))
	return nil
}

func verifyBundle(path string, cat *catalog.Catalog) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	bun, err := bundle.Unmarshal(data)
	if err != nil {
		return err
	}
	if err := bundle.Verify(bun, emitPair(cat)); err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	fmt.Printf("%s: ok (script %s)\n", bun.Name, hex.EncodeToString(bun.ScriptHash[:]))
	return nil
}

// emitPair adapts the two generators into the emit function the bundle
// package expects injected.
func emitPair(cat *catalog.Catalog) bundle.EmitFunc {
	return func(source string) (string, string, error) {
		prog, err := compiler.Parse(source)
		if err != nil {
			return "", "", err
		}
		script, err := gen.EmitScript(prog, cat)
		if err != nil {
			return "", "", err
		}
		c, err := gen.EmitC(prog, cat)
		if err != nil {
			return "", "", err
		}
		return script, c, nil
	}
}
