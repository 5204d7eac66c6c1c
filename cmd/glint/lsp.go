package main

import (
	"github.com/glintlang/glint/server"
)

// LspCmd runs the language server on stdio, the transport editors
// spawn it with.
type LspCmd struct{}

func (l *LspCmd) Run() error {
	env, err := loadEnvironment(".")
	if err != nil {
		return err
	}
	return server.NewLSP(env.cat).Run()
}
