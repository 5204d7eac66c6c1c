package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/glintlang/glint/server"
)

// PushCmd uploads a script to a running glint server, which validates
// it, builds its bundle, and stores both under the given name.
type PushCmd struct {
	Name string `arg:"" help:"Name to store the script under."`
	File string `arg:"" help:"Script file, or '-' for stdin."`
	Addr string `help:"Server address." default:"localhost:5468"`
}

func (p *PushCmd) Run() error {
	source, err := readSource(p.File)
	if err != nil {
		return err
	}

	client := connect.NewClient[server.PushRequest, server.PushResponse](
		http.DefaultClient,
		normalizeAddr(p.Addr)+server.ProcedurePush,
		server.WithJSONCodec(),
	)
	resp, err := client.CallUnary(context.Background(), connect.NewRequest(&server.PushRequest{
		Name:   p.Name,
		Source: source,
	}))
	if err != nil {
		return fmt.Errorf("push %s: %w", p.Name, err)
	}

	fmt.Printf("pushed %s (id %s)\n", p.Name, resp.Msg.Id)
	return nil
}

// normalizeAddr turns a bare listen address into a base URL.
func normalizeAddr(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
