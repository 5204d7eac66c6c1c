package main

import (
	"github.com/glintlang/glint/server"
)

// ServeCmd runs the script service. Without --db the Push and Get
// procedures report failed preconditions; everything else is stateless.
type ServeCmd struct {
	Addr string `help:"Listen address." default:":5468"`
	Db   string `help:"SQLite database for pushed scripts." type:"path"`
}

func (s *ServeCmd) Run() error {
	env, err := loadEnvironment(".")
	if err != nil {
		return err
	}

	var opts []server.Option
	if env.allow != nil {
		opts = append(opts, server.WithAllowList(env.allow))
	}
	if s.Db != "" {
		store, err := server.OpenStore(s.Db)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithStore(store))
	}

	srv := server.New(env.cat, opts...)
	defer srv.Close()
	return srv.ListenAndServe(s.Addr)
}
