// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command example serves a small HTTP API whose handlers return effects.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"code.hybscloud.com/kontrt"
	"code.hybscloud.com/kontrt/httprt"
	"code.hybscloud.com/kontrt/resources"
)

// Greeter formats greetings.
type Greeter struct {
	Prefix string
}

// User is the body of POST /users.
type User struct {
	ID   string `json:"id" validate:"required,uuid4"`
	Name string `json:"name" validate:"required,min=1,max=64"`
}

var (
	greeterTag = kontrt.NewTag[*Greeter]("greeter")
	cacheTag   = kontrt.NewTag[*redis.Client]("cache")
)

// registry is a minimal DI container.
type registry struct {
	mu       sync.RWMutex
	bindings map[any]any
	order    []kontrt.Binding
}

func newRegistry() *registry {
	return &registry{bindings: make(map[any]any)}
}

func (r *registry) Register(name string, token, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[token] = value
	r.order = append(r.order, kontrt.Binding{Token: token, Name: name})
}

func (r *registry) Providers() []kontrt.Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]kontrt.Binding(nil), r.order...)
}

func (r *registry) Get(token any, opts kontrt.LookupOptions) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.bindings[token]
	if !ok && opts.Strict {
		return nil, fmt.Errorf("no binding for %v", token)
	}
	return v, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		redisAddr  string
		debug      bool
	)
	cmd := &cobra.Command{
		Use:          "example",
		Short:        "Serve an effect-based HTTP API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(debug)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			opts := kontrt.Options{AutoServiceDiscovery: true}
			if configPath != "" {
				if err := opts.LoadFile(configPath); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, log, opts, addr, redisAddr)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML options file")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "redis address")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func serve(ctx context.Context, log *zap.Logger, opts kontrt.Options, addr, redisAddr string) error {
	reg := newRegistry()
	reg.Register("cache", cacheTag, resources.Redis(cacheTag, &redis.Options{Addr: redisAddr}))
	reg.Register("version", "version", "dev")

	opts.Logger = log
	opts.Services = []kontrt.Layer{kontrt.Succeed(greeterTag, &Greeter{Prefix: "Hello"})}
	root, err := kontrt.ForRoot(ctx, reg, opts)
	if err != nil {
		return err
	}

	router := httprt.NewRouter(log)
	router.Handle("/hello/{name}", httprt.Handle(root, hello, httprt.Path("name", nil))).Methods(http.MethodGet)
	router.Handle("/users", httprt.Handle(root, createUser, httprt.Body(kontrt.Struct[User]()))).Methods(http.MethodPost)
	router.Handle("/users/{id}", httprt.Handle(root, getUser, httprt.Path("id", nil))).Methods(http.MethodGet)

	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Join(err, kontrt.CloseAll(context.Background(), root))
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Join(srv.Shutdown(shutdownCtx), kontrt.CloseAll(shutdownCtx, root))
}

func hello(_ *http.Request, args httprt.Args) any {
	name, _ := args[0].(string)
	return kontrt.Use(greeterTag, func(g *Greeter) kontrt.Effect[string] {
		return kontrt.Annotated("name", name, kontrt.Pure(g.Prefix+", "+name))
	})
}

func createUser(_ *http.Request, args httprt.Args) any {
	u := args[0].(User)
	return kontrt.Then(
		resources.RedisSet(cacheTag, "user:"+u.ID, u.Name, time.Hour),
		kontrt.Pure(u),
	)
}

func getUser(_ *http.Request, args httprt.Args) any {
	id, _ := args[0].(string)
	lookup := kontrt.Map(resources.RedisGet(cacheTag, "user:"+id), func(name string) User {
		return User{ID: id, Name: name}
	})
	return kontrt.CatchAll(lookup, func(cause any) kontrt.Effect[User] {
		if err, ok := cause.(error); ok && errors.Is(err, redis.Nil) {
			return kontrt.Fail[User](&notFoundError{id: id})
		}
		return kontrt.Fail[User](cause)
	})
}

type notFoundError struct{ id string }

func (e *notFoundError) Error() string   { return "user " + e.id + " not found" }
func (e *notFoundError) StatusCode() int { return http.StatusNotFound }
