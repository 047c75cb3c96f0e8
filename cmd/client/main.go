package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/oksasatya/estate-marketplace/internal/client"
	"github.com/oksasatya/estate-marketplace/internal/session"
	"github.com/oksasatya/estate-marketplace/pkg/helpers"
)

const usage = `usage: estate [flags] <command> [args]

commands:
  register <email> <password> [name]
  login <email> <password>
  federated <assertion>
  logout
  session
  refresh
  watch                      keep the session fresh until interrupted
  me
  plans
  subscribe <plan_id>
  listings <category>
  search <query>
  view <listing_id>
`

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "estate-session.json"
	}
	return filepath.Join(dir, "estate", "session.json")
}

func main() {
	server := flag.String("server", envOr("ESTATE_SERVER", "http://localhost:8080"), "API base URL")
	state := flag.String("state", envOr("ESTATE_STATE", defaultStatePath()), "file holding the session")
	interval := flag.Duration("interval", session.DefaultRefreshInterval, "refresh interval for watch")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage); flag.PrintDefaults() }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := helpers.NewLogger("estate-client", "production")
	if err := os.MkdirAll(filepath.Dir(*state), 0o700); err != nil {
		log.WithError(err).Fatal("create state dir")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.New(*server, session.NewFileStorage(*state), nil)
	out, err := run(ctx, c, flag.Args(), *interval)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && len(apiErr.Details) > 0 {
			log.WithError(err).WithField("details", apiErr.Details).Error("request failed")
		} else {
			log.WithError(err).Error("request failed")
		}
		os.Exit(1)
	}
	if out != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	}
}

func run(ctx context.Context, c *client.Client, args []string, interval time.Duration) (any, error) {
	cmd, args := args[0], args[1:]
	need := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%s: expected %d argument(s)\n%s", cmd, n, usage)
		}
		return nil
	}
	switch cmd {
	case "register":
		if err := need(2); err != nil {
			return nil, err
		}
		name := ""
		if len(args) > 2 {
			name = args[2]
		}
		return c.Register(ctx, name, args[0], args[1])
	case "login":
		if err := need(2); err != nil {
			return nil, err
		}
		return c.Login(ctx, args[0], args[1])
	case "federated":
		if err := need(1); err != nil {
			return nil, err
		}
		return c.LoginFederated(ctx, args[0])
	case "logout":
		return nil, c.Logout(ctx)
	case "session":
		s, err := c.Session(ctx)
		if s == nil {
			return nil, err
		}
		return s, err
	case "refresh":
		ok, err := c.Refresh(ctx)
		return map[string]bool{"refreshed": ok}, err
	case "watch":
		r := session.NewRefresher(c, interval, nil)
		r.Start(ctx)
		<-ctx.Done()
		r.Stop()
		return nil, nil
	case "me":
		return c.Me(ctx)
	case "plans":
		return c.Plans(ctx)
	case "subscribe":
		if err := need(1); err != nil {
			return nil, err
		}
		return c.Subscribe(ctx, args[0])
	case "listings":
		if err := need(1); err != nil {
			return nil, err
		}
		return c.Listings(ctx, args[0])
	case "search":
		if err := need(1); err != nil {
			return nil, err
		}
		return c.Search(ctx, args[0])
	case "view":
		if err := need(1); err != nil {
			return nil, err
		}
		return c.ViewListing(ctx, args[0])
	}
	return nil, fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
