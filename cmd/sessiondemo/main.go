// Command sessiondemo wires the session SDK end to end against a configured
// platform API and reports whether a cached session was restored. Useful
// for poking at the lifecycle without a UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/planforge/go-session-client/credits"
	"github.com/planforge/go-session-client/identity"
	"github.com/planforge/go-session-client/internal/apiclient"
	"github.com/planforge/go-session-client/internal/config"
	"github.com/planforge/go-session-client/notify"
	"github.com/planforge/go-session-client/session"
	"github.com/planforge/go-session-client/session/credstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg := config.Default()
	if len(os.Args) > 1 {
		loaded, err := config.Load(os.Args[1])
		if err != nil {
			return fmt.Errorf("config.Load: %w", err)
		}
		cfg = loaded
	}

	displayAppname("PlanForge")
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	store, err := credstore.NewFileStore(cfg.SessionRecordPath())
	if err != nil {
		return fmt.Errorf("credstore.NewFileStore: %w", err)
	}

	api, err := apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout)
	if err != nil {
		return fmt.Errorf("apiclient.New: %w", err)
	}
	identityClient, err := identity.NewHTTPClient(api)
	if err != nil {
		return fmt.Errorf("identity.NewHTTPClient: %w", err)
	}
	creditsClient, err := credits.NewHTTPClient(api)
	if err != nil {
		return fmt.Errorf("credits.NewHTTPClient: %w", err)
	}

	relay := notify.NewRelay()
	scheduler, err := credits.NewScheduler(store, creditsClient, relay, credits.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("credits.NewScheduler: %w", err)
	}

	manager, err := session.NewManager(session.Deps{
		Store:      store,
		Identity:   identityClient,
		Deductions: scheduler,
	}, session.WithInitDelay(cfg.InitDelay), session.WithRememberWindow(cfg.RememberWindow), session.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("session.NewManager: %w", err)
	}

	events, cancel := relay.SubscribeDeductions()
	defer cancel()

	ctx, cancelCtx := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelCtx()
	manager.Initialize(ctx)

	current := manager.Current()
	log.Printf("Session state: %s\n", current.State)
	if current.Authenticated() {
		log.Printf("Restored session for %s (role: %s)\n", current.User.Email, current.User.Role)
	} else {
		log.Printf("No cached session; sign in through the app to create one\n")
	}

	select {
	case event := <-events:
		log.Printf("Credit deducted: balance now %d\n", event.NewBalance)
	default:
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
