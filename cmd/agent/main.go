package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vportnov/usermgmt-agent/chat"
	"github.com/vportnov/usermgmt-agent/internal/engine"
	"github.com/vportnov/usermgmt-agent/internal/mcptools"
	"github.com/vportnov/usermgmt-agent/internal/provider"
	"github.com/vportnov/usermgmt-agent/internal/telemetry"
	"github.com/vportnov/usermgmt-agent/internal/userapi"
	"github.com/vportnov/usermgmt-agent/tools"
)

const persistPath = "conversation.json"

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	model, err := provider.New(os.Getenv("UMA_PROVIDER"), os.Getenv("UMA_MODEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		fmt.Println("\nExiting...")
		cancel()
	}()

	toolProvider, cleanup, err := buildToolProvider()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	opts := []engine.Option{
		engine.WithContentFunc(func(chunk string) { fmt.Print(chunk) }),
		engine.WithToolCallFunc(func(name string) { fmt.Printf("\n  [tool] %s\n", name) }),
	}
	if n, ok := envInt("UMA_MAX_ITERATIONS"); ok {
		opts = append(opts, engine.WithMaxIterations(n))
	}
	if budget, ok := envInt("UMA_TOKEN_BUDGET"); ok {
		opts = append(opts, engine.WithTokenBudget(budget))
	}
	eng := engine.New(model, toolProvider, opts...)

	history, err := loadHistory(ctx, toolProvider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logResources(ctx, toolProvider)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("User Management Agent is ready (type 'exit', 'quit', or 'q' to stop):")

	// stdin reader goroutine -> lines into channel
	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

outer:
	for {
		fmt.Print("\u001b[94mYou\u001b[0m: ")
		var (
			user string
			ok   bool
		)
		select {
		case <-ctx.Done():
			break outer
		case user, ok = <-inputCh:
			if !ok {
				break outer
			}
		}
		user = strings.TrimSpace(user)
		switch strings.ToLower(user) {
		case "":
			continue
		case "exit", "quit", "q":
			fmt.Println("Goodbye!")
			break outer
		}

		turnCtx := telemetry.WithTurnID(ctx, fmt.Sprintf("turn-%d", time.Now().UnixNano()))
		telemetry.EmitInputFeatures(turnCtx, user)

		history.Append(chat.NewUserMessage(user))
		final, err := eng.Complete(turnCtx, history)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break outer
			}
			fmt.Fprintf(os.Stderr, "\nerror: %v\n", err)
			continue
		}
		history.Append(final)
		fmt.Println()

		if err := saveTranscript(history); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save conversation: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: stdin read error: %v\n", err)
	}
}

// buildToolProvider selects the tool surface: an MCP server when UMA_MCP_URL
// is set, otherwise local tools against the users management REST service.
func buildToolProvider() (tools.Provider, func(), error) {
	if url := strings.TrimSpace(os.Getenv("UMA_MCP_URL")); url != "" {
		client := mcptools.New(url)
		return client, func() { _ = client.Close() }, nil
	}
	base := os.Getenv("USERS_MANAGEMENT_SERVICE_URL")
	registry := tools.NewRegistry(tools.UserTools(userapi.NewClient(base))...)
	return registry, func() {}, nil
}

// logResources announces the MCP server's resources at startup. Local tool
// registries publish none.
func logResources(ctx context.Context, tp tools.Provider) {
	mcp, ok := tp.(*mcptools.Client)
	if !ok {
		return
	}
	resources, err := mcp.Resources(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: discover resources: %v\n", err)
		return
	}
	for _, r := range resources {
		fmt.Printf("Resource: %s (%s)\n", r.URI, r.Name)
	}
}

func envInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s=%q is not an integer, ignoring\n", name, raw)
		return 0, false
	}
	return n, true
}
