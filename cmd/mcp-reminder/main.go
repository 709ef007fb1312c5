// Command mcp-reminder provides an MCP server for the user's Google reminders.
//
// It uses the same configuration and stored credentials as remind. Run remind
// once beforehand so the consent step does not happen while a client waits.
//
// Usage:
//
//	./mcp-reminder          # Start MCP server (stdio)
//	./mcp-reminder --help   # Show help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/reminders-cli/internal/app"
	"github.com/notexe/reminders-cli/internal/config"
	"github.com/notexe/reminders-cli/internal/logging"
	"github.com/notexe/reminders-cli/internal/mcpserver"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	configPath := os.Getenv("REMINDERS_CONFIG")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stdout carries the protocol; consent instructions go to stderr.
	client, err := app.NewClient(ctx, cfg, logger, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to reminders: %v\n", err)
		os.Exit(1)
	}

	parser, err := app.NewTimeParser(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create time parser: %v\n", err)
		os.Exit(1)
	}

	s := mcpserver.NewServer(client, parser, logger.Named("mcp"))

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Reminder Server - Google reminders via MCP protocol

USAGE:
    mcp-reminder          Start MCP server (communicates via stdio)
    mcp-reminder --help   Show this help

ENVIRONMENT:
    REMINDERS_CONFIG  Path to the configuration file
                      Default: ~/.config/reminders-cli/config.yaml
    REMINDERS_*       Configuration overrides, e.g. REMINDERS_LOG__LEVEL=debug

TOOLS:
    add_reminder       Create a reminder (title, due_date, all_day)
    get_reminder       Fetch a reminder by id
    list_reminders     List recently created reminders (count, before)
    complete_reminder  Mark a reminder as done
    update_reminder    Change title or due time
    delete_reminder    Delete a reminder permanently

CONFIGURATION:
    Add to your MCP client configuration:
    {
      "mcpServers": {
        "reminders": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}
