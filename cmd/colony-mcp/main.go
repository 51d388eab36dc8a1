package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ironsheep/colony-counter-mcp/internal/config"
	"github.com/ironsheep/colony-counter-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("colony-counter-mcp - MCP server for counting colonies on soft-agar plates")
	fmt.Println()
	fmt.Println("Usage: colony-counter-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <path>        Load settings from a JSON config file")
	fmt.Println("  --init-config <path>   Write the default config to a file and exit")
	fmt.Println("  --version, -v          Print version information")
	fmt.Println("  --help, -h             Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=<path>      Config file (overridden by --config)\n", config.EnvConfigPath)
	fmt.Printf("  %s=debug    Log level (debug, info, warn, error)\n", config.EnvLogLevel)
	fmt.Printf("  %s=<n>        Batch worker count\n", config.EnvWorkers)
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Logs are written to stderr.")
}

func main() {
	configPath := os.Getenv(config.EnvConfigPath)

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v", "version":
			fmt.Printf("colony-counter-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		case "--config", "--init-config":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a path\n", args[i])
				os.Exit(2)
			}
			if args[i] == "--init-config" {
				if err := config.DefaultConfig().Save(args[i+1]); err != nil {
					fmt.Fprintf(os.Stderr, "failed to write config: %v\n", err)
					os.Exit(1)
				}
				return
			}
			configPath = args[i+1]
			i++
		default:
			fmt.Fprintf(os.Stderr, "unknown option %s\n\n", args[i])
			usage()
			os.Exit(2)
		}
	}

	cfg, err := config.Load(configPath)
	if err == nil {
		err = cfg.ApplyEnv(os.LookupEnv)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout is for MCP protocol
	level := cfg.Level()
	var logger zerolog.Logger
	if level <= zerolog.DebugLevel {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	logger = logger.Level(level).With().Timestamp().Logger()

	logger.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Str("config", configPath).
		Msg("colony counter MCP server starting")

	server.Version = Version
	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
