package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/lci-tools/internal/config"
	"github.com/ironsheep/lci-tools/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("lci-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("lci-mcp - MCP server for LCI layered composite images")
			fmt.Println()
			fmt.Println("Usage: lci-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=debug              Enable debug logging\n", config.EnvLogLevel)
			fmt.Printf("  %s=best         PNG compression: none, fast, best or default\n", config.EnvPNGCompression)
			fmt.Printf("  %s=4                    Concurrent layer writes for lci_unpack\n", config.EnvWorkers)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	settings := config.LoadSettings()
	if settings.Debug() {
		log.Printf("LCI MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Settings: compression=%d workers=%d", settings.PNGCompression, settings.Workers)
	}

	srv := server.New(settings)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
