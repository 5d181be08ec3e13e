package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Code-Monger/InkPilot/pkg/analysis"
	"github.com/Code-Monger/InkPilot/pkg/config"
	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/locatetool"
	"github.com/Code-Monger/InkPilot/pkg/metrics"
	"github.com/Code-Monger/InkPilot/pkg/project"
	"github.com/Code-Monger/InkPilot/pkg/quota"
	"github.com/Code-Monger/InkPilot/pkg/serverinfo"
	"github.com/Code-Monger/InkPilot/pkg/session"
	"github.com/Code-Monger/InkPilot/pkg/spellcheck"
	"github.com/Code-Monger/InkPilot/pkg/stats"
)

var (
	configPath   = flag.String("config", "", "Path to a YAML or TOML config file")
	port         = flag.Int("port", 8080, "Port to listen on")
	baseURL      = flag.String("baseurl", "", "Base URL for the server (e.g., http://localhost:8080)")
	serverName   = flag.String("name", "InkPilot", "Server name")
	serverVer    = flag.String("version", "1.0.0", "Server version")
	timeoutSecs  = flag.Int("timeout", 30, "Graceful shutdown timeout in seconds")
	instructions = flag.String("instructions", "", "Server instructions")
	dataDir      = flag.String("data-dir", "", "Directory to store data files (default: ~/.inkpilot)")
	annotatorArg = flag.String("annotator", config.AnnotatorAuto, "Finding source: auto, llm or local")
	modelName    = flag.String("model", "", "Model name for the llm annotator")
)

// loadConfig reads the config file and environment, then applies the flags
// that were given explicitly on the command line.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "baseurl":
			cfg.Server.BaseURL = *baseURL
		case "name":
			cfg.Server.Name = *serverName
		case "version":
			cfg.Server.Version = *serverVer
		case "timeout":
			cfg.Server.Timeout = time.Duration(*timeoutSecs) * time.Second
		case "instructions":
			cfg.Server.Instructions = *instructions
		case "data-dir":
			cfg.DataDir = *dataDir
		case "annotator":
			cfg.Annotator = *annotatorArg
		case "model":
			cfg.Model.Name = *modelName
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Create the MCP server
	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithInstructions(cfg.Server.Instructions),
	)

	// Stores
	sessions := session.NewStore(finding.ResolveOptions{UseContext: cfg.Matching.UseContext})
	projects, err := project.NewStore(filepath.Join(cfg.DataDir, "projects.json"))
	if err != nil {
		log.Fatalf("Failed to initialize project store: %v", err)
	}
	quotas, err := quota.NewManager(filepath.Join(cfg.DataDir, "usage.json"), cfg.Quota)
	if err != nil {
		log.Fatalf("Failed to initialize quota manager: %v", err)
	}

	// Metrics and stats service
	m := metrics.New(sessions.Count)
	stats.SetMetrics(m)
	if err := stats.InitStatsManager(cfg.DataDir); err != nil {
		log.Fatalf("Failed to initialize stats manager: %v", err)
	}

	checker := spellcheck.NewChecker(cfg.Spellcheck.Words...)
	annotator := analysis.NewAnnotator(cfg, checker)
	log.Printf("[Server] Using annotator %s", annotator.Name())

	// Register tools and resources
	serverinfo.RegisterServerInfo(mcpServer, serverinfo.Info{
		Name:      cfg.Server.Name,
		Version:   cfg.Server.Version,
		Annotator: annotator.Name(),
		Sessions:  sessions.Count,
	})
	session.RegisterEditor(mcpServer, session.NewEditor(sessions, projects))
	analysis.RegisterAnalyze(mcpServer, analysis.NewAnalyzer(sessions, annotator, quotas, m))
	locatetool.RegisterLocate(mcpServer, finding.ResolveOptions{UseContext: cfg.Matching.UseContext})
	spellcheck.RegisterSpellCheck(mcpServer, checker)
	project.RegisterProject(mcpServer, projects)
	quota.RegisterUsage(mcpServer, quotas)

	// Register stats tool
	if err := stats.RegisterStats(mcpServer); err != nil {
		log.Fatalf("Failed to register stats tool: %v", err)
	}

	// Create the SSE server
	baseURLValue := cfg.Server.BaseURL
	if baseURLValue == "" {
		baseURLValue = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	// Create SSE server
	sseServer := server.NewSSEServer(
		mcpServer,
		server.WithBaseURL(baseURLValue),
		server.WithSSEEndpoint("/"),
		server.WithMessageEndpoint("/messages"),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/", sseServer)

	// Set up HTTP server
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}

	// Set up signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		log.Printf("[Server] Starting MCP server on port %d...", cfg.Server.Port)
		log.Printf("[Server] Base URL: %s", baseURLValue)
		log.Printf("[Server] Data directory: %s", cfg.DataDir)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Server] Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-stop

	// Create a deadline for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer shutdownCancel()

	// Shutdown the server
	log.Println("[Server] Shutting down server...")

	// Print final stats before shutdown
	if statsManager := stats.GetStatsManager(); statsManager != nil {
		sessionStats := statsManager.GetSessionStats()
		persistentStats := statsManager.GetPersistentStats()
		statsText := stats.FormatStats(sessionStats, persistentStats)
		log.Printf("[Server] Final server statistics:\n%s", statsText)
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("[Server] Server shutdown failed: %v", err)
	}
	log.Println("[Server] Server stopped")
}
