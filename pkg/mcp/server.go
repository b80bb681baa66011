package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	ecos "github.com/ecosdacama/dreams/pkg"
	"github.com/ecosdacama/dreams/pkg/dreams"
	"github.com/ecosdacama/dreams/pkg/interpret"
	"github.com/ecosdacama/dreams/pkg/utils"
)

// Config describes where the server keeps its data and which interpreter it calls.
type Config struct {
	DBPath      string
	WAL         bool
	Sync        string
	Interpreter *interpret.Client
	Logger      *slog.Logger
}

type DreamsMCPServer struct {
	mcpServer   *server.MCPServer
	store       *dreams.Store
	interpreter *interpret.Client
	logger      *slog.Logger
	DbPath      string
}

// NewDreamsMCPServer opens (and migrates) the store at cfg.DBPath and builds an MCP
// server with every dream tool registered.
func NewDreamsMCPServer(ctx context.Context, cfg Config) (*DreamsMCPServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dbPath, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	store, err := dreams.Open(ctx, dbPath, dreams.Options{WAL: cfg.WAL, Sync: cfg.Sync, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to open dream store: %w", err)
	}

	s := server.NewMCPServer(
		"Dreams MCP Server",
		ecos.Version,
		server.WithLogging(),
		server.WithRecovery(),
	)

	srv := &DreamsMCPServer{
		mcpServer:   s,
		store:       store,
		interpreter: cfg.Interpreter,
		logger:      logger,
		DbPath:      dbPath,
	}
	srv.RegisterTools()
	return srv, nil
}

// RegisterTools adds every dream tool to the underlying server.
func (s *DreamsMCPServer) RegisterTools() {
	RegisterPingTool(s.mcpServer)
	RegisterAddDreamTool(s.mcpServer, s.store)
	RegisterListDreamsTool(s.mcpServer, s.store)
	RegisterGetDreamTool(s.mcpServer, s.store)
	RegisterUpdateDreamTool(s.mcpServer, s.store)
	RegisterDeleteDreamTool(s.mcpServer, s.store)
	RegisterSearchDreamsTool(s.mcpServer, s.store)
	if s.interpreter != nil {
		RegisterInterpretDreamTool(s.mcpServer, s.store, s.interpreter)
	}
}

// Start runs the stdio event loop.
func (s *DreamsMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// Store returns the dream store backing the tools.
func (s *DreamsMCPServer) Store() *dreams.Store {
	return s.store
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *DreamsMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// Close cleans up allocated resources.
func (s *DreamsMCPServer) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
