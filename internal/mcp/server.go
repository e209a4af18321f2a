package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"hire-oracle/internal/config"
)

// Server exposes the forecasting engine as MCP tools.
type Server struct {
	cfg *config.AppConfig
	sdk *sdk.Server
}

// NewServer creates a new MCP server with every tool registered.
func NewServer(cfg *config.AppConfig, version string) *Server {
	s := &Server{cfg: cfg}
	s.sdk = sdk.NewServer(&sdk.Implementation{
		Name:    "hire-oracle",
		Title:   "Hire Oracle",
		Version: version,
	}, nil)
	s.registerTools()
	return s
}

// Start serves MCP over stdio until the client disconnects or ctx ends.
func (s *Server) Start(ctx context.Context) error {
	log.Info().Str("dataPath", s.cfg.DataPath).Msg("MCP Server listening on stdio")
	if err := s.sdk.Run(ctx, &sdk.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("MCP session ended with error")
		return err
	}
	return nil
}

// Connect attaches the server to an arbitrary transport.
func (s *Server) Connect(ctx context.Context, t sdk.Transport) (*sdk.ServerSession, error) {
	return s.sdk.Connect(ctx, t, nil)
}
