package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"sitewright/internal/config"
	"sitewright/internal/resolve"
	"sitewright/internal/store"
)

type Server struct {
	cfg      *config.Config
	db       store.Store
	resolver *resolve.Resolver
	mcp      *sdk.Server
}

func NewServer(cfg *config.Config, db store.Store, version string) *Server {
	s := &Server{
		cfg:      cfg,
		db:       db,
		resolver: resolve.New(db, cfg.Location()),
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "sitewright",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
