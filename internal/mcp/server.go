package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"savetrail/internal/store"
	"savetrail/internal/trend"
)

type Server struct {
	db       store.Store
	analyzer *trend.Analyzer
	mcp      *sdk.Server
}

func NewServer(db store.Store, version string) *Server {
	s := &Server{
		db:       db,
		analyzer: trend.New(db),
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "savetrail",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
