// Package mcp exposes the reconciliation engine's entry points as MCP
// tools over stdio, so MCP clients can inspect and authorize displays.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/displayward/displayward/internal/engine"
)

const (
	ServerName    = "displayward"
	ServerVersion = "0.1.0"
)

// Server is the MCP server wrapping one engine instance.
type Server struct {
	mcpServer *mcpsdk.Server
	engine    *engine.Engine
}

// NewServer creates an MCP server backed by the given engine.
func NewServer(eng *engine.Engine) *Server {
	s := &Server{engine: eng}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List currently detected displays with their stable identity, geometry and authorization state. Unknown displays are disabled by policy until authorized.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "authorize_display",
		Description: "Authorize a display by identity: persist its currently detected geometry as the approved configuration and enable the output. This is the only way an unknown display becomes known.",
	}, s.handleAuthorizeDisplay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "revoke_display",
		Description: "Revoke a display's authorization and disable its output. Resolves against the last enumeration; absent identities are a no-op.",
	}, s.handleRevokeDisplay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "forget_display",
		Description: "Remove a display's authorization record entirely, returning it to the default-deny state on the next reconciliation pass.",
	}, s.handleForgetDisplay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reconcile",
		Description: "Run one full reconciliation pass: enumerate displays, disable unknown active ones, and apply the fail-safe that keeps at least one display active.",
	}, s.handleReconcile)
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	if err := s.engine.Refresh(); err != nil {
		return nil, ListDisplaysOutput{}, err
	}

	statuses := s.engine.Displays()
	out := ListDisplaysOutput{Displays: make([]DisplayInfo, 0, len(statuses))}
	for _, st := range statuses {
		d := st.Display
		out.Displays = append(out.Displays, DisplayInfo{
			Identity:   d.Identity(),
			Connector:  d.ConnectorName,
			Make:       d.Make,
			Model:      d.Model,
			Serial:     d.Serial,
			Mode:       d.Mode(),
			RefreshHz:  d.RefreshHz,
			X:          d.X,
			Y:          d.Y,
			Scale:      d.Scale,
			Active:     d.Active,
			Known:      st.Known,
			Authorized: st.Authorized,
		})
	}
	return nil, out, nil
}

func (s *Server) handleAuthorizeDisplay(_ context.Context, _ *mcpsdk.CallToolRequest, args AuthorizeDisplayInput) (*mcpsdk.CallToolResult, AuthorizeDisplayOutput, error) {
	if err := s.engine.Authorize(args.Identity); err != nil {
		return nil, AuthorizeDisplayOutput{}, err
	}
	return nil, AuthorizeDisplayOutput{Identity: args.Identity}, nil
}

func (s *Server) handleRevokeDisplay(_ context.Context, _ *mcpsdk.CallToolRequest, args RevokeDisplayInput) (*mcpsdk.CallToolResult, RevokeDisplayOutput, error) {
	if err := s.engine.Revoke(args.Identity); err != nil {
		return nil, RevokeDisplayOutput{}, err
	}
	return nil, RevokeDisplayOutput{Identity: args.Identity}, nil
}

func (s *Server) handleForgetDisplay(_ context.Context, _ *mcpsdk.CallToolRequest, args ForgetDisplayInput) (*mcpsdk.CallToolResult, ForgetDisplayOutput, error) {
	if err := s.engine.Forget(args.Identity); err != nil {
		return nil, ForgetDisplayOutput{}, err
	}
	return nil, ForgetDisplayOutput{Identity: args.Identity}, nil
}

func (s *Server) handleReconcile(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReconcileInput) (*mcpsdk.CallToolResult, ReconcileOutput, error) {
	summary, err := s.engine.Reconcile()
	if err != nil {
		return nil, ReconcileOutput{}, err
	}
	return nil, ReconcileOutput{
		Detected:    summary.Detected,
		KnownActive: summary.KnownActive,
		Unknown:     summary.Unknown,
		Disabled:    summary.Disabled,
		FailSafe:    summary.FailSafe,
	}, nil
}
