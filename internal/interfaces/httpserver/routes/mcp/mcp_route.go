package mcp

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"google-cse-mcp/internal/interfaces/httpserver/responses"
	"google-cse-mcp/utils/platformerrors"
)

var allowedMCPMethods = map[string]bool{
	// Initialization / handshake
	"initialize":                true,
	"notifications/initialized": true,
	"ping":                      true,

	// Tools
	"tools/list": true,
	"tools/call": true,
}

// MCPRoute owns the MCP server and exposes it over the configured transport.
type MCPRoute struct {
	searchMCP   *SearchMCP
	mcpServer   *mcpserver.MCPServer
	httpHandler *mcpserver.StreamableHTTPServer
}

func NewMCPRoute(
	searchMCP *SearchMCP,
) *MCPRoute {
	server := mcpserver.NewMCPServer("google-custom-search", "1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	searchMCP.RegisterTools(server)

	return &MCPRoute{
		searchMCP:   searchMCP,
		mcpServer:   server,
		httpHandler: mcpserver.NewStreamableHTTPServer(server, mcpserver.WithStateLess(true)),
	}
}

// RegisterRouter mounts the MCP endpoint on the HTTP transport.
func (route *MCPRoute) RegisterRouter(router *gin.RouterGroup) {
	router.POST("/mcp",
		MCPMethodGuard(allowedMCPMethods),
		route.serveMCP,
	)
}

// ServeStdio runs the MCP server over stdin/stdout until the client
// disconnects. Used when the transport is a single-client stdio channel.
func (route *MCPRoute) ServeStdio() error {
	return mcpserver.ServeStdio(route.mcpServer)
}

// serveMCP streams Model Context Protocol responses using the underlying MCP server.
func (route *MCPRoute) serveMCP(reqCtx *gin.Context) {
	route.httpHandler.ServeHTTP(reqCtx.Writer, reqCtx.Request)
}

// MCPMethodGuard rejects JSON-RPC methods outside the allowlist before they
// reach the MCP server.
func MCPMethodGuard(allowedMethods map[string]bool) gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		bodyBytes, err := io.ReadAll(reqCtx.Request.Body)
		if err != nil {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInternal, "failed to read MCP request body")
			return
		}
		_ = reqCtx.Request.Body.Close()

		if len(bodyBytes) == 0 {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInvalidArgument, "empty MCP request body")
			return
		}

		reqCtx.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var payload struct {
			Method string `json:"method"`
		}

		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInvalidArgument, "invalid MCP request payload")
			return
		}

		if payload.Method == "" {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInvalidArgument, "missing method field in MCP request")
			return
		}

		if !allowedMethods[payload.Method] {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInvalidArgument, "unsupported MCP method: "+payload.Method)
			return
		}

		reqCtx.Next()
	}
}
