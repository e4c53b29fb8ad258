package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"

	domainsearch "google-cse-mcp/internal/domain/search"
	"google-cse-mcp/internal/infrastructure/metrics"
	"google-cse-mcp/utils/platformerrors"
)

const googleSearchToolName = "google_search"

// toolError is the structured error payload returned to the protocol layer.
// The boundary always receives either a valid search response or this
// object; failures never surface as protocol faults or crashes.
type toolError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SearchMCP handles MCP tool registration for Google Custom Search.
type SearchMCP struct {
	searchService *domainsearch.SearchService
}

// NewSearchMCP creates a new search MCP handler.
func NewSearchMCP(searchService *domainsearch.SearchService) *SearchMCP {
	return &SearchMCP{
		searchService: searchService,
	}
}

// RegisterTools registers the google_search tool with the MCP server
func (s *SearchMCP) RegisterTools(server *mcpserver.MCPServer) {
	server.AddTool(
		mcpgo.NewTool(googleSearchToolName,
			mcpgo.WithDescription("Search the web using the Google Custom Search API and return structured results. Requests above the API page cap of 10 results are capped, not paginated."),
			mcpgo.WithString("query",
				mcpgo.Required(),
				mcpgo.Description("Search query"),
			),
			mcpgo.WithNumber("num_results",
				mcpgo.Description("Number of results to return (1-100, default: 10)"),
			),
		),
		s.handleGoogleSearch,
	)
}

func (s *SearchMCP) handleGoogleSearch(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	start := time.Now()

	searchReq := domainsearch.SearchRequest{
		Query: req.GetString("query", ""),
	}
	if args := req.GetArguments(); args != nil {
		if raw, ok := args["num_results"]; ok {
			// JSON numbers arrive as float64; fractional values must not be
			// silently truncated into a valid count.
			if f, isFloat := raw.(float64); isFloat && math.Trunc(f) != f {
				metrics.RecordToolCall(googleSearchToolName, "invalid_argument")
				return toolErrorResult(platformerrors.ErrorTypeInvalidArgument, "num_results must be an integer"), nil
			}
			num, err := cast.ToIntE(raw)
			if err != nil {
				metrics.RecordToolCall(googleSearchToolName, "invalid_argument")
				return toolErrorResult(platformerrors.ErrorTypeInvalidArgument, "num_results must be an integer"), nil
			}
			searchReq.NumResults = &num
		}
	}

	searchResp, err := s.searchService.Search(ctx, searchReq)
	if err != nil {
		kind, message := classifyToolError(err)
		log.Error().
			Err(err).
			Str("tool", googleSearchToolName).
			Str("error_type", string(kind)).
			Msg("search tool call failed")
		metrics.RecordToolCall(googleSearchToolName, strings.ToLower(string(kind)))
		return toolErrorResult(kind, message), nil
	}

	jsonBytes, err := json.Marshal(searchResp)
	if err != nil {
		log.Error().Err(err).Str("tool", googleSearchToolName).Msg("failed to marshal search response")
		metrics.RecordToolCall(googleSearchToolName, "internal")
		return toolErrorResult(platformerrors.ErrorTypeInternal, "failed to encode search response"), nil
	}

	metrics.RecordToolCall(googleSearchToolName, "ok")
	metrics.ObserveToolDuration(googleSearchToolName, time.Since(start).Seconds())

	return mcpgo.NewToolResultText(string(jsonBytes)), nil
}

// classifyToolError extracts the failure class and a human-readable message.
func classifyToolError(err error) (platformerrors.ErrorType, string) {
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		message := platformErr.Message
		if platformErr.Err != nil {
			message = fmt.Sprintf("%s: %v", platformErr.Message, platformErr.Err)
		}
		return platformErr.Type, message
	}
	return platformerrors.ErrorTypeInternal, err.Error()
}

func toolErrorResult(kind platformerrors.ErrorType, message string) *mcpgo.CallToolResult {
	payload, err := json.Marshal(toolError{Kind: string(kind), Message: message})
	if err != nil {
		return mcpgo.NewToolResultError(message)
	}
	return mcpgo.NewToolResultError(string(payload))
}
