package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsearch "google-cse-mcp/internal/domain/search"
	"google-cse-mcp/utils/platformerrors"
)

// stubSearchClient returns a canned response or error for handler tests.
type stubSearchClient struct {
	calls    int
	response *domainsearch.SearchResponse
	err      error
}

func (c *stubSearchClient) Search(_ context.Context, _ domainsearch.SearchRequest) (*domainsearch.SearchResponse, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.response, nil
}

func newSearchMCP(client *stubSearchClient) *SearchMCP {
	return NewSearchMCP(domainsearch.NewSearchService(client))
}

func callToolRequest(args map[string]any) mcpgo.CallToolRequest {
	req := mcpgo.CallToolRequest{}
	req.Params.Name = googleSearchToolName
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcpgo.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func decodeToolError(t *testing.T, result *mcpgo.CallToolResult) toolError {
	t.Helper()
	var payload toolError
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	return payload
}

func TestHandleGoogleSearchSuccess(t *testing.T) {
	client := &stubSearchClient{response: &domainsearch.SearchResponse{
		Results: []domainsearch.SearchResult{
			{Title: "Go", Link: "https://go.dev", Snippet: "The Go programming language", DisplayLink: "go.dev"},
		},
		TotalResults: 1,
		SearchTime:   0.2,
	}}
	handler := newSearchMCP(client)

	result, err := handler.handleGoogleSearch(context.Background(), callToolRequest(map[string]any{
		"query":       "golang",
		"num_results": float64(1),
	}))

	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp domainsearch.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Go", resp.Results[0].Title)
	assert.Equal(t, "go.dev", resp.Results[0].DisplayLink)
	assert.Equal(t, int64(1), resp.TotalResults)
}

func TestHandleGoogleSearchMissingQuery(t *testing.T) {
	client := &stubSearchClient{}
	handler := newSearchMCP(client)

	result, err := handler.handleGoogleSearch(context.Background(), callToolRequest(map[string]any{}))

	require.NoError(t, err, "validation failures are tool errors, not protocol errors")
	require.True(t, result.IsError)

	payload := decodeToolError(t, result)
	assert.Equal(t, string(platformerrors.ErrorTypeInvalidArgument), payload.Kind)
	assert.Equal(t, 0, client.calls)
}

func TestHandleGoogleSearchNonIntegerNumResults(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "string", value: "plenty"},
		{name: "fractional float", value: float64(5.7)},
		{name: "negative fractional float", value: float64(-0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubSearchClient{}
			handler := newSearchMCP(client)

			result, err := handler.handleGoogleSearch(context.Background(), callToolRequest(map[string]any{
				"query":       "golang",
				"num_results": tt.value,
			}))

			require.NoError(t, err)
			require.True(t, result.IsError)

			payload := decodeToolError(t, result)
			assert.Equal(t, string(platformerrors.ErrorTypeInvalidArgument), payload.Kind)
			assert.Contains(t, payload.Message, "num_results")
			assert.Equal(t, 0, client.calls)
		})
	}
}

func TestHandleGoogleSearchOutOfRangeNumResults(t *testing.T) {
	client := &stubSearchClient{}
	handler := newSearchMCP(client)

	result, err := handler.handleGoogleSearch(context.Background(), callToolRequest(map[string]any{
		"query":       "golang",
		"num_results": float64(101),
	}))

	require.NoError(t, err)
	require.True(t, result.IsError)

	payload := decodeToolError(t, result)
	assert.Equal(t, string(platformerrors.ErrorTypeInvalidArgument), payload.Kind)
	assert.Equal(t, 0, client.calls)
}

func TestHandleGoogleSearchMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind platformerrors.ErrorType
	}{
		{
			name:     "credential",
			err:      platformerrors.NewError(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeCredential, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_BASE64 is required", nil),
			wantKind: platformerrors.ErrorTypeCredential,
		},
		{
			name:     "configuration",
			err:      platformerrors.NewError(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeConfiguration, "search engine id is not configured (GOOGLE_SEARCH_ENGINE_ID)", nil),
			wantKind: platformerrors.ErrorTypeConfiguration,
		},
		{
			name:     "transient",
			err:      platformerrors.NewError(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeTransientSearch, "Custom Search API unavailable after retries", nil),
			wantKind: platformerrors.ErrorTypeTransientSearch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newSearchMCP(&stubSearchClient{err: tt.err})

			result, err := handler.handleGoogleSearch(context.Background(), callToolRequest(map[string]any{
				"query": "golang",
			}))

			require.NoError(t, err)
			require.True(t, result.IsError)

			payload := decodeToolError(t, result)
			assert.Equal(t, string(tt.wantKind), payload.Kind)
			assert.NotEmpty(t, payload.Message)
		})
	}
}

func TestHandleGoogleSearchZeroResults(t *testing.T) {
	client := &stubSearchClient{response: &domainsearch.SearchResponse{
		Results:      []domainsearch.SearchResult{},
		TotalResults: 0,
	}}
	handler := newSearchMCP(client)

	result, err := handler.handleGoogleSearch(context.Background(), callToolRequest(map[string]any{
		"query": "nothing matches this",
	}))

	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp domainsearch.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Empty(t, resp.Results)
	assert.Equal(t, int64(0), resp.TotalResults)
}
