package search

import (
	"context"
	"fmt"
	"strings"

	"google-cse-mcp/utils/platformerrors"
)

// SearchClient defines the Custom Search operations required by the domain layer
type SearchClient interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchService validates tool input and orchestrates search calls while
// remaining transport-agnostic.
type SearchService struct {
	client SearchClient
}

// NewSearchService creates a new search service
func NewSearchService(client SearchClient) *SearchService {
	return &SearchService{
		client: client,
	}
}

// Search validates the request and delegates to the search client. Validation
// failures return INVALID_ARGUMENT errors before any network activity.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, platformerrors.NewError(
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeInvalidArgument,
			"query must be a non-empty string",
			nil,
		)
	}

	num := DefaultNumResults
	if req.NumResults != nil {
		num = *req.NumResults
		if num < MinNumResults || num > MaxNumResults {
			return nil, platformerrors.NewError(
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeInvalidArgument,
				fmt.Sprintf("num_results must be between %d and %d, got %d", MinNumResults, MaxNumResults, num),
				nil,
			)
		}
	}

	return s.client.Search(ctx, SearchRequest{Query: query, NumResults: &num})
}
