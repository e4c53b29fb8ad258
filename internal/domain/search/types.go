package search

// DefaultNumResults is applied when the caller omits num_results.
const DefaultNumResults = 10

const (
	// MinNumResults and MaxNumResults bound the num_results tool argument.
	MinNumResults = 1
	MaxNumResults = 100
)

// SearchRequest represents one search invocation. NumResults is nil when the
// caller omitted it; the service normalizes it before the request reaches the
// client.
type SearchRequest struct {
	Query      string `json:"query"`
	NumResults *int   `json:"num_results,omitempty"` // Number of results (1-100, default: 10)
}

// SearchResult is a single result item in upstream relevance order.
type SearchResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"display_link"`
}

// SearchResponse is the stable output schema of the google_search tool.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalResults int64          `json:"total_results"` // Upstream estimate; may exceed len(Results)
	SearchTime   float64        `json:"search_time"`   // Seconds, as reported upstream
}
