package googleauth

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"

	"google-cse-mcp/internal/infrastructure/metrics"
	"google-cse-mcp/utils/platformerrors"
)

// SearchScope is the OAuth2 scope required by the Custom Search JSON API.
const SearchScope = "https://www.googleapis.com/auth/cse"

// SourceKind identifies how the service-account key is supplied.
type SourceKind string

const (
	// SourceFile reads the key document from a filesystem path.
	SourceFile SourceKind = "file"
	// SourceBase64 decodes the key document from a base64-encoded blob.
	SourceBase64 SourceKind = "base64"
)

// CredentialSource is the resolved supply mechanism for the service-account
// key: either a file path or a base64 blob, never both.
type CredentialSource struct {
	Kind  SourceKind
	value string
}

// DetectSource picks the credential supply mechanism from the two environment
// inputs. The file path takes precedence when both are set; this keeps local
// development (file) deterministic even when a CI blob is also exported.
func DetectSource(filePath, base64Blob string) (CredentialSource, error) {
	if filePath != "" {
		return CredentialSource{Kind: SourceFile, value: filePath}, nil
	}
	if base64Blob != "" {
		return CredentialSource{Kind: SourceBase64, value: base64Blob}, nil
	}
	return CredentialSource{}, platformerrors.NewError(
		platformerrors.LayerInfrastructure,
		platformerrors.ErrorTypeCredential,
		"either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_BASE64 is required",
		nil,
	)
}

// keyBytes loads the raw service-account key document. Error messages name
// the failing source but never include the document content.
func (s CredentialSource) keyBytes() ([]byte, error) {
	switch s.Kind {
	case SourceFile:
		data, err := os.ReadFile(s.value)
		if err != nil {
			return nil, platformerrors.NewError(
				platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeCredential,
				fmt.Sprintf("reading service account file %s", s.value),
				err,
			)
		}
		return data, nil
	case SourceBase64:
		data, err := base64.StdEncoding.DecodeString(s.value)
		if err != nil {
			return nil, platformerrors.NewError(
				platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeCredential,
				"decoding base64 service account blob",
				err,
			)
		}
		return data, nil
	default:
		return nil, platformerrors.NewError(
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeCredential,
			fmt.Sprintf("unknown credential source kind %q", s.Kind),
			nil,
		)
	}
}

// Credentials is the signing identity derived from a service-account key.
// Immutable after resolution; held for the process lifetime.
type Credentials struct {
	Email string

	conf *jwt.Config
}

// Resolve loads and parses the service-account key selected by the source.
// Keys missing client_email or private_key are rejected.
func (s CredentialSource) Resolve() (*Credentials, error) {
	data, err := s.keyBytes()
	if err != nil {
		return nil, err
	}

	conf, err := google.JWTConfigFromJSON(data, SearchScope)
	if err != nil {
		return nil, platformerrors.NewError(
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeCredential,
			fmt.Sprintf("parsing service account key from %s source", s.Kind),
			err,
		)
	}
	if conf.Email == "" || len(conf.PrivateKey) == 0 {
		return nil, platformerrors.NewError(
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeCredential,
			fmt.Sprintf("service account key from %s source is missing client_email or private_key", s.Kind),
			nil,
		)
	}

	return &Credentials{Email: conf.Email, conf: conf}, nil
}

// tokenFetchTimeout bounds each HTTP call to the OAuth2 token endpoint.
const tokenFetchTimeout = 10 * time.Second

// tokenContext carries a dedicated HTTP client for token-endpoint calls, so
// a hung token endpoint cannot block a tool call indefinitely. The oauth2
// package falls back to http.DefaultClient (no timeout) otherwise.
func tokenContext(timeout time.Duration) context.Context {
	return context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
}

// tokenSource builds the bearer-token source for the credentials. The JWT
// source is wrapped in oauth2.ReuseTokenSource, which caches the token in
// memory until near expiry and serializes concurrent refreshes under a mutex,
// so repeated searches within a process do not scale token issuance linearly.
func (c *Credentials) tokenSource() oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &issuanceCountingSource{
		inner: c.conf.TokenSource(tokenContext(tokenFetchTimeout)),
	})
}

// issuanceCountingSource records each successful token issuance; cache hits
// in the surrounding ReuseTokenSource never reach it, and failed fetches are
// not counted.
type issuanceCountingSource struct {
	inner oauth2.TokenSource
}

func (s *issuanceCountingSource) Token() (*oauth2.Token, error) {
	tok, err := s.inner.Token()
	if err != nil {
		return nil, err
	}
	metrics.RecordTokenIssuance()
	return tok, nil
}

// Provider resolves credentials lazily on first use and caches the outcome
// for the process lifetime. A failed resolution is also cached: every later
// call observes the same CREDENTIAL error deterministically.
type Provider struct {
	filePath   string
	base64Blob string

	once  sync.Once
	creds *Credentials
	err   error

	tsOnce sync.Once
	ts     oauth2.TokenSource
}

// NewProvider creates a provider over the two environment-supplied inputs.
func NewProvider(filePath, base64Blob string) *Provider {
	return &Provider{filePath: filePath, base64Blob: base64Blob}
}

// Credentials resolves the service-account credentials exactly once.
func (p *Provider) Credentials() (*Credentials, error) {
	p.once.Do(func() {
		source, err := DetectSource(p.filePath, p.base64Blob)
		if err != nil {
			p.err = err
			return
		}
		p.creds, p.err = source.Resolve()
	})
	return p.creds, p.err
}

// TokenSource returns the process-wide cached token source. Token-endpoint
// HTTP calls use a dedicated client with a bounded timeout rather than the
// per-call context, since the cached source outlives any single request.
func (p *Provider) TokenSource(_ context.Context) (oauth2.TokenSource, error) {
	creds, err := p.Credentials()
	if err != nil {
		return nil, err
	}
	p.tsOnce.Do(func() {
		p.ts = creds.tokenSource()
	})
	return p.ts, nil
}
