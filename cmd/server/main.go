package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	domainsearch "google-cse-mcp/internal/domain/search"
	"google-cse-mcp/internal/infrastructure/config"
	"google-cse-mcp/internal/infrastructure/customsearch"
	"google-cse-mcp/internal/infrastructure/googleauth"
	"google-cse-mcp/internal/infrastructure/logger"
	"google-cse-mcp/internal/interfaces/httpserver"
	"google-cse-mcp/internal/interfaces/httpserver/routes/mcp"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)

	log.Info().
		Str("transport", cfg.Transport).
		Str("credential_source", cfg.CredentialSourceLabel()).
		Bool("engine_id_configured", cfg.SearchEngineID != "").
		Msg("starting google-cse-mcp server")

	provider := googleauth.NewProvider(cfg.ServiceAccountFile, cfg.ServiceAccountBase64)
	if creds, credErr := provider.Credentials(); credErr != nil {
		// Not fatal: each tool call reports the same structured error.
		log.Warn().Err(credErr).Msg("service account credentials unavailable at startup")
	} else {
		log.Info().Str("client_email", creds.Email).Msg("service account credentials resolved")
	}

	searchClient := customsearch.NewClient(customsearch.ClientConfig{
		EngineID:           cfg.SearchEngineID,
		Endpoint:           cfg.SearchEndpoint,
		HTTPTimeout:        time.Duration(cfg.SearchHTTPTimeout) * time.Second,
		MaxConnsPerHost:    cfg.SearchMaxConnsPerHost,
		MaxIdleConns:       cfg.SearchMaxIdleConns,
		IdleConnTimeout:    time.Duration(cfg.SearchIdleConnTimeout) * time.Second,
		RetryMaxAttempts:   cfg.SearchRetryMaxAttempts,
		RetryInitialDelay:  time.Duration(cfg.SearchRetryInitialDelay) * time.Millisecond,
		RetryMaxDelay:      time.Duration(cfg.SearchRetryMaxDelay) * time.Millisecond,
		RetryBackoffFactor: cfg.SearchRetryBackoffFactor,
	}, provider)

	searchService := domainsearch.NewSearchService(searchClient)
	searchMCP := mcp.NewSearchMCP(searchService)
	mcpRoute := mcp.NewMCPRoute(searchMCP)

	switch cfg.Transport {
	case config.TransportStdio:
		if err := mcpRoute.ServeStdio(); err != nil {
			log.Fatal().Err(err).Msg("stdio transport terminated")
		}
	case config.TransportHTTP:
		server := httpserver.NewHTTPServer(cfg, mcpRoute)
		log.Info().Str("port", cfg.HTTPPort).Msg("listening for MCP over HTTP")
		if err := server.Run(); err != nil {
			log.Fatal().Err(err).Msg("http server terminated")
		}
	default:
		log.Error().Str("transport", cfg.Transport).Msg("unsupported transport")
		os.Exit(1)
	}
}
