package marketplace

import (
	"context"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/surveyloop/surveyloop/internal/config"
	"github.com/surveyloop/surveyloop/internal/logger"
)

// NewTokenSource builds a cached client-credentials token source scoped
// to the marketplace API audience. The token endpoint is the only call
// allowed a bounded retry; request-path calls never retry because the
// marketplace redelivers on failure.
func NewTokenSource(cfg *config.Configuration, log *logger.Logger) oauth2.TokenSource {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.Logger = log.GetRetryableHTTPLogger()

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, retryClient.StandardClient())

	credentials := &clientcredentials.Config{
		ClientID:     cfg.Marketplace.ClientID,
		ClientSecret: cfg.Marketplace.ClientSecret,
		TokenURL:     cfg.Marketplace.TokenURL,
		EndpointParams: url.Values{
			"resource": {cfg.Marketplace.Resource},
		},
	}

	return credentials.TokenSource(ctx)
}
