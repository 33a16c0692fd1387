package services

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/alimgiray/gmash/pkg/config"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// NewGitHubClient creates a GitHub client authenticated with the configured
// credentials. A token wins over basic credentials; with neither the client
// is anonymous.
func NewGitHubClient(cfg *config.Config) (*github.Client, error) {
	httpClient := &http.Client{Timeout: cfg.Fetch.Timeout}

	switch {
	case cfg.GitHub.Token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHub.Token})
		httpClient.Transport = &oauth2.Transport{
			Base:   http.DefaultTransport,
			Source: ts,
		}
	case cfg.GitHub.Username != "":
		httpClient.Transport = &github.BasicAuthTransport{
			Username: cfg.GitHub.Username,
			Password: cfg.GitHub.Password,
		}
	}

	client := github.NewClient(httpClient)

	baseURL, err := url.Parse(cfg.GitHub.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", cfg.GitHub.APIURL, err)
	}
	client.BaseURL = baseURL

	return client, nil
}
