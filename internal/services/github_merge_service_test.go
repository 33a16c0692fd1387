package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/alimgiray/gmash/internal/models"
	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const starLink = `<https://api.github.com/user/1/starred?per_page=1&page=1>; rel="first", ` +
	`<https://api.github.com/user/1/starred?per_page=1&page=7>; rel="last"`

// setupGitHubMerger creates a GitHubMergeService that talks to a fake GitHub API.
// Paths missing from routes answer 404.
func setupGitHubMerger(t *testing.T, routes map[string]http.HandlerFunc) (*GitHubMergeService, *int64) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		if handler, ok := routes[r.URL.Path]; ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}))
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	return NewGitHubMergeService(client, 4), &requests
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

// pagedHandler serves pages[0] for page 1, pages[1] for page 2 and an empty list afterwards
func pagedHandler(t *testing.T, pages ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			fmt.Sscanf(p, "%d", &page)
		}
		w.Header().Set("Content-Type", "application/json")
		if page-1 < len(pages) {
			fmt.Fprint(w, pages[page-1])
			return
		}
		fmt.Fprint(w, `[]`)
	}
}

func TestGitHubMerge(t *testing.T) {
	merger, _ := setupGitHubMerger(t, map[string]http.HandlerFunc{
		"/users/octo": jsonHandler(`{"login": "octo", "followers": 5}`),
		"/users/octo/starred": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1", r.URL.Query().Get("per_page"))
			w.Header().Set("Link", starLink)
			fmt.Fprint(w, `[{"repo": {"name": "starred"}}]`)
		},
		"/users/octo/repos": pagedHandler(t, `[
			{"name": "hello", "owner": {"login": "octo"}, "fork": false, "watchers_count": 3,
			 "stargazers_count": 3, "open_issues_count": 2, "size": 100, "language": "Go"},
			{"name": "forked", "owner": {"login": "octo"}, "fork": true, "watchers_count": 1,
			 "stargazers_count": 1, "open_issues_count": 0, "size": 50, "language": "go"},
			null,
			{"name": "docs", "owner": {"login": "octo"}, "fork": false, "size": 7, "language": null}
		]`),
		"/repos/octo/hello/contributors": jsonHandler(`[
			{"login": "someone", "contributions": 99},
			{"login": "OCTO", "contributions": 12}
		]`),
		"/repos/octo/forked/contributors": jsonHandler(`[{"login": "upstream", "contributions": 4}]`),
		"/repos/octo/docs/contributors":   jsonHandler(`[{"login": "octo", "contributions": 1}]`),
		"/repos/octo/hello/topics": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/vnd.github.mercy-preview+json", r.Header.Get("Accept"))
			fmt.Fprint(w, `{"names": ["cli", "golang"]}`)
		},
		"/repos/octo/forked/topics": jsonHandler(`{"names": ["golang", "api"]}`),
		"/repos/octo/docs/topics":   jsonHandler(`{"names": []}`),
	})

	summary := merger.Merge(context.Background(), "octo", models.NewProfileSummary())

	assert.Equal(t, 2, summary.RepoCount.Original)
	assert.Equal(t, 1, summary.RepoCount.Forked)
	assert.Equal(t, 4, summary.RepoWatchers)
	assert.Equal(t, 5, summary.UserWatchers)
	assert.Equal(t, 4, summary.Stars.Received)
	assert.Equal(t, 7, summary.Stars.Given)
	assert.Equal(t, 2, summary.OpenIssues)
	assert.Equal(t, 13, summary.Commits)
	assert.Equal(t, 157, summary.AccountSize)
	assert.Equal(t, []string{"go"}, summary.Languages.List)
	assert.Equal(t, 1, summary.Languages.Count)
	assert.Equal(t, []string{"cli", "golang", "api"}, summary.RepoTopics.List)
	assert.Equal(t, 3, summary.RepoTopics.Count)
}

func TestGitHubMergeSkipsMalformedRepositories(t *testing.T) {
	good := `{"name": "good", "owner": {"login": "octo"}, "size": 5, "language": "Go"}`
	testCases := []struct {
		name string
		page string
	}{
		{name: "Non-object entry", page: `[` + good + `, "garbage", 42]`},
		{name: "Mistyped field", page: `[` + good + `, {"name": "bad", "size": "huge"}]`},
		{name: "Mixed", page: `[{"name": "bad", "fork": "yes"}, ` + good + `, "garbage", null]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			merger, _ := setupGitHubMerger(t, map[string]http.HandlerFunc{
				"/users/octo/repos": pagedHandler(t, tc.page, `[{"name": "later", "owner": {"login": "octo"}, "size": 1}]`),
			})

			summary := merger.Merge(context.Background(), "octo", models.NewProfileSummary())

			assert.Equal(t, 2, summary.RepoCount.Original)
			assert.Equal(t, 0, summary.RepoCount.Forked)
			assert.Equal(t, 6, summary.AccountSize)
			assert.Equal(t, []string{"go"}, summary.Languages.List)
		})
	}
}

func TestGitHubMergeForkClassification(t *testing.T) {
	merger, _ := setupGitHubMerger(t, map[string]http.HandlerFunc{
		"/users/octo/repos": pagedHandler(t, `[
			{"name": "a", "owner": {"login": "octo"}, "fork": false},
			{"name": "b", "owner": {"login": "octo"}, "fork": true}
		]`),
	})

	summary := merger.Merge(context.Background(), "octo", models.NewProfileSummary())

	assert.Equal(t, 1, summary.RepoCount.Original)
	assert.Equal(t, 1, summary.RepoCount.Forked)
}

func TestGitHubMergePagination(t *testing.T) {
	merger, _ := setupGitHubMerger(t, map[string]http.HandlerFunc{
		"/users/octo/repos": pagedHandler(t,
			`[{"name": "one", "owner": {"login": "octo"}, "size": 1}]`,
			`[{"name": "two", "owner": {"login": "octo"}, "size": 2}]`,
		),
	})

	summary := merger.Merge(context.Background(), "octo", models.NewProfileSummary())

	assert.Equal(t, 2, summary.RepoCount.Original)
	assert.Equal(t, 3, summary.AccountSize)
}

func TestGitHubMergeMissingContributor(t *testing.T) {
	merger, _ := setupGitHubMerger(t, map[string]http.HandlerFunc{
		"/users/octo/repos":              pagedHandler(t, `[{"name": "hello", "owner": {"login": "octo"}}]`),
		"/repos/octo/hello/contributors": jsonHandler(`[{"login": "someone-else", "contributions": 40}]`),
	})

	summary := merger.Merge(context.Background(), "octo", models.NewProfileSummary())

	assert.Equal(t, 0, summary.Commits)
	assert.Equal(t, 1, summary.RepoCount.Original)
}

func TestGitHubMergeUpstreamFailure(t *testing.T) {
	fail := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}
	merger, _ := setupGitHubMerger(t, map[string]http.HandlerFunc{
		"/users/octo":         fail,
		"/users/octo/starred": fail,
		"/users/octo/repos":   fail,
	})

	summary := merger.Merge(context.Background(), "octo", models.NewProfileSummary())

	assert.Equal(t, models.NewProfileSummary(), summary)
}

func TestGitHubMergeEmptyUsername(t *testing.T) {
	merger, requests := setupGitHubMerger(t, nil)

	summary := merger.Merge(context.Background(), "", models.NewProfileSummary())

	assert.Equal(t, models.NewProfileSummary(), summary)
	assert.Equal(t, int64(0), atomic.LoadInt64(requests))
}

func TestGitHubMergeAddsToExistingSummary(t *testing.T) {
	merger, _ := setupGitHubMerger(t, map[string]http.HandlerFunc{
		"/users/octo": jsonHandler(`{"followers": 2}`),
		"/users/octo/repos": pagedHandler(t, `[{"name": "a", "owner": {"login": "octo"}, "language": "Python"}]`),
	})

	summary := models.NewProfileSummary()
	summary.UserWatchers = 10
	summary.AddLanguage("python")

	result := merger.Merge(context.Background(), "octo", summary)

	assert.Same(t, summary, result)
	assert.Equal(t, 12, summary.UserWatchers)
	assert.Equal(t, []string{"python"}, summary.Languages.List)
}

func TestLastPageFromLink(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		expected int
	}{
		{name: "First and last", header: starLink, expected: 7},
		{
			name: "Next and last from GitHub",
			header: `<https://api.github.com/user/583231/starred?per_page=1&page=2>; rel="next", ` +
				`<https://api.github.com/user/583231/starred?per_page=1&page=1342>; rel="last"`,
			expected: 1342,
		},
		{name: "Page before per_page", header: `<https://x/starred?page=9&per_page=1>; rel="last"`, expected: 9},
		{name: "Empty header", header: "", expected: 0},
		{name: "No last relation", header: `<https://x/starred?per_page=1&page=2>; rel="next"`, expected: 0},
		{name: "Malformed page", header: `<https://x/starred?per_page=1&page=abc>; rel="last"`, expected: 0},
		{name: "Garbage", header: "not a link header", expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, lastPageFromLink(tc.header))
		})
	}
}
