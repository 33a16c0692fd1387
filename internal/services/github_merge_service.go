package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/alimgiray/gmash/internal/models"
	"github.com/alimgiray/gmash/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const githubReposPerPage = 100

// lastPagePattern captures the page number of the rel="last" entry of a Link header
var lastPagePattern = regexp.MustCompile(`<[^>]*[?&]page=(\d+)[^>]*>;\s*rel="last"`)

// GitHubMergeService folds a GitHub account into a profile summary
type GitHubMergeService struct {
	client      *github.Client
	concurrency int
}

// githubRepoExtras holds the per-repository data that needs extra requests
type githubRepoExtras struct {
	commits int
	topics  []string
}

func NewGitHubMergeService(client *github.Client, concurrency int) *GitHubMergeService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &GitHubMergeService{
		client:      client,
		concurrency: concurrency,
	}
}

// Merge adds the GitHub account of username to summary and returns it.
// Failed requests are logged and contribute nothing.
func (s *GitHubMergeService) Merge(ctx context.Context, username string, summary *models.ProfileSummary) *models.ProfileSummary {
	log := logger.WithFields(logrus.Fields{"provider": "github", "user": username})
	if username == "" {
		log.Debug("No GitHub username given, skipping")
		return summary
	}

	summary.UserWatchers += s.followers(ctx, username, log)
	summary.Stars.Given += s.starsGiven(ctx, username, log)

	repos := s.listRepositories(ctx, username, log)
	extras := s.fetchRepositoryExtras(ctx, username, repos)

	for i, repo := range repos {
		if repo == nil {
			continue
		}
		summary.CountRepository(repo.GetFork())
		summary.RepoWatchers += max(repo.GetWatchersCount(), 0)
		summary.Stars.Received += max(repo.GetStargazersCount(), 0)
		summary.OpenIssues += max(repo.GetOpenIssuesCount(), 0)
		summary.Commits += extras[i].commits
		summary.AccountSize += max(repo.GetSize(), 0)
		if repo.Language != nil {
			summary.AddLanguage(repo.GetLanguage())
		}
		summary.AddTopics(extras[i].topics...)
	}

	log.WithField("repositories", len(repos)).Debug("GitHub merge complete")
	return summary
}

func (s *GitHubMergeService) followers(ctx context.Context, username string, log *logrus.Entry) int {
	user, _, err := s.client.Users.Get(ctx, username)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch GitHub user")
		return 0
	}
	return max(user.GetFollowers(), 0)
}

// starsGiven asks for one starred repository per page so the last page
// number in the Link header equals the total number of starred repositories.
func (s *GitHubMergeService) starsGiven(ctx context.Context, username string, log *logrus.Entry) int {
	opts := &github.ActivityListStarredOptions{ListOptions: github.ListOptions{PerPage: 1}}
	_, resp, err := s.client.Activity.ListStarred(ctx, username, opts)
	if err != nil || resp == nil {
		log.WithError(err).Warn("Failed to fetch starred repositories")
		return 0
	}
	return lastPageFromLink(resp.Header.Get("Link"))
}

// lastPageFromLink returns the page number of the rel="last" link, or 0 when
// the header is missing or malformed.
func lastPageFromLink(header string) int {
	match := lastPagePattern.FindStringSubmatch(header)
	if match == nil {
		return 0
	}
	page, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return page
}

// listRepositories walks the repository list page by page until a page comes
// back empty. A failed page ends the walk with what was collected so far.
// Entries are decoded one by one so a malformed entry only drops itself.
func (s *GitHubMergeService) listRepositories(ctx context.Context, username string, log *logrus.Entry) []*github.Repository {
	var allRepos []*github.Repository
	for page := 1; ; page++ {
		entries, err := s.listRepositoryPage(ctx, username, page)
		if err != nil {
			log.WithError(err).WithField("page", page).Warn("Failed to list GitHub repositories")
			break
		}
		if len(entries) == 0 {
			break
		}

		for i, entry := range entries {
			var repo *github.Repository
			if err := json.Unmarshal(entry, &repo); err != nil {
				log.WithError(err).WithFields(logrus.Fields{"page": page, "index": i}).
					Warn("Skipping malformed GitHub repository")
				continue
			}
			allRepos = append(allRepos, repo)
		}
	}

	return allRepos
}

// listRepositoryPage fetches one page of the repository list as raw entries
func (s *GitHubMergeService) listRepositoryPage(ctx context.Context, username string, page int) ([]json.RawMessage, error) {
	u := fmt.Sprintf("users/%s/repos?per_page=%d&page=%d", url.PathEscape(username), githubReposPerPage, page)
	req, err := s.client.NewRequest("GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository request: %w", err)
	}

	var entries []json.RawMessage
	if _, err := s.client.Do(ctx, req, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// fetchRepositoryExtras loads contributors and topics for every repository
// with bounded concurrency. Results are indexed like repos.
func (s *GitHubMergeService) fetchRepositoryExtras(ctx context.Context, username string, repos []*github.Repository) []githubRepoExtras {
	extras := make([]githubRepoExtras, len(repos))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, repo := range repos {
		if repo == nil {
			continue
		}
		owner := repo.GetOwner().GetLogin()
		if owner == "" {
			owner = username
		}
		name := repo.GetName()
		i := i
		g.Go(func() error {
			extras[i] = githubRepoExtras{
				commits: s.userContributions(ctx, owner, name, username),
				topics:  s.topics(ctx, owner, name),
			}
			return nil
		})
	}
	_ = g.Wait()

	return extras
}

// userContributions returns the contribution count of username on a repository
func (s *GitHubMergeService) userContributions(ctx context.Context, owner, repo, username string) int {
	opts := &github.ListContributorsOptions{ListOptions: github.ListOptions{PerPage: githubReposPerPage}}
	contributors, _, err := s.client.Repositories.ListContributors(ctx, owner, repo, opts)
	if err != nil {
		logger.WithFields(logrus.Fields{"provider": "github", "repo": owner + "/" + repo}).
			WithError(err).Debug("Failed to fetch contributors")
		return 0
	}

	for _, contributor := range contributors {
		if contributor != nil && strings.EqualFold(contributor.GetLogin(), username) {
			return max(contributor.GetContributions(), 0)
		}
	}
	return 0
}

func (s *GitHubMergeService) topics(ctx context.Context, owner, repo string) []string {
	topics, _, err := s.client.Repositories.ListAllTopics(ctx, owner, repo)
	if err != nil {
		logger.WithFields(logrus.Fields{"provider": "github", "repo": owner + "/" + repo}).
			WithError(err).Debug("Failed to fetch topics")
		return nil
	}
	return topics
}
