package services

import (
	"context"
	"net/url"

	"github.com/alimgiray/gmash/internal/models"
	"github.com/alimgiray/gmash/pkg/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BitbucketMergeService folds a Bitbucket account into a profile summary using
// the legacy 1.0 REST API. Requests are unauthenticated.
type BitbucketMergeService struct {
	fetcher     *FetchService
	baseURL     string
	concurrency int
}

// bitbucketRepoExtras holds the per-repository data that needs extra requests
type bitbucketRepoExtras struct {
	followers    int
	openIssues   int
	userWatchers int
	commits      int
}

func NewBitbucketMergeService(fetcher *FetchService, baseURL string, concurrency int) *BitbucketMergeService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BitbucketMergeService{
		fetcher:     fetcher,
		baseURL:     baseURL,
		concurrency: concurrency,
	}
}

// Merge adds the Bitbucket account of username to summary and returns it.
// Bitbucket never contributes to stars or topics.
func (s *BitbucketMergeService) Merge(ctx context.Context, username string, summary *models.ProfileSummary) *models.ProfileSummary {
	log := logger.WithFields(logrus.Fields{"provider": "bitbucket", "user": username})
	if username == "" {
		log.Debug("No Bitbucket username given, skipping")
		return summary
	}

	user := url.PathEscape(username)
	repos := s.fetcher.Fetch(ctx, s.baseURL+"users/"+user).List("repositories")
	if len(repos) == 0 {
		log.Debug("No Bitbucket repositories found")
		return summary
	}

	for _, repo := range repos {
		if repo == nil {
			continue
		}
		summary.CountRepository(repo.Bool("is_fork"))
		summary.AccountSize += max(repo.Int("size"), 0)
		if lang := repo.String("language"); lang != "" {
			summary.AddLanguage(lang)
		}
	}

	extras := s.fetchRepositoryExtras(ctx, user, repos)
	for _, extra := range extras {
		summary.RepoWatchers += extra.followers
		summary.OpenIssues += extra.openIssues
		summary.UserWatchers += extra.userWatchers
		summary.Commits += extra.commits
	}

	log.WithField("repositories", len(repos)).Debug("Bitbucket merge complete")
	return summary
}

// fetchRepositoryExtras loads detail, issues, followers and changesets for
// every repository with bounded concurrency. Results are indexed like repos.
func (s *BitbucketMergeService) fetchRepositoryExtras(ctx context.Context, user string, repos []Payload) []bitbucketRepoExtras {
	extras := make([]bitbucketRepoExtras, len(repos))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, repo := range repos {
		if repo == nil {
			continue
		}
		repoURL := s.baseURL + "repositories/" + user + "/" + url.PathEscape(repo.String("slug"))
		i := i
		g.Go(func() error {
			extras[i] = s.repositoryExtras(ctx, user, repoURL)
			return nil
		})
	}
	_ = g.Wait()

	return extras
}

func (s *BitbucketMergeService) repositoryExtras(ctx context.Context, user, repoURL string) bitbucketRepoExtras {
	var extra bitbucketRepoExtras

	detail := s.fetcher.Fetch(ctx, repoURL)
	extra.followers = max(detail.Int("followers_count"), 0)
	if detail.Bool("has_issues") {
		issues := s.fetcher.Fetch(ctx, repoURL+"/issues?status=open&limit=0")
		extra.openIssues = max(issues.Int("count"), 0)
	}

	// The account follower count is fetched once per repository, so it is
	// counted once per repository as well.
	followers := s.fetcher.Fetch(ctx, s.baseURL+"users/"+user+"/followers")
	extra.userWatchers = max(followers.Int("count"), 0)

	changesets := s.fetcher.Fetch(ctx, repoURL+"/changesets?limit=0")
	extra.commits = max(changesets.Int("count"), 0)

	return extra
}
