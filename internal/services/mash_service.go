package services

import (
	"context"
	"time"

	"github.com/alimgiray/gmash/internal/models"
	"github.com/alimgiray/gmash/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ProviderMerger folds one provider account into a profile summary
type ProviderMerger interface {
	Merge(ctx context.Context, username string, summary *models.ProfileSummary) *models.ProfileSummary
}

// MashService builds the combined profile of a GitHub and a Bitbucket account
type MashService struct {
	github    ProviderMerger
	bitbucket ProviderMerger
}

func NewMashService(github, bitbucket ProviderMerger) *MashService {
	return &MashService{
		github:    github,
		bitbucket: bitbucket,
	}
}

// Mash returns a fresh summary with GitHub merged first and Bitbucket second.
// Either username may be empty.
func (s *MashService) Mash(ctx context.Context, githubName, bitbucketName string) *models.ProfileSummary {
	start := time.Now()
	summary := models.NewProfileSummary()

	s.github.Merge(ctx, githubName, summary)
	s.bitbucket.Merge(ctx, bitbucketName, summary)

	logger.WithFields(logrus.Fields{
		"gh_name":  githubName,
		"bb_name":  bitbucketName,
		"duration": time.Since(start).String(),
	}).Info("Profile mashed")

	return summary
}
