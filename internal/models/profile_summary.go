package models

import "strings"

// RepoCount splits repositories into originals and forks
type RepoCount struct {
	Original int `json:"original"`
	Forked   int `json:"forked"`
}

// Stars holds stars received on the user's repositories and stars the user gave
type Stars struct {
	Received int `json:"received"`
	Given    int `json:"given"`
}

// TagSet is a deduplicated list of names. Count always equals len(List).
type TagSet struct {
	List  []string `json:"list"`
	Count int      `json:"count"`
}

// ProfileSummary is the aggregate of a GitHub and a Bitbucket account.
// One instance is built per request and mutated in place by the mergers.
type ProfileSummary struct {
	RepoCount    RepoCount `json:"repo_count"`
	RepoWatchers int       `json:"repo_watchers"`
	UserWatchers int       `json:"user_watchers"`
	Stars        Stars     `json:"stars"`
	OpenIssues   int       `json:"open_issues"`
	Commits      int       `json:"commits"`
	AccountSize  int       `json:"account_size"`
	Languages    TagSet    `json:"languages"`
	RepoTopics   TagSet    `json:"repo_topics"`
}

// NewProfileSummary creates an empty summary with every counter at zero
func NewProfileSummary() *ProfileSummary {
	return &ProfileSummary{
		Languages:  TagSet{List: []string{}},
		RepoTopics: TagSet{List: []string{}},
	}
}

// CountRepository increments the forked or original repository counter
func (p *ProfileSummary) CountRepository(fork bool) {
	if fork {
		p.RepoCount.Forked++
		return
	}
	p.RepoCount.Original++
}

// AddLanguage records a language in lowercase unless it is already present.
// It reports whether the language was new.
func (p *ProfileSummary) AddLanguage(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || p.Languages.contains(name) {
		return false
	}
	p.Languages.add(name)
	return true
}

// AddTopics merges topic tags into the topic set
func (p *ProfileSummary) AddTopics(names ...string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || p.RepoTopics.contains(name) {
			continue
		}
		p.RepoTopics.add(name)
	}
}

func (s *TagSet) contains(name string) bool {
	for _, existing := range s.List {
		if existing == name {
			return true
		}
	}
	return false
}

func (s *TagSet) add(name string) {
	s.List = append(s.List, name)
	s.Count = len(s.List)
}
