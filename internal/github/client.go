// internal/github/client.go
package github

import (
	"context"
	"log/slog"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"audit-dashboard/internal/model"
)

// Client is a wrapper around the go-github client, used by the repo
// discovery endpoint to list repositories visible to the configured token.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance authenticated with
// the given token.
func NewClient(token string, logger *slog.Logger) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{
		gh:     github.NewClient(tc),
		logger: logger,
	}
}

// OverrideBaseURL points the client at a different API host. Used by tests.
func (c *Client) OverrideBaseURL(url string) error {
	ghc, err := c.gh.WithEnterpriseURLs(url, url)
	if err != nil {
		return err
	}
	c.gh = ghc
	return nil
}

// ListRepositories fetches every repository the authenticated token can see,
// translated to the internal model. API pagination is handled transparently.
func (c *Client) ListRepositories(ctx context.Context) ([]model.SourceRepo, error) {
	var all []model.SourceRepo

	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        "pushed",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		c.logger.Debug("Fetching repository page", "page", opts.Page)

		repos, resp, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, err
		}

		for _, r := range repos {
			all = append(all, toSourceRepo(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func toSourceRepo(r *github.Repository) model.SourceRepo {
	return model.SourceRepo{
		FullName:      r.GetFullName(),
		URL:           r.GetHTMLURL(),
		Description:   r.Description,
		DefaultBranch: r.GetDefaultBranch(),
		Private:       r.GetPrivate(),
		PushedAt:      r.GetPushedAt().Time,
	}
}
