package extract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// ghRelease is the slice of the GitHub releases payload the extractors
// care about.
type ghRelease struct {
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	Body        string `json:"body"`
	HTMLURL     string `json:"html_url"`
	PublishedAt string `json:"published_at"`
	Prerelease  bool   `json:"prerelease"`
}

func githubReleases(ctx context.Context, client *resty.Client, repo string, perPage int) ([]ghRelease, error) {
	var releases []ghRelease
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParam("per_page", strconv.Itoa(perPage)).
		SetResult(&releases).
		Get("https://api.github.com/repos/" + repo + "/releases")
	if err != nil {
		return nil, fmt.Errorf("releases %s: %w", repo, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("releases %s: status %d", repo, resp.StatusCode())
	}
	return releases, nil
}
