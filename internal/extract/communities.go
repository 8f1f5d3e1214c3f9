package extract

import (
	"context"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// communityIDPattern extracts the community ID from a listing link of the
// form /titles/<id>/new.
var communityIDPattern = regexp.MustCompile(`(\d+)/new`)

// FetchCommunities returns all communities listed on the platform's title
// index. Entries whose link or name cannot be parsed are skipped with a log
// line rather than failing the whole listing.
func (c *Client) FetchCommunities(ctx context.Context) ([]model.Community, error) {
	doc, err := c.getDocument(ctx, "/titles/all", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch community index: %w", err)
	}

	var communities []model.Community
	doc.Find(".community-list-wrapper").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			c.logger.Warn("community entry without link, skipping")
			return
		}
		m := communityIDPattern.FindStringSubmatch(href)
		if m == nil {
			c.logger.Warn("community link without ID, skipping", "href", href)
			return
		}

		communities = append(communities, model.Community{
			ID:   m[1],
			Name: sel.Find("h2").First().Text(),
		})
	})

	return communities, nil
}
