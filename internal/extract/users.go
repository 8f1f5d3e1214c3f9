package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// FetchUser returns one user's profile record.
//
// The profile header renders as "Display Name @pnid" with a verification
// mark appended for special accounts; the mark is stripped before splitting.
func (c *Client) FetchUser(ctx context.Context, pid int64) (*model.User, error) {
	doc, err := c.getDocument(ctx, "/users/"+strconv.FormatInt(pid, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %d: %w", pid, err)
	}

	title := strings.ReplaceAll(doc.Find(".community-title").First().Text(), "✓", "")
	name, pnid, found := strings.Cut(title, " @")
	if !found {
		return nil, fmt.Errorf("user %d: profile header %q has no handle", pid, title)
	}

	user := &model.User{
		PID:         pid,
		PNID:        strings.TrimSpace(pnid),
		DisplayName: strings.TrimSpace(name),
	}

	if miiURL, ok := doc.Find(".user-icon").First().Attr("src"); ok {
		user.MiiHash = c.imageHash(ctx, miiURL)
	}

	return user, nil
}
