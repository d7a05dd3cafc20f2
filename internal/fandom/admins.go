package fandom

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/agentstation/wikisync/pkg/errors"
)

// adminGroups are the role groups requested from the user listing.
const adminGroups = "bureaucrat,sysop,threadmoderator"

// listUsersPageSize is the row count requested per user-listing page.
const listUsersPageSize = 100

// AdminCounts is the result of admin-activity hydration for one wiki.
type AdminCounts struct {
	Bureaucrats int
	Admins      int
	Moderators  int
}

// listUsersRow is one account extracted from the user-listing markup.
type listUsersRow struct {
	username string
	groups   []string
	edits    int
	lastEdit time.Time
}

// dateLayouts are the last-edit formats the legacy endpoint has been seen
// emitting.
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"15:04, January 2, 2006",
}

// ActiveAdmins scrapes the legacy user-listing endpoint of one wiki and
// counts accounts in administrative role groups whose last edit falls
// within the activity window. The endpoint answers JSON whose row cells are
// HTML fragments keyed by column position: avatar, user link, group list,
// edit count, last-edit date.
func (c *Client) ActiveAdmins(ctx context.Context, domain string, activeDays, minEdits int) (AdminCounts, error) {
	cutoff := c.now().AddDate(0, 0, -activeDays)

	var counts AdminCounts
	offset := 0
	for {
		var resp struct {
			Rows [][]string `json:"aaData"`
		}
		endpoint := c.scheme + "://" + strings.TrimRight(domain, "/") + "/index.php"
		err := c.transport.GetJSON(ctx, endpoint, url.Values{
			"action": {"ajax"},
			"rs":     {"ListusersAjax::axShowUsers"},
			"groups": {adminGroups},
			"edits":  {strconv.Itoa(minEdits)},
			"limit":  {strconv.Itoa(listUsersPageSize)},
			"offset": {strconv.Itoa(offset)},
		}, &resp)
		if err != nil {
			return AdminCounts{}, err
		}
		if len(resp.Rows) == 0 {
			break
		}

		for _, cells := range resp.Rows {
			row, err := parseListUsersRow(cells)
			if err != nil {
				c.logger.Debug().Err(err).Str("domain", domain).Msg("skipping unparseable user row")
				continue
			}
			if row.edits < minEdits || row.lastEdit.Before(cutoff) {
				continue
			}
			// Every bureaucrat is also an admin.
			if row.holds("bureaucrat") {
				counts.Bureaucrats++
			}
			if row.holds("bureaucrat") || row.holds("sysop") || row.holds("admin") {
				counts.Admins++
			}
			if row.holds("moderator") || row.holds("threadmoderator") {
				counts.Moderators++
			}
		}

		if len(resp.Rows) < listUsersPageSize {
			break
		}
		offset += listUsersPageSize
	}
	return counts, nil
}

// holds reports whether the account is in a role group.
func (r *listUsersRow) holds(group string) bool {
	for _, g := range r.groups {
		if g == group {
			return true
		}
	}
	return false
}

// parseListUsersRow decodes one column-keyed row of markup cells.
func parseListUsersRow(cells []string) (*listUsersRow, error) {
	if len(cells) < 5 {
		return nil, errors.WrapParse("html", "ListusersAjax", errors.New("row has fewer than 5 cells"))
	}

	row := &listUsersRow{
		username: anchorText(cells[1]),
	}
	if row.username == "" {
		return nil, errors.WrapParse("html", "ListusersAjax", errors.New("row has no user link"))
	}

	for _, group := range strings.Split(cellText(cells[2]), ",") {
		group = strings.ToLower(strings.TrimSpace(group))
		if group != "" {
			row.groups = append(row.groups, group)
		}
	}

	edits, err := strconv.Atoi(strings.TrimSpace(cellText(cells[3])))
	if err != nil {
		return nil, errors.WrapParse("html", "ListusersAjax", err)
	}
	row.edits = edits

	lastEdit, err := parseLastEdit(cellText(cells[4]))
	if err != nil {
		return nil, err
	}
	row.lastEdit = lastEdit
	return row, nil
}

// anchorText returns the text of the first link in a markup fragment.
func anchorText(fragment string) string {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	var text string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if text != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			text = strings.TrimSpace(nodeText(n))
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return text
}

// cellText strips markup from a cell fragment, leaving its text content.
func cellText(fragment string) string {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.TrimSpace(nodeText(root))
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(nodeText(child))
	}
	return sb.String()
}

// parseLastEdit tries the known last-edit date formats.
func parseLastEdit(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.WrapParse("html", "ListusersAjax", errors.New("unrecognized last-edit date "+strconv.Quote(text)))
}
