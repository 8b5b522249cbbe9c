// Package jobs extracts job listings from board pages and accumulates them
// into deduplicated, on-disk extraction sessions.
package jobs

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Card is one extracted job listing.
type Card struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Pagination reports whether the page links to a further results page.
type Pagination struct {
	HasNext bool   `json:"has_next"`
	NextURL string `json:"next_url,omitempty"`
}

// cardClassHints marks container elements that boards commonly use for one
// listing. Matching is substring, case-insensitive, against class and
// data-testid attributes.
var cardClassHints = []string{
	"job-card", "jobcard", "job_card", "job-result", "result-card",
	"job-listing", "job_seen_beacon", "jobs-search-result",
}

// ParseCards walks the document and extracts one Card per recognizable job
// listing container. Boards differ wildly; this is the generic parser, and
// pages it cannot read fall back to the agent's element outline.
func ParseCards(src string) ([]Card, Pagination, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("parsing page HTML: %w", err)
	}

	var cards []Card
	var pagination Pagination

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if isNextLink(n) && !pagination.HasNext {
				pagination.HasNext = true
				pagination.NextURL = attr(n, "href")
			}
			if isCardNode(n) {
				if card, ok := extractCard(n); ok {
					cards = append(cards, card)
				}
				// Card containers do not nest; skip the subtree.
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return cards, pagination, nil
}

func isCardNode(n *html.Node) bool {
	if attr(n, "data-job-id") != "" || attr(n, "data-jk") != "" {
		return true
	}
	marker := strings.ToLower(attr(n, "class") + " " + attr(n, "data-testid"))
	for _, hint := range cardClassHints {
		if strings.Contains(marker, hint) {
			return true
		}
	}
	return false
}

func isNextLink(n *html.Node) bool {
	if n.Data != "a" && n.Data != "button" {
		return false
	}
	if strings.EqualFold(attr(n, "rel"), "next") {
		return true
	}
	label := strings.ToLower(attr(n, "aria-label"))
	if strings.Contains(label, "next") {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(text(n)), "next")
}

func extractCard(n *html.Node) (Card, bool) {
	card := Card{
		ID:       firstNonEmpty(attr(n, "data-job-id"), attr(n, "data-jk"), attr(n, "id")),
		Title:    findText(n, isTitleNode),
		Company:  findText(n, classContains("company")),
		Location: findText(n, classContains("location")),
		URL:      findAttr(n, "a", "href"),
	}
	if card.Title == "" {
		// Fall back to the first link's text.
		card.Title = findText(n, func(c *html.Node) bool { return c.Data == "a" })
	}
	if card.Title == "" {
		return Card{}, false
	}
	if card.ID == "" {
		card.ID = firstNonEmpty(card.URL, card.Title)
	}
	return card, true
}

func isTitleNode(n *html.Node) bool {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5":
		return true
	}
	return strings.Contains(strings.ToLower(attr(n, "class")), "title")
}

func classContains(hint string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return strings.Contains(strings.ToLower(attr(n, "class")), hint)
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// findText returns the collapsed text of the first descendant matching pred.
func findText(n *html.Node, pred func(*html.Node) bool) string {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if found != nil {
			return
		}
		if c != n && c.Type == html.ElementNode && pred(c) {
			found = c
			return
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)
	if found == nil {
		return ""
	}
	return strings.Join(strings.Fields(text(found)), " ")
}

// findAttr returns the named attribute of the first descendant with tag.
func findAttr(n *html.Node, tag, name string) string {
	var val string
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if val != "" {
			return
		}
		if c.Type == html.ElementNode && c.Data == tag {
			if v := attr(c, name); v != "" {
				val = v
				return
			}
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)
	return val
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)
	return sb.String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
