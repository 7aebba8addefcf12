package feedsource

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"finbot/internal/domain"
	"finbot/internal/infrastructure/httpx"
)

// NitterRSS nitter 的 /{user}/rss
type NitterRSS struct {
	base   string
	user   string
	client *httpx.Client
}

func (n *NitterRSS) Name() string { return KindNitterRSS + ":" + hostOf(n.base) }

func (n *NitterRSS) Fetch(ctx context.Context) ([]domain.FeedItem, error) {
	body, err := n.client.Get(ctx, n.base+"/"+n.user+"/rss", nil, nil)
	if err != nil {
		return nil, err
	}
	return parseRSS(body, n.user)
}

func parseRSS(body []byte, user string) ([]domain.FeedItem, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse rss: %w", err)
	}

	out := make([]domain.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		id := StatusID(it.Link)
		if id == "" {
			id = StatusID(it.GUID)
		}
		if id == "" {
			continue
		}
		text := strings.TrimSpace(it.Title)
		if text == "" {
			text = htmlText(it.Description)
		}
		if skipText(text) {
			continue
		}
		item := domain.FeedItem{ID: id, Text: text, Permalink: Permalink(user, id)}
		if it.PublishedParsed != nil {
			item.PublishedAt = *it.PublishedParsed
		}
		out = append(out, item)
	}
	return out, nil
}

func htmlText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
