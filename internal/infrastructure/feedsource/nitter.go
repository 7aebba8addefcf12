package feedsource

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"finbot/internal/domain"
	"finbot/internal/infrastructure/httpx"
)

const nitterDateLayout = "Jan 2, 2006 · 3:04 PM MST"

// NitterHTML 解析 nitter 个人主页
type NitterHTML struct {
	base   string
	user   string
	client *httpx.Client
}

func (n *NitterHTML) Name() string { return KindNitterHTML + ":" + hostOf(n.base) }

func (n *NitterHTML) Fetch(ctx context.Context) ([]domain.FeedItem, error) {
	body, err := n.client.Get(ctx, n.base+"/"+n.user, nil, nil)
	if err != nil {
		return nil, err
	}
	return parseNitterHTML(body, n.user)
}

func parseNitterHTML(body []byte, user string) ([]domain.FeedItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse nitter html: %w", err)
	}

	var out []domain.FeedItem
	doc.Find(".timeline-item").Each(func(_ int, s *goquery.Selection) {
		if s.Find(".retweet-header").Length() > 0 {
			return
		}
		href, _ := s.Find("a.tweet-link").Attr("href")
		id := StatusID(href)
		if id == "" {
			return
		}
		text := strings.TrimSpace(s.Find(".tweet-content").First().Text())
		if skipText(text) {
			return
		}

		item := domain.FeedItem{ID: id, Text: text, Permalink: Permalink(user, id)}
		if title, ok := s.Find(".tweet-date a").Attr("title"); ok {
			if ts, err := time.Parse(nitterDateLayout, title); err == nil {
				item.PublishedAt = ts
			}
		}
		out = append(out, item)
	})
	return out, nil
}
