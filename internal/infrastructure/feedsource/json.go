package feedsource

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"finbot/internal/domain"
	"finbot/internal/infrastructure/httpx"
)

var errBadJSON = errors.New("feed: invalid json")

// RSSBridge rss-bridge 的 Twitter bridge，JSON Feed 格式
type RSSBridge struct {
	base   string
	user   string
	client *httpx.Client
}

func (r *RSSBridge) Name() string { return KindRSSBridge + ":" + hostOf(r.base) }

func (r *RSSBridge) Fetch(ctx context.Context) ([]domain.FeedItem, error) {
	body, err := r.client.Get(ctx, r.base+"/", map[string]string{
		"action":  "display",
		"bridge":  "TwitterBridge",
		"context": "By username",
		"u":       r.user,
		"format":  "Json",
	}, nil)
	if err != nil {
		return nil, err
	}
	return parseJSONFeed(body, r.user)
}

func parseJSONFeed(body []byte, user string) ([]domain.FeedItem, error) {
	if !gjson.ValidBytes(body) {
		return nil, errBadJSON
	}
	var out []domain.FeedItem
	gjson.GetBytes(body, "items").ForEach(func(_, v gjson.Result) bool {
		link := v.Get("url").String()
		id := StatusID(link)
		if id == "" {
			id = lastSegment(link)
		}
		text := strings.TrimSpace(v.Get("content_text").String())
		if text == "" {
			text = strings.TrimSpace(v.Get("title").String())
		}
		if id == "" || skipText(text) {
			return true
		}
		item := domain.FeedItem{ID: id, Text: text, Permalink: Permalink(user, id)}
		if ts, err := time.Parse(time.RFC3339, v.Get("date_published").String()); err == nil {
			item.PublishedAt = ts
		}
		out = append(out, item)
		return true
	})
	return out, nil
}

func lastSegment(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" {
		return ""
	}
	return path.Base(u.Path)
}

// Syndication twitter 的 syndication timeline
type Syndication struct {
	base   string
	user   string
	client *httpx.Client
}

func (s *Syndication) Name() string { return KindSyndication + ":" + hostOf(s.base) }

func (s *Syndication) Fetch(ctx context.Context) ([]domain.FeedItem, error) {
	body, err := s.client.Get(ctx, s.base+"/timeline/profile", map[string]string{
		"screen_name": s.user,
	}, nil)
	if err != nil {
		return nil, err
	}
	return parseSyndication(body, s.user)
}

func parseSyndication(body []byte, user string) ([]domain.FeedItem, error) {
	if !gjson.ValidBytes(body) {
		return nil, errBadJSON
	}
	var out []domain.FeedItem
	gjson.GetBytes(body, "timeline").ForEach(func(_, v gjson.Result) bool {
		id := v.Get("id_str").String()
		text := strings.TrimSpace(v.Get("text").String())
		if id == "" || skipText(text) {
			return true
		}
		item := domain.FeedItem{ID: id, Text: text, Permalink: Permalink(user, id)}
		if ts, err := time.Parse(time.RubyDate, v.Get("created_at").String()); err == nil {
			item.PublishedAt = ts
		}
		out = append(out, item)
		return true
	})
	return out, nil
}
