package feedsource

import (
	"fmt"
	"strings"

	"finbot/internal/application/port"
	"finbot/internal/infrastructure/httpx"
)

// mirror kinds
const (
	KindNitterHTML  = "nitter-html"
	KindNitterRSS   = "nitter-rss"
	KindRSSBridge   = "rss-bridge"
	KindSyndication = "syndication"
)

// New 按 kind 构建一个镜像
func New(kind, baseURL, user string, client *httpx.Client) (port.FeedSource, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%s: empty url", kind)
	}
	if user == "" {
		return nil, fmt.Errorf("%s: empty username", kind)
	}
	switch kind {
	case KindNitterHTML:
		return &NitterHTML{base: baseURL, user: user, client: client}, nil
	case KindNitterRSS:
		return &NitterRSS{base: baseURL, user: user, client: client}, nil
	case KindRSSBridge:
		return &RSSBridge{base: baseURL, user: user, client: client}, nil
	case KindSyndication:
		return &Syndication{base: baseURL, user: user, client: client}, nil
	}
	return nil, fmt.Errorf("unknown feed mirror kind %q", kind)
}

// StatusID 从 ".../status/123#m" 取出 123
func StatusID(link string) string {
	_, rest, ok := strings.Cut(link, "/status/")
	if !ok {
		return ""
	}
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	return rest[:end]
}

// Permalink 统一指向 twitter.com
func Permalink(user, id string) string {
	return fmt.Sprintf("https://twitter.com/%s/status/%s", user, id)
}

// skipText 转推和回复不转发
func skipText(text string) bool {
	t := strings.TrimSpace(text)
	return t == "" ||
		strings.HasPrefix(t, "RT @") ||
		strings.HasPrefix(t, "RT by ") ||
		strings.HasPrefix(t, "R to @") ||
		strings.HasPrefix(t, "@")
}

func hostOf(u string) string {
	u = strings.TrimPrefix(strings.TrimPrefix(u, "https://"), "http://")
	if i := strings.IndexByte(u, '/'); i >= 0 {
		u = u[:i]
	}
	return u
}
