package market

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"finbot/internal/application/port"
	"finbot/internal/infrastructure/httpx"
)

const (
	Jin10FlashURL     = "https://www.jin10.com/"
	EastmoneyNewsURL  = "https://finance.eastmoney.com/"
	minRelevantTitles = 5
)

var errTooFewHeadlines = errors.New("news: too few relevant headlines")

var (
	flashKeywords = []string{
		"金价", "黄金", "美元", "原油", "WTI", "布伦特", "比特币", "BTC",
		"以太坊", "ETH", "上证", "纳斯达克", "道琼斯", "恒生", "股市",
		"加密货币", "外汇", "人民币", "CNY", "美联储", "Fed", "央行",
		"通胀", "CPI", "GDP", "利率", "美债", "大盘", "指数",
		"涨", "跌", "市场", "金银",
	}
	headlineKeywords = []string{
		"黄金", "美元", "原油", "比特币", "以太坊", "上证", "纳指",
		"道指", "恒生", "股市", "外汇", "人民币", "美联储", "央行",
		"通胀", "CPI", "GDP", "利率", "债券", "加密", "币", "金价",
	}
)

// Jin10Flash 金十快讯首页
type Jin10Flash struct {
	url    string
	client *httpx.Client
}

var _ port.NewsSource = (*Jin10Flash)(nil)

func NewJin10Flash(url string, client *httpx.Client) *Jin10Flash {
	if url == "" {
		url = Jin10FlashURL
	}
	return &Jin10Flash{url: url, client: client}
}

func (n *Jin10Flash) Name() string { return "jin10-flash" }

func (n *Jin10Flash) Headlines(ctx context.Context) ([]string, error) {
	body, err := n.client.Get(ctx, n.url, nil, nil)
	if err != nil {
		return nil, err
	}
	return parseJin10Flash(body)
}

func parseJin10Flash(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse jin10 html: %w", err)
	}
	var all []string
	doc.Find(".flash-text").Each(func(_ int, s *goquery.Selection) {
		t := squash(s.Text())
		if t == "" || strings.Contains(t, "VIP") || strings.Contains(t, "解锁") {
			return
		}
		all = append(all, t)
	})
	relevant := filterKeywords(dedupe(all), flashKeywords)
	if len(relevant) < minRelevantTitles {
		return nil, fmt.Errorf("%w: %d", errTooFewHeadlines, len(relevant))
	}
	return head(relevant, 15), nil
}

// EastmoneyNews 东方财富要闻列表
type EastmoneyNews struct {
	url    string
	client *httpx.Client
}

var _ port.NewsSource = (*EastmoneyNews)(nil)

func NewEastmoneyNews(url string, client *httpx.Client) *EastmoneyNews {
	if url == "" {
		url = EastmoneyNewsURL
	}
	return &EastmoneyNews{url: url, client: client}
}

func (n *EastmoneyNews) Name() string { return "eastmoney-news" }

func (n *EastmoneyNews) Headlines(ctx context.Context) ([]string, error) {
	body, err := n.client.Get(ctx, n.url, nil, nil)
	if err != nil {
		return nil, err
	}
	return parseEastmoneyNews(body)
}

func parseEastmoneyNews(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse eastmoney html: %w", err)
	}
	var all []string
	doc.Find("a[title]").Each(func(_ int, s *goquery.Selection) {
		title, _ := s.Attr("title")
		title = squash(title)
		if len([]rune(title)) < 8 {
			return
		}
		all = append(all, title)
	})
	all = dedupe(all)
	if len(all) == 0 {
		return nil, errors.New("eastmoney: no headlines")
	}
	if relevant := filterKeywords(all, headlineKeywords); len(relevant) >= minRelevantTitles {
		return head(relevant, 12), nil
	}
	return head(all, 10), nil
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func filterKeywords(in, keywords []string) []string {
	var out []string
	for _, s := range in {
		for _, k := range keywords {
			if strings.Contains(s, k) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func head(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
