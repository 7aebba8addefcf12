package market

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"finbot/internal/application/port"
	"finbot/internal/domain"
	"finbot/internal/infrastructure/httpx"
)

const (
	Jin10CalendarURL     = "https://rili.jin10.com/data/daily_events"
	InvestingCalendarURL = "https://cn.investing.com/economic-calendar/"

	minStars = 2
)

var errNoEvents = errors.New("calendar: no events")

// Jin10Calendar 金十日历 JSON，只保留两星及以上
type Jin10Calendar struct {
	url    string
	client *httpx.Client
}

var _ port.CalendarSource = (*Jin10Calendar)(nil)

func NewJin10Calendar(url string, client *httpx.Client) *Jin10Calendar {
	if url == "" {
		url = Jin10CalendarURL
	}
	return &Jin10Calendar{url: url, client: client}
}

func (c *Jin10Calendar) Name() string { return "jin10-calendar" }

func (c *Jin10Calendar) Events(ctx context.Context, day time.Time) ([]domain.CalendarEvent, error) {
	body, err := c.client.Get(ctx, c.url, map[string]string{
		"date": day.Format("2006-01-02"),
	}, map[string]string{"Referer": "https://rili.jin10.com/"})
	if err != nil {
		return nil, err
	}
	return parseJin10Calendar(body)
}

func parseJin10Calendar(body []byte) ([]domain.CalendarEvent, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("jin10 calendar: invalid json")
	}
	list := gjson.ParseBytes(body)
	if d := list.Get("data"); d.IsArray() {
		list = d
	}

	var out []domain.CalendarEvent
	list.ForEach(func(_, v gjson.Result) bool {
		stars := int(v.Get("star").Int())
		if stars < minStars {
			return true
		}
		out = append(out, domain.CalendarEvent{
			Time:      clockOf(v.Get("pub_time").String()),
			Country:   v.Get("country").String(),
			Name:      v.Get("name").String(),
			Unit:      v.Get("unit").String(),
			Previous:  v.Get("previous").String(),
			Consensus: v.Get("consensus").String(),
			Stars:     stars,
		})
		return true
	})
	if len(out) == 0 {
		return nil, errNoEvents
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

// clockOf "2026-10-19 20:30:00" -> "20:30"
func clockOf(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		s = s[i+1:]
	}
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

// InvestingCalendar investing.com 日历页面
type InvestingCalendar struct {
	url    string
	client *httpx.Client
}

var _ port.CalendarSource = (*InvestingCalendar)(nil)

func NewInvestingCalendar(url string, client *httpx.Client) *InvestingCalendar {
	if url == "" {
		url = InvestingCalendarURL
	}
	return &InvestingCalendar{url: url, client: client}
}

func (c *InvestingCalendar) Name() string { return "investing-calendar" }

func (c *InvestingCalendar) Events(ctx context.Context, _ time.Time) ([]domain.CalendarEvent, error) {
	body, err := c.client.Get(ctx, c.url, nil, nil)
	if err != nil {
		return nil, err
	}
	return parseInvestingCalendar(body)
}

func parseInvestingCalendar(body []byte) ([]domain.CalendarEvent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse investing html: %w", err)
	}
	var out []domain.CalendarEvent
	doc.Find(`tr[class*="event"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= 15 {
			return false
		}
		name := strings.TrimSpace(s.Find("td.event").Text())
		if name == "" {
			return true
		}
		stars := s.Find("td.sentiment i.grayFullBullishIcon").Length()
		if stars < minStars {
			return true
		}
		out = append(out, domain.CalendarEvent{
			Time:  strings.TrimSpace(s.Find("td.time").Text()),
			Name:  name,
			Stars: stars,
		})
		return true
	})
	if len(out) == 0 {
		return nil, errNoEvents
	}
	return out, nil
}
