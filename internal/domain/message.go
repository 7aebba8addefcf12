package domain

import "time"

// OutMessage 发往频道的一条消息
type OutMessage struct {
	ChatID         int64
	Text           string
	HTML           bool
	ReplyTo        int
	DisablePreview bool
}

// InboundMessage 频道里收到的一条消息
type InboundMessage struct {
	ChatID     int64
	MessageID  int
	From       string
	Text       string
	Command    string // "start" "help"，非命令为空
	ReplyToBot bool
}

// DispatchKind 发送类型
type DispatchKind string

const (
	DispatchDigest   DispatchKind = "digest"
	DispatchFeed     DispatchKind = "feed"
	DispatchAnswer   DispatchKind = "answer"
	DispatchCalendar DispatchKind = "calendar"
	DispatchBrief    DispatchKind = "brief"
)

// DispatchRecord 发送日志
type DispatchRecord struct {
	ID      string
	Kind    DispatchKind
	At      time.Time
	OK      bool
	Error   string
	Payload string
}

// CalendarEvent 财经日历条目
type CalendarEvent struct {
	Time      string
	Country   string
	Name      string
	Unit      string
	Previous  string
	Consensus string
	Stars     int
}
