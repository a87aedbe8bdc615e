package ui

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeSuccess
	noticeError
)

const noticeDuration = 3 * time.Second

type clearNoticeMsg struct{ id int }

func noticeText(msg string, kind noticeKind) string {
	if msg == "" {
		return ""
	}
	switch kind {
	case noticeSuccess:
		return "✓ " + msg
	case noticeError:
		return "× " + msg
	default:
		return msg
	}
}

// startNotice shows msg and schedules its removal. Error notices stay until
// another notice replaces them.
func (m *Model) startNotice(msg string, kind noticeKind) tea.Cmd {
	m.notice = msg
	m.noticeKind = kind
	m.noticeSeq++
	if kind == noticeError {
		return nil
	}
	id := m.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg { return clearNoticeMsg{id: id} })
}
