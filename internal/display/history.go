package display

import (
	"strings"

	"github.com/mafredri/cdp/protocol/page"
)

// previousEntry 返回当前条目之前的历史记录
func previousEntry(h *page.GetNavigationHistoryReply) (page.NavigationEntry, bool) {
	if h == nil || h.CurrentIndex <= 0 || h.CurrentIndex > len(h.Entries) {
		return page.NavigationEntry{}, false
	}
	return h.Entries[h.CurrentIndex-1], true
}

// currentEntry 返回当前显示的历史条目
func currentEntry(h *page.GetNavigationHistoryReply) (page.NavigationEntry, bool) {
	if h == nil || h.CurrentIndex < 0 || h.CurrentIndex >= len(h.Entries) {
		return page.NavigationEntry{}, false
	}
	return h.Entries[h.CurrentIndex], true
}

// isBlank 报告 url 是否表示尚未显示任何内容
func isBlank(url string) bool {
	switch strings.TrimSpace(url) {
	case "", "about:blank", "chrome://newtab/", "chrome://new-tab-page/":
		return true
	}
	return false
}

// canGoBack 当前条目之前存在非空白页面时才允许后退；
// 启动时的 about:blank 不算可返回的历史。
func canGoBack(h *page.GetNavigationHistoryReply) bool {
	prev, ok := previousEntry(h)
	return ok && !isBlank(prev.URL)
}
