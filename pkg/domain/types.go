package domain

// SessionID 壳会话ID（每次进程启动生成一次）
type SessionID string

// TargetID 浏览器页面目标ID
type TargetID string

// TargetInfo 目标信息
type TargetInfo struct {
	ID    TargetID `json:"id"`
	Type  string   `json:"type"`
	URL   string   `json:"url"`
	Title string   `json:"title"`
}

// BrowserInfo DevTools /json/version 返回的浏览器信息
type BrowserInfo struct {
	Product         string `json:"product"`
	ProtocolVersion string `json:"protocolVersion"`
	UserAgent       string `json:"userAgent"`
}
