package display

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// bindingName 页面内回调函数名，由 Runtime.addBinding 注入
const bindingName = "tvshellBack"

// backKeyScript 在每个文档中监听返回键并回调 bindingName。
// 461 是 webOS 遥控器的返回键；输入框内的 Backspace 不拦截。
var backKeyScript = fmt.Sprintf(`(() => {
  if (window.__tvshellBackInstalled) return;
  window.__tvshellBackInstalled = true;
  const editable = (el) => !!el && (el.isContentEditable || /^(INPUT|TEXTAREA|SELECT)$/.test(el.tagName));
  document.addEventListener('keydown', (e) => {
    const back = e.key === 'Escape' || e.key === 'BrowserBack' || e.key === 'GoBack' ||
      e.keyCode === 461 || (e.key === 'Backspace' && !editable(e.target));
    if (!back || typeof window.%[1]s !== 'function') return;
    e.preventDefault();
    e.stopPropagation();
    window.%[1]s(JSON.stringify({ key: e.key, code: e.keyCode, url: location.href }));
  }, true);
})();`, bindingName)

// BackRequest 页面报告的一次返回键
type BackRequest struct {
	Key  string
	Code int
	URL  string
	At   time.Time
}

// parseBackPayload 解析绑定回调的 JSON 负载，字段缺失时保留零值
func parseBackPayload(payload string, at time.Time) BackRequest {
	req := BackRequest{At: at}
	if !gjson.Valid(payload) {
		return req
	}
	r := gjson.GetMany(payload, "key", "code", "url")
	req.Key = r[0].String()
	req.Code = int(r[1].Int())
	req.URL = r[2].String()
	return req
}
