package display

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tvshell/internal/logger"
	"tvshell/pkg/domain"

	"github.com/mafredri/cdp"
	"github.com/mafredri/cdp/devtool"
	"github.com/mafredri/cdp/protocol/page"
	"github.com/mafredri/cdp/protocol/runtime"
	"github.com/mafredri/cdp/rpcc"
)

// pageDomain Page 使用到的 Page 域命令，由 cdp.Page 实现
type pageDomain interface {
	Navigate(ctx context.Context, args *page.NavigateArgs) (*page.NavigateReply, error)
	BringToFront(ctx context.Context) error
	GetNavigationHistory(ctx context.Context) (*page.GetNavigationHistoryReply, error)
	NavigateToHistoryEntry(ctx context.Context, args *page.NavigateToHistoryEntryArgs) error
}

// Page 通过 CDP 驱动的全屏页面，即显示组件
type Page struct {
	Target domain.TargetInfo

	conn   *rpcc.Conn
	client *cdp.Client
	pages  pageDomain
	log    logger.Logger

	back      chan BackRequest
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Attach 附着到浏览器的第一个页面目标，不存在时新建一个
func Attach(ctx context.Context, devtoolsURL string, l logger.Logger) (*Page, error) {
	if l == nil {
		l = logger.NewNop()
	}

	dt := devtool.New(devtoolsURL)
	pt, err := dt.Get(ctx, devtool.Page)
	if err != nil || pt == nil {
		l.Debug("未找到页面目标，新建标签页", "devToolsURL", devtoolsURL)
		if pt, err = dt.Create(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDevToolsUnreachable, err)
		}
	}

	conn, err := rpcc.DialContext(ctx, pt.WebSocketDebuggerURL)
	if err != nil {
		l.Err(err, "CDP 连接建立失败", "targetID", pt.ID, "wsURL", pt.WebSocketDebuggerURL)
		return nil, fmt.Errorf("%w: %v", domain.ErrNoTargetAttached, err)
	}

	// 事件流的生命周期跟随 Page 而不是调用方的 ctx
	streamCtx, cancel := context.WithCancel(context.Background())
	p := &Page{
		Target: domain.TargetInfo{
			ID:    domain.TargetID(pt.ID),
			Type:  string(pt.Type),
			URL:   pt.URL,
			Title: pt.Title,
		},
		conn:   conn,
		log:    l,
		back:   make(chan BackRequest, 1),
		cancel: cancel,
	}
	p.client = cdp.NewClient(conn)
	p.pages = p.client.Page

	if err := p.install(ctx, streamCtx); err != nil {
		_ = p.Close()
		return nil, err
	}

	l.Info("页面目标附着成功", "targetID", pt.ID, "url", pt.URL)
	return p, nil
}

// install 启用所需的 CDP 域并注入返回键监听
func (p *Page) install(ctx, streamCtx context.Context) error {
	if err := p.client.Page.Enable(ctx); err != nil {
		return fmt.Errorf("enable page domain: %w", err)
	}
	if err := p.client.Runtime.Enable(ctx); err != nil {
		return fmt.Errorf("enable runtime domain: %w", err)
	}

	called, err := p.client.Runtime.BindingCalled(streamCtx)
	if err != nil {
		return fmt.Errorf("subscribe binding: %w", err)
	}

	if err := p.client.Runtime.AddBinding(ctx, runtime.NewAddBindingArgs(bindingName)); err != nil {
		_ = called.Close()
		return fmt.Errorf("add binding: %w", err)
	}
	if _, err := p.client.Page.AddScriptToEvaluateOnNewDocument(ctx,
		page.NewAddScriptToEvaluateOnNewDocumentArgs(backKeyScript)); err != nil {
		_ = called.Close()
		return fmt.Errorf("install back key script: %w", err)
	}
	// 当前文档已经加载，需要单独执行一次
	if _, err := p.client.Runtime.Evaluate(ctx, runtime.NewEvaluateArgs(backKeyScript)); err != nil {
		p.log.Warn("当前文档注入返回键脚本失败", "error", err.Error())
	}

	go p.receive(called)
	return nil
}

// receive 把绑定回调转换为返回请求；连接断开时关闭通道
func (p *Page) receive(called runtime.BindingCalledClient) {
	defer close(p.back)
	defer called.Close()

	for {
		ev, err := called.Recv()
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				p.log.Debug("返回键事件流结束", "error", err.Error())
			}
			return
		}
		if ev.Name != bindingName {
			continue
		}

		req := parseBackPayload(ev.Payload, time.Now())
		select {
		case p.back <- req:
		default:
			// 上一次返回请求尚未处理（例如对话框正在显示）
			p.log.Debug("丢弃重复的返回请求", "key", req.Key)
		}
	}
}

// BackRequests 返回键事件；页面连接断开后通道关闭
func (p *Page) BackRequests() <-chan BackRequest {
	return p.back
}

// Navigate 在页面中打开 url
func (p *Page) Navigate(ctx context.Context, url string) error {
	reply, err := p.pages.Navigate(ctx, page.NewNavigateArgs(url))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNavigationFailed, err)
	}
	if reply.ErrorText != nil && *reply.ErrorText != "" {
		return fmt.Errorf("%w: %s", domain.ErrNavigationFailed, *reply.ErrorText)
	}
	if err := p.pages.BringToFront(ctx); err != nil {
		p.log.Debug("页面置前失败", "error", err.Error())
	}
	return nil
}

// CanGoBack 报告页面是否还有可返回的历史
func (p *Page) CanGoBack(ctx context.Context) (bool, error) {
	h, err := p.pages.GetNavigationHistory(ctx)
	if err != nil {
		return false, err
	}
	return canGoBack(h), nil
}

// GoBack 返回上一条历史，没有历史时不做任何事
func (p *Page) GoBack(ctx context.Context) error {
	h, err := p.pages.GetNavigationHistory(ctx)
	if err != nil {
		return err
	}
	if !canGoBack(h) {
		return nil
	}
	prev, _ := previousEntry(h)
	return p.pages.NavigateToHistoryEntry(ctx, page.NewNavigateToHistoryEntryArgs(prev.ID))
}

// CurrentURL 返回当前显示的 URL，ok 为 false 表示尚未显示任何内容
func (p *Page) CurrentURL(ctx context.Context) (url string, ok bool, err error) {
	h, err := p.pages.GetNavigationHistory(ctx)
	if err != nil {
		return "", false, err
	}
	entry, found := currentEntry(h)
	if !found || isBlank(entry.URL) {
		return "", false, nil
	}
	return entry.URL, true, nil
}

// Close 断开与页面的连接，不关闭浏览器
func (p *Page) Close() error {
	var err error
	p.closeOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
		if p.conn != nil {
			err = p.conn.Close()
		}
	})
	return err
}
