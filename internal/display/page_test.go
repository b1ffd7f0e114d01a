package display

import (
	"context"
	"errors"
	"testing"
	"time"

	"tvshell/internal/logger"
	"tvshell/pkg/domain"

	"github.com/mafredri/cdp/protocol/page"
	"github.com/mafredri/cdp/protocol/runtime"
	"github.com/mafredri/cdp/rpcc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	navigateReply *page.NavigateReply
	navigateErr   error
	history       *page.GetNavigationHistoryReply
	historyErr    error

	navigated   []string
	entries     []int
	broughtFore int
}

func (f *fakePages) Navigate(_ context.Context, args *page.NavigateArgs) (*page.NavigateReply, error) {
	f.navigated = append(f.navigated, args.URL)
	if f.navigateErr != nil {
		return nil, f.navigateErr
	}
	if f.navigateReply == nil {
		return &page.NavigateReply{}, nil
	}
	return f.navigateReply, nil
}

func (f *fakePages) BringToFront(context.Context) error {
	f.broughtFore++
	return nil
}

func (f *fakePages) GetNavigationHistory(context.Context) (*page.GetNavigationHistoryReply, error) {
	return f.history, f.historyErr
}

func (f *fakePages) NavigateToHistoryEntry(_ context.Context, args *page.NavigateToHistoryEntryArgs) error {
	f.entries = append(f.entries, args.EntryID)
	return nil
}

// fakeBindingStream 依次交付预置事件，耗尽后返回流关闭错误
type fakeBindingStream struct {
	events chan *runtime.BindingCalledReply
	closed bool
}

func newFakeBindingStream(events ...*runtime.BindingCalledReply) *fakeBindingStream {
	s := &fakeBindingStream{events: make(chan *runtime.BindingCalledReply, len(events))}
	for _, ev := range events {
		s.events <- ev
	}
	close(s.events)
	return s
}

func (s *fakeBindingStream) Recv() (*runtime.BindingCalledReply, error) {
	ev, ok := <-s.events
	if !ok {
		return nil, rpcc.ErrStreamClosing
	}
	return ev, nil
}

func (s *fakeBindingStream) Ready() <-chan struct{} { return make(chan struct{}) }
func (s *fakeBindingStream) RecvMsg(any) error      { return rpcc.ErrStreamClosing }
func (s *fakeBindingStream) Close() error {
	s.closed = true
	return nil
}

func newTestPage(pages pageDomain) *Page {
	return &Page{
		pages: pages,
		log:   logger.NewNop(),
		back:  make(chan BackRequest, 1),
	}
}

func TestPageNavigate(t *testing.T) {
	ctx := context.Background()

	pages := &fakePages{}
	p := newTestPage(pages)
	require.NoError(t, p.Navigate(ctx, "https://a.tv"))
	assert.Equal(t, []string{"https://a.tv"}, pages.navigated)
	assert.Equal(t, 1, pages.broughtFore)

	errorText := "net::ERR_NAME_NOT_RESOLVED"
	pages = &fakePages{navigateReply: &page.NavigateReply{ErrorText: &errorText}}
	err := newTestPage(pages).Navigate(ctx, "https://nowhere.invalid")
	assert.ErrorIs(t, err, domain.ErrNavigationFailed)
	assert.Contains(t, err.Error(), errorText)
	assert.Zero(t, pages.broughtFore)

	empty := ""
	pages = &fakePages{navigateReply: &page.NavigateReply{ErrorText: &empty}}
	assert.NoError(t, newTestPage(pages).Navigate(ctx, "https://a.tv"))

	pages = &fakePages{navigateErr: errors.New("connection reset")}
	assert.ErrorIs(t, newTestPage(pages).Navigate(ctx, "https://a.tv"), domain.ErrNavigationFailed)
}

func TestPageGoBack(t *testing.T) {
	ctx := context.Background()

	pages := &fakePages{history: history(2, "about:blank", "https://a.tv", "https://b.tv")}
	p := newTestPage(pages)

	can, err := p.CanGoBack(ctx)
	require.NoError(t, err)
	assert.True(t, can)
	require.NoError(t, p.GoBack(ctx))
	assert.Equal(t, []int{11}, pages.entries)

	// 上一条是启动时的空白页，不后退
	pages = &fakePages{history: history(1, "about:blank", "https://a.tv")}
	p = newTestPage(pages)
	can, err = p.CanGoBack(ctx)
	require.NoError(t, err)
	assert.False(t, can)
	require.NoError(t, p.GoBack(ctx))
	assert.Empty(t, pages.entries)

	pages = &fakePages{historyErr: errors.New("closed")}
	assert.Error(t, newTestPage(pages).GoBack(ctx))
}

func TestPageCurrentURL(t *testing.T) {
	ctx := context.Background()

	url, ok, err := newTestPage(&fakePages{history: history(1, "about:blank", "https://a.tv")}).CurrentURL(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://a.tv", url)

	_, ok, err = newTestPage(&fakePages{history: history(0, "about:blank")}).CurrentURL(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = newTestPage(&fakePages{historyErr: errors.New("closed")}).CurrentURL(ctx)
	assert.Error(t, err)
}

func TestPageReceive(t *testing.T) {
	stream := newFakeBindingStream(
		&runtime.BindingCalledReply{Name: "other", Payload: `{"key":"x"}`},
		&runtime.BindingCalledReply{Name: bindingName, Payload: `{"key":"Escape","code":27}`},
		&runtime.BindingCalledReply{Name: bindingName, Payload: `{"key":"BrowserBack","code":166}`},
	)
	p := newTestPage(&fakePages{})

	done := make(chan struct{})
	go func() {
		p.receive(stream)
		close(done)
	}()

	// 没有消费者时 receive 不能阻塞：第二个返回请求被丢弃，流结束后通道关闭
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("receive blocked on a pending back request")
	}
	assert.True(t, stream.closed)

	req, ok := <-p.BackRequests()
	require.True(t, ok)
	assert.Equal(t, "Escape", req.Key)
	assert.Equal(t, 27, req.Code)

	_, ok = <-p.BackRequests()
	assert.False(t, ok, "back channel must close when the stream ends")
}

func TestPageCloseWithoutConnection(t *testing.T) {
	p := newTestPage(&fakePages{})
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}
