package shell

import (
	"context"
	"errors"

	"tvshell/internal/dialog"
	"tvshell/internal/display"
	"tvshell/internal/logger"
	"tvshell/internal/prefs"
	"tvshell/pkg/domain"
	"tvshell/pkg/errx"

	"github.com/google/uuid"
)

// Display 显示组件
type Display interface {
	Navigate(ctx context.Context, url string) error
	CanGoBack(ctx context.Context) (bool, error)
	GoBack(ctx context.Context) error
	CurrentURL(ctx context.Context) (string, bool, error)
	BackRequests() <-chan display.BackRequest
}

// Prompter 模态对话框
type Prompter interface {
	Settings(ctx context.Context, p dialog.Prefill) (dialog.Values, bool, error)
	ExitOrChange(ctx context.Context) (dialog.Choice, error)
}

// Options 壳选项
type Options struct {
	Resolver *prefs.Resolver
	Display  Display
	Prompter Prompter
	Log      logger.Logger
	// Done 浏览器进程退出时关闭，可为空
	Done <-chan struct{}
}

// Shell 单线程会话控制器：对话框、导航与返回键都在 Run 的循环中依次处理
type Shell struct {
	id        domain.SessionID
	resolver  *prefs.Resolver
	display   Display
	prompter  Prompter
	log       logger.Logger
	done      <-chan struct{}
	navigated bool
}

type step int

const (
	stepPrompt step = iota
	stepExitOrChange
	stepWait
	stepTerminate
)

// New 创建壳
func New(opts Options) *Shell {
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	return &Shell{
		id:       domain.SessionID(uuid.NewString()),
		resolver: opts.Resolver,
		display:  opts.Display,
		prompter: opts.Prompter,
		log:      opts.Log,
		done:     opts.Done,
	}
}

// ID 返回会话ID
func (s *Shell) ID() domain.SessionID { return s.id }

// Run 运行会话直到用户退出、浏览器关闭或 ctx 取消
func (s *Shell) Run(ctx context.Context) error {
	s.log.Info("会话开始", "session", s.id)

	next := stepPrompt
	for {
		var err error
		switch next {
		case stepPrompt:
			next, err = s.prompt(ctx)
		case stepExitOrChange:
			next, err = s.exitOrChange(ctx)
		case stepWait:
			next = s.wait(ctx)
		case stepTerminate:
			s.log.Info("会话结束", "session", s.id, "navigated", s.navigated)
			return nil
		}

		if ctx.Err() != nil {
			s.log.Info("会话被中断", "session", s.id)
			return nil
		}
		if err != nil {
			s.log.Err(err, "会话异常结束", "session", s.id)
			return err
		}
	}
}

// prompt 打开设置对话框并应用解析结果
func (s *Shell) prompt(ctx context.Context) (step, error) {
	prev := s.resolver.LoadDefaults(ctx)
	vals, ok, err := s.prompter.Settings(ctx, dialog.Prefill{
		URL:        prev.URL,
		Width:      prev.Width,
		Height:     prev.Height,
		Dimensions: s.resolver.Dimensions(),
	})
	if err != nil {
		return stepTerminate, errx.Wrap(errx.CodePromptFailed, err, "settings dialog")
	}

	navigated := s.hasContent(ctx)
	var out prefs.Outcome
	if ok {
		out = s.resolver.Confirm(ctx, prefs.Input{URL: vals.URL, Width: vals.Width, Height: vals.Height}, prev, navigated)
	} else {
		out = s.resolver.Cancel(navigated)
	}
	s.log.Debug("设置对话框关闭", "session", s.id, "confirmed", ok, "outcome", out.Kind.String())

	return s.apply(ctx, out), nil
}

// apply 执行解析结果
func (s *Shell) apply(ctx context.Context, out prefs.Outcome) step {
	switch out.Kind {
	case prefs.OutcomeNavigate:
		if err := s.display.Navigate(ctx, out.Target); err != nil {
			s.log.Err(err, "导航失败", "session", s.id, "url", out.Target)
			if s.hasContent(ctx) {
				return stepWait
			}
			return stepPrompt
		}
		s.navigated = true
		s.log.Info("导航成功", "session", s.id, "url", out.Target)
		return stepWait
	case prefs.OutcomeResume:
		return stepWait
	case prefs.OutcomeReopenPrompt:
		return stepPrompt
	default:
		return stepTerminate
	}
}

// wait 等待下一次返回请求
func (s *Shell) wait(ctx context.Context) step {
	select {
	case <-ctx.Done():
		return stepTerminate
	case <-s.done:
		s.log.Info("浏览器已退出", "session", s.id)
		return stepTerminate
	case req, ok := <-s.display.BackRequests():
		if !ok {
			s.log.Warn("页面连接已断开", "session", s.id)
			return stepTerminate
		}
		return s.back(ctx, req)
	}
}

// back 有历史时后退，否则询问退出还是更换 URL
func (s *Shell) back(ctx context.Context, req display.BackRequest) step {
	can, err := s.display.CanGoBack(ctx)
	if err != nil {
		s.log.Err(err, "读取历史失败", "session", s.id)
		return stepWait
	}
	if !can {
		return stepExitOrChange
	}
	if err := s.display.GoBack(ctx); err != nil {
		s.log.Err(err, "后退失败", "session", s.id)
	}
	s.log.Debug("后退", "session", s.id, "key", req.Key, "from", req.URL)
	return stepWait
}

func (s *Shell) exitOrChange(ctx context.Context) (step, error) {
	choice, err := s.prompter.ExitOrChange(ctx)
	if err != nil {
		return stepTerminate, errx.Wrap(errx.CodePromptFailed, err, "exit dialog")
	}
	s.log.Debug("退出确认对话框关闭", "session", s.id, "choice", choice.String())

	switch choice {
	case dialog.ChoiceChangeURL:
		return stepPrompt, nil
	case dialog.ChoiceExit:
		return stepTerminate, nil
	default:
		return stepWait, nil
	}
}

// hasContent 报告本次会话是否已经显示过内容
func (s *Shell) hasContent(ctx context.Context) bool {
	_, ok, err := s.display.CurrentURL(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Err(err, "读取当前 URL 失败", "session", s.id)
		}
		return s.navigated
	}
	return ok
}
