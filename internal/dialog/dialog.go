package dialog

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"
)

// Prefill 设置对话框的预填内容
type Prefill struct {
	URL        string
	Width      int
	Height     int
	Dimensions bool
}

// Values 用户确认时的原始输入
type Values struct {
	URL    string
	Width  string
	Height string
}

// Choice 退出确认对话框的选择
type Choice int

const (
	// ChoiceDismiss 关闭对话框，保留当前页面
	ChoiceDismiss Choice = iota
	// ChoiceChangeURL 重新打开设置对话框
	ChoiceChangeURL
	// ChoiceExit 结束会话
	ChoiceExit
)

func (c Choice) String() string {
	switch c {
	case ChoiceChangeURL:
		return "change_url"
	case ChoiceExit:
		return "exit"
	default:
		return "dismiss"
	}
}

// Options 终端对话框选项
type Options struct {
	Input      io.Reader
	Output     io.Writer
	Accessible bool
}

// Terminal 基于 huh 表单的模态对话框
type Terminal struct {
	opts Options
}

// NewTerminal 创建终端对话框
func NewTerminal(opts Options) *Terminal {
	return &Terminal{opts: opts}
}

// Settings 显示设置对话框。ok 为 false 表示用户取消（包括 Esc / Ctrl+C）。
func (t *Terminal) Settings(ctx context.Context, p Prefill) (Values, bool, error) {
	v := prefillValues(p)
	confirmed := true

	fields := []huh.Field{
		huh.NewInput().
			Title("Enter URL").
			Placeholder("https://example.com").
			Value(&v.URL),
	}
	if p.Dimensions {
		fields = append(fields,
			huh.NewInput().Title("Width (px)").Value(&v.Width),
			huh.NewInput().Title("Height (px)").Value(&v.Height),
		)
	}
	fields = append(fields,
		huh.NewConfirm().
			Affirmative("Go").
			Negative("Cancel").
			Value(&confirmed),
	)

	err := t.run(ctx, huh.NewForm(huh.NewGroup(fields...).Title("tvshell")))
	if errors.Is(err, huh.ErrUserAborted) {
		return Values{}, false, nil
	}
	if err != nil {
		return Values{}, false, err
	}
	if !confirmed {
		return Values{}, false, nil
	}
	return v, true, nil
}

// ExitOrChange 历史已退尽时询问退出还是更换 URL
func (t *Terminal) ExitOrChange(ctx context.Context) (Choice, error) {
	choice := ChoiceChangeURL

	sel := huh.NewSelect[Choice]().
		Title("Exit or Change URL?").
		Description("Do you want to exit the app or change the URL?").
		Options(
			huh.NewOption("Change URL", ChoiceChangeURL),
			huh.NewOption("Exit", ChoiceExit),
		).
		Value(&choice)

	err := t.run(ctx, huh.NewForm(huh.NewGroup(sel)))
	if errors.Is(err, huh.ErrUserAborted) {
		return ChoiceDismiss, nil
	}
	if err != nil {
		return ChoiceDismiss, err
	}
	return choice, nil
}

func (t *Terminal) run(ctx context.Context, form *huh.Form) error {
	form = form.
		WithKeyMap(keyMap()).
		WithShowHelp(true).
		WithAccessible(t.opts.Accessible)
	if t.opts.Input != nil {
		form = form.WithInput(t.opts.Input)
	}
	if t.opts.Output != nil {
		form = form.WithOutput(t.opts.Output)
	}
	return form.RunWithContext(ctx)
}

// keyMap 遥控器上的返回键通常映射为 Esc，Esc 与 Ctrl+C 都视为取消
func keyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "cancel"),
	)
	return km
}

func prefillValues(p Prefill) Values {
	v := Values{URL: p.URL}
	if p.Dimensions {
		v.Width = strconv.Itoa(p.Width)
		v.Height = strconv.Itoa(p.Height)
	}
	return v
}
