package prefs

import (
	"context"
	"strconv"

	"tvshell/internal/config"
	"tvshell/internal/logger"
	"tvshell/internal/storage/model"
)

// Record 持久化的偏好记录
type Record struct {
	URL    string
	Width  int
	Height int
}

// Input 对话框确认时提交的原始文本
type Input struct {
	URL    string
	Width  string
	Height string
}

// OutcomeKind 对话框关闭后的决定
type OutcomeKind int

const (
	// OutcomeNavigate 导航到 Outcome.Target
	OutcomeNavigate OutcomeKind = iota
	// OutcomeResume 保留当前已显示的页面
	OutcomeResume
	// OutcomeReopenPrompt 重新打开设置对话框
	OutcomeReopenPrompt
	// OutcomeTerminate 结束会话
	OutcomeTerminate
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNavigate:
		return "navigate"
	case OutcomeResume:
		return "resume"
	case OutcomeReopenPrompt:
		return "reopen_prompt"
	case OutcomeTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// Outcome 解析结果
type Outcome struct {
	Kind   OutcomeKind
	Target string
	// Record 本次确认写入的偏好，仅 OutcomeNavigate 时有效
	Record Record
}

// Options 解析器选项
type Options struct {
	Store    Store
	Defaults config.DefaultSettings
	// Dimensions 为 true 时读写 last_width / last_height
	Dimensions bool
	Log        logger.Logger
}

// Resolver 设置解析器：从输入和已保存的偏好计算导航目标，并决定持久化内容
type Resolver struct {
	store      Store
	defaults   config.DefaultSettings
	dimensions bool
	log        logger.Logger
}

// NewResolver 创建解析器
func NewResolver(opts Options) *Resolver {
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	return &Resolver{
		store:      opts.Store,
		defaults:   opts.Defaults,
		dimensions: opts.Dimensions,
		log:        opts.Log,
	}
}

// Dimensions 报告对话框是否需要宽高字段
func (r *Resolver) Dimensions() bool { return r.dimensions }

// LoadDefaults 读取偏好记录，缺失的键使用内置默认值
func (r *Resolver) LoadDefaults(ctx context.Context) Record {
	rec := Record{
		URL:    r.store.GetWithDefault(ctx, model.SettingKeyLastURL, r.defaults.URL),
		Width:  r.defaults.Width,
		Height: r.defaults.Height,
	}
	if r.dimensions {
		rec.Width = ParseDimension(r.store.GetWithDefault(ctx, model.SettingKeyLastWidth, ""), r.defaults.Width)
		rec.Height = ParseDimension(r.store.GetWithDefault(ctx, model.SettingKeyLastHeight, ""), r.defaults.Height)
	}
	return rec
}

// Commit 覆盖保存偏好记录，所有键在一次写入中完成
func (r *Resolver) Commit(ctx context.Context, rec Record) error {
	kvs := map[string]string{model.SettingKeyLastURL: rec.URL}
	if r.dimensions {
		kvs[model.SettingKeyLastWidth] = strconv.Itoa(rec.Width)
		kvs[model.SettingKeyLastHeight] = strconv.Itoa(rec.Height)
	}
	return r.store.SetMultiple(ctx, kvs)
}

// Confirm 处理对话框确认。prev 是打开对话框时预填的记录，
// 宽高解析失败时回退到它；navigated 表示本次会话是否已成功导航过。
func (r *Resolver) Confirm(ctx context.Context, in Input, prev Record, navigated bool) Outcome {
	target, ok := Normalize(in.URL)
	if !ok {
		r.log.Debug("URL 为空，忽略本次确认", "navigated", navigated)
		if navigated {
			return Outcome{Kind: OutcomeResume}
		}
		return Outcome{Kind: OutcomeReopenPrompt}
	}

	rec := Record{URL: target, Width: prev.Width, Height: prev.Height}
	if r.dimensions {
		rec.Width = ParseDimension(in.Width, prev.Width)
		rec.Height = ParseDimension(in.Height, prev.Height)
		// 显示区域始终铺满窗口，宽高只保存不应用
		r.log.Debug("记录请求尺寸", "width", rec.Width, "height", rec.Height)
	}

	if err := r.Commit(ctx, rec); err != nil {
		r.log.Err(err, "保存偏好失败", "url", target)
	}

	return Outcome{Kind: OutcomeNavigate, Target: target, Record: rec}
}

// Cancel 处理对话框取消：已有页面时保留，否则结束会话
func (r *Resolver) Cancel(navigated bool) Outcome {
	if navigated {
		return Outcome{Kind: OutcomeResume}
	}
	return Outcome{Kind: OutcomeTerminate}
}
