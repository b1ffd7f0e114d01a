package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"tvshell/pkg/domain"

	"github.com/tidwall/gjson"
)

// Options 浏览器启动选项
type Options struct {
	ExecPath            string   // 浏览器可执行文件路径
	UserDataDir         string   // 用户数据目录
	RemoteDebuggingPort int      // CDP端口，0表示使用9222
	Headless            bool     // 是否以无头模式启动
	Windowed            bool     // 最大化窗口而不是 kiosk 全屏
	Args                []string // 额外启动参数
	Env                 []string // 额外环境变量
	Stdout              io.Writer
	Stderr              io.Writer
}

var errStopTimeout = errors.New("browser stop timeout")

// Browser 已启动的浏览器进程句柄
type Browser struct {
	cmd         *exec.Cmd
	DevToolsURL string
	Info        domain.BrowserInfo
	port        int
	done        chan struct{}
	waitErr     error
}

// Start 以 kiosk 模式启动浏览器并等待CDP服务就绪
func Start(ctx context.Context, opts Options) (*Browser, error) {
	exe := opts.ExecPath
	if exe == "" {
		exe = defaultChromePath()
	}
	if exe == "" {
		return nil, domain.ErrBrowserNotFound
	}

	port := opts.RemoteDebuggingPort
	if port == 0 {
		port = 9222
	}

	finalPort, err := pickPort(port)
	if err != nil {
		return nil, fmt.Errorf("failed to pick port: %w", err)
	}

	port = finalPort
	args := buildLaunchArgs(port, opts)
	cmd := exec.CommandContext(ctx, exe, args...)
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	// 终端被对话框占用，浏览器输出默认丢弃
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBrowserStartFailed, err)
	}

	b := &Browser{
		cmd:         cmd,
		DevToolsURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		port:        port,
		done:        make(chan struct{}),
	}
	go func() {
		b.waitErr = cmd.Wait()
		close(b.done)
	}()

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	info, err := WaitDevToolsReady(waitCtx, b.DevToolsURL)
	if err != nil {
		_ = b.Stop(2 * time.Second)
		return nil, err
	}
	b.Info = info

	return b, nil
}

// Stop 关闭浏览器进程
func (b *Browser) Stop(timeout time.Duration) error {
	if b == nil || b.cmd == nil || b.cmd.Process == nil {
		return nil
	}
	// Windows上直接Kill以避免悬挂
	_ = b.cmd.Process.Kill()
	select {
	case <-time.After(timeout):
		return errStopTimeout
	case <-b.done:
		var exitErr *exec.ExitError
		if errors.As(b.waitErr, &exitErr) {
			// 被 Kill 的进程总是以非零状态退出
			return nil
		}
		return b.waitErr
	}
}

// Done 返回浏览器进程退出时关闭的通道
func (b *Browser) Done() <-chan struct{} {
	return b.done
}

// defaultChromePath 返回常见的 Chrome 可执行路径（跨平台）
func defaultChromePath() string {
	candidates := getChromePaths()
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	for _, name := range []string{"chrome", "google-chrome", "chromium", "chromium-browser"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}

	return ""
}

// getChromePaths 根据操作系统返回可能的 Chrome 路径
func getChromePaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			filepath.Join(os.Getenv("ProgramFiles"), "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(os.Getenv("ProgramFiles(x86)"), "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(os.Getenv("LOCALAPPDATA"), "Google", "Chrome", "Application", "chrome.exe"),
		}
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			filepath.Join(os.Getenv("HOME"), "Applications", "Google Chrome.app", "Contents", "MacOS", "Google Chrome"),
		}
	case "linux":
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	default:
		return nil
	}
}

// pickPort 尝试使用指定端口，如果被占用则选择随机空闲端口
func pickPort(preferred int) (int, error) {
	if preferred > 0 {
		l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", preferred))
		if err == nil {
			_ = l.Close()
			return preferred, nil
		}
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find free port: %w", err)
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}

// buildLaunchArgs 构建浏览器启动参数
func buildLaunchArgs(port int, opts Options) []string {
	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", port),
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-background-timer-throttling",
		"--disable-backgrounding-occluded-windows",
		"--disable-breakpad",
		"--disable-default-apps",
		"--disable-extensions",
		"--disable-hang-monitor",
		"--disable-prompt-on-repost",
		"--disable-renderer-backgrounding",
		"--disable-sync",
		"--disable-translate",
		"--disable-session-crashed-bubble",
		"--disable-infobars",
		"--noerrdialogs",
		// 视频自动播放不需要用户手势
		"--autoplay-policy=no-user-gesture-required",
		// 允许 HTTPS 页面加载 HTTP 资源
		"--allow-running-insecure-content",
	}

	// Linux 环境下添加额外参数
	if runtime.GOOS == "linux" {
		args = append(args, "--disable-dev-shm-usage")
	}

	// 用户数据目录：固定目录才能保留站点登录和 DOM 存储
	if opts.UserDataDir != "" {
		_ = os.MkdirAll(opts.UserDataDir, 0o755)
		args = append(args, fmt.Sprintf("--user-data-dir=%s", opts.UserDataDir))
	} else {
		dir := filepath.Join(os.TempDir(), fmt.Sprintf("tvshell-chrome-%d", time.Now().Unix()))
		_ = os.MkdirAll(dir, 0o755)
		args = append(args, fmt.Sprintf("--user-data-dir=%s", dir))
	}

	switch {
	case opts.Headless:
		args = append(args, "--headless=new", "--disable-gpu")
	case opts.Windowed:
		args = append(args, "--start-maximized")
	default:
		args = append(args, "--kiosk", "--start-fullscreen")
	}

	if len(opts.Args) > 0 {
		args = append(args, opts.Args...)
	}

	// 初始页面留空，由设置对话框决定导航目标
	return append(args, "about:blank")
}

// WaitDevToolsReady 轮询 DevTools 服务直到就绪，返回浏览器版本信息
func WaitDevToolsReady(ctx context.Context, base string) (domain.BrowserInfo, error) {
	url := fmt.Sprintf("%s/json/version", base)
	cli := &http.Client{Timeout: 500 * time.Millisecond}
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()
	for {
		if info, ok := probeVersion(ctx, cli, url); ok {
			return info, nil
		}
		select {
		case <-ctx.Done():
			return domain.BrowserInfo{}, fmt.Errorf("%w: %v", domain.ErrDevToolsUnreachable, ctx.Err())
		case <-ticker.C:
		}
	}
}

func probeVersion(ctx context.Context, cli *http.Client, url string) (domain.BrowserInfo, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.BrowserInfo{}, false
	}
	resp, err := cli.Do(req)
	if err != nil {
		return domain.BrowserInfo{}, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.BrowserInfo{}, false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || !gjson.ValidBytes(body) {
		return domain.BrowserInfo{}, false
	}
	r := gjson.GetManyBytes(body, "Browser", "Protocol-Version", "User-Agent")
	return domain.BrowserInfo{
		Product:         r[0].String(),
		ProtocolVersion: r[1].String(),
		UserAgent:       r[2].String(),
	}, true
}
