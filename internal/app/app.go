package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"tvshell/internal/browser"
	"tvshell/internal/config"
	"tvshell/internal/dialog"
	"tvshell/internal/display"
	"tvshell/internal/logger"
	"tvshell/internal/prefs"
	"tvshell/internal/shell"
	"tvshell/internal/storage/db"
	"tvshell/internal/storage/model"
	"tvshell/internal/storage/repo"
	"tvshell/pkg/errx"

	"gorm.io/gorm"
	gl "gorm.io/gorm/logger"
)

// App 负责装配偏好存储、浏览器与显示组件，并运行壳会话
type App struct {
	cfg     *config.Config
	log     *logger.ZeroLogger
	gdb     *gorm.DB
	store   prefs.Store
	browser *browser.Browser
	page    *display.Page
}

// New 创建并返回一个新的 App 实例
func New(cfg *config.Config) *App {
	return &App{
		cfg: cfg,
		log: logger.New(logger.Options{
			Level:   cfg.Log.Level,
			Writers: cfg.Log.Writer,
		}),
	}
}

// OpenStore 初始化偏好存储
func (a *App) OpenStore() (prefs.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if a.cfg.Sqlite.Ephemeral {
		a.log.Info("使用内存偏好存储")
		a.store = prefs.NewMemoryStore()
		return a.store, nil
	}

	gormLogger := db.NewLogger(a.log).LogMode(gormLevel(a.cfg.Log.Level))
	opts := db.Options{
		Name:   a.cfg.Sqlite.Db,
		Prefix: a.cfg.Sqlite.Prefix,
		Logger: gormLogger,
	}
	// 绝对路径直接使用，否则放在应用数据目录下
	if filepath.IsAbs(a.cfg.Sqlite.Db) {
		opts.FullPath = a.cfg.Sqlite.Db
	}
	gdb, err := db.New(opts)
	if err != nil {
		a.log.Err(err, "数据库初始化失败")
		return nil, errx.Wrap(errx.CodeDatabaseError, err, "open database")
	}

	if err := db.Migrate(gdb, model.All()...); err != nil {
		_ = db.Close(gdb)
		a.log.Err(err, "数据库迁移失败")
		return nil, errx.Wrap(errx.CodeDatabaseError, err, "migrate database")
	}

	a.gdb = gdb
	a.store = repo.NewSettingsRepo(gdb)
	a.log.Debug("数据持久化层初始化完成")
	return a.store, nil
}

// Resolver 基于当前配置创建设置解析器
func (a *App) Resolver() (*prefs.Resolver, error) {
	store, err := a.OpenStore()
	if err != nil {
		return nil, err
	}
	return prefs.NewResolver(prefs.Options{
		Store:      store,
		Defaults:   a.cfg.Defaults,
		Dimensions: a.cfg.Prompt.Dimensions,
		Log:        a.log.With("component", "prefs"),
	}), nil
}

// StoredSettings 返回偏好存储中的全部原始键值
func (a *App) StoredSettings(ctx context.Context) (map[string]string, error) {
	store, err := a.OpenStore()
	if err != nil {
		return nil, err
	}
	lister, ok := store.(interface {
		GetAll(ctx context.Context) (map[string]string, error)
	})
	if !ok {
		return nil, nil
	}
	all, err := lister.GetAll(ctx)
	if err != nil {
		return nil, errx.Wrap(errx.CodeDatabaseError, err, "list settings")
	}
	return all, nil
}

// Startup 打开存储，启动或附着浏览器
func (a *App) Startup(ctx context.Context) error {
	a.log.Info("应用启动", "version", a.cfg.Version)

	if _, err := a.OpenStore(); err != nil {
		return err
	}

	devtoolsURL := a.cfg.Browser.DevtoolsURL
	if devtoolsURL == "" {
		b, err := browser.Start(ctx, browser.Options{
			ExecPath:            a.cfg.Browser.Path,
			UserDataDir:         a.userDataDir(),
			RemoteDebuggingPort: a.cfg.Browser.Port,
			Headless:            a.cfg.Browser.Headless,
			Windowed:            a.cfg.Browser.Windowed,
			Args:                a.cfg.Browser.Args,
		})
		if err != nil {
			a.log.Err(err, "浏览器启动失败")
			return errx.Wrap(errx.CodeBrowserStartFailed, err, "start browser")
		}
		a.browser = b
		devtoolsURL = b.DevToolsURL
		a.log.Info("浏览器已启动", "devToolsURL", devtoolsURL, "product", b.Info.Product)
	} else {
		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		info, err := browser.WaitDevToolsReady(waitCtx, devtoolsURL)
		cancel()
		if err != nil {
			return errx.Wrap(errx.CodeDevToolsAttach, err, devtoolsURL)
		}
		a.log.Info("附着到已有浏览器", "devToolsURL", devtoolsURL, "product", info.Product)
	}

	page, err := display.Attach(ctx, devtoolsURL, a.log.With("component", "display"))
	if err != nil {
		return errx.Wrap(errx.CodeDevToolsAttach, err, devtoolsURL)
	}
	a.page = page
	return nil
}

// Run 启动并运行一次壳会话，结束后清理资源
func (a *App) Run(ctx context.Context, prompter shell.Prompter) error {
	defer a.Shutdown()

	if err := a.Startup(ctx); err != nil {
		return err
	}
	resolver, err := a.Resolver()
	if err != nil {
		return err
	}

	var done <-chan struct{}
	if a.browser != nil {
		done = a.browser.Done()
	}

	return shell.New(shell.Options{
		Resolver: resolver,
		Display:  a.page,
		Prompter: prompter,
		Log:      a.log,
		Done:     done,
	}).Run(ctx)
}

// NewPrompter 创建连接到当前终端的对话框
func NewPrompter() *dialog.Terminal {
	return dialog.NewTerminal(dialog.Options{Input: os.Stdin, Output: os.Stderr})
}

// Shutdown 负责清理资源
func (a *App) Shutdown() {
	a.log.Info("应用关闭中...")

	if a.page != nil {
		_ = a.page.Close()
	}
	if a.browser != nil {
		if err := a.browser.Stop(2 * time.Second); err != nil {
			a.log.Err(err, "关闭浏览器失败")
		}
	}
	if a.gdb != nil {
		_ = db.Close(a.gdb)
	}

	a.log.Info("应用已关闭")
}

// userDataDir 浏览器配置目录，默认位于应用数据目录下以保留站点数据
func (a *App) userDataDir() string {
	if a.cfg.Browser.UserDataDir != "" {
		return a.cfg.Browser.UserDataDir
	}
	dir, err := config.AppDataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chrome-profile")
}

func gormLevel(level string) gl.LogLevel {
	switch level {
	case "debug":
		return gl.Info
	case "none":
		return gl.Silent
	default:
		return gl.Warn
	}
}
