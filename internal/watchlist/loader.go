package watchlist

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shadowtrade/internal/logger"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Symbols []string `yaml:"symbols"`
}

// LoadFile 从 YAML 文件读取 symbol 列表：
//
//	symbols:
//	  - AAPL
//	  - MSFT
func LoadFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading watchlist file failed: %w", err)
	}
	var parsed fileFormat
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parsing watchlist file failed (%s): %w", path, err)
	}
	return parsed.Symbols, nil
}

// Watch 监听 watchlist 文件变化并整批热替换。
// 编辑器保存常带 RENAME/REMOVE，所以监听目录而不是单个文件。
// 返回的函数用于停止监听。
func Watch(path string, w *Watchlist) (func(), error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		var pending <-chan time.Time
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				// 防抖：编辑器保存会触发连续多个事件
				pending = time.After(200 * time.Millisecond)
			case <-pending:
				pending = nil
				symbols, err := LoadFile(abs)
				if err != nil {
					logger.Warnf("watchlist reload failed: %v", err)
					continue
				}
				if err := w.Replace(symbols); err != nil {
					logger.Warnf("watchlist reload rejected: %v", err)
					continue
				}
				logger.Infof("watchlist 热加载完成 symbols=%v", w.Symbols())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("watchlist watcher error: %v", err)
			}
		}
	}()
	return func() {
		close(done)
		_ = watcher.Close()
	}, nil
}
