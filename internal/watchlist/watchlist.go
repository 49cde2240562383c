package watchlist

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// symbol 规则：大写字母/数字为主，允许一个 "./-" 分隔的后缀（BRK.B、BTC-USD 这类）。
var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,12}([./-][A-Z0-9]{1,6})?$`)

// Watchlist 是参与策略评估的 symbol 集合。
// 保持插入序，保证每个周期的遍历顺序稳定、测试可复现。
type Watchlist struct {
	mu      sync.RWMutex
	ordered []string
	index   map[string]struct{}
}

func New(seed ...string) (*Watchlist, error) {
	w := &Watchlist{index: make(map[string]struct{})}
	for _, sym := range seed {
		if err := w.Add(sym); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Normalize 统一 symbol 写法；非法返回错误。
func Normalize(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("malformed symbol %q", symbol)
	}
	return s, nil
}

// Add 幂等插入；重复插入不改变既有顺序。
func (w *Watchlist) Add(symbol string) error {
	s, err := Normalize(symbol)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.index[s]; ok {
		return nil
	}
	w.index[s] = struct{}{}
	w.ordered = append(w.ordered, s)
	return nil
}

func (w *Watchlist) Remove(symbol string) {
	s, err := Normalize(symbol)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.index[s]; !ok {
		return
	}
	delete(w.index, s)
	for i, existing := range w.ordered {
		if existing == s {
			w.ordered = append(w.ordered[:i], w.ordered[i+1:]...)
			break
		}
	}
}

func (w *Watchlist) Contains(symbol string) bool {
	s, err := Normalize(symbol)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.index[s]
	return ok
}

// Symbols 返回插入序的拷贝。
func (w *Watchlist) Symbols() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, len(w.ordered))
	copy(out, w.ordered)
	return out
}

func (w *Watchlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.ordered)
}

// Replace 原子替换整个集合（热加载用）。非法 symbol 整批拒绝。
func (w *Watchlist) Replace(symbols []string) error {
	ordered := make([]string, 0, len(symbols))
	index := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		s, err := Normalize(sym)
		if err != nil {
			return err
		}
		if _, ok := index[s]; ok {
			continue
		}
		index[s] = struct{}{}
		ordered = append(ordered, s)
	}
	w.mu.Lock()
	w.ordered = ordered
	w.index = index
	w.mu.Unlock()
	return nil
}
