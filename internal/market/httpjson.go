package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// HTTPSource 对接任意返回 JSON 的行情接口：
// quoteURL 带一个 %s 占位（symbol），quotePath 是 gjson 取价路径（如 "data.last"）。
// 只提供最新价，历史 K 线不支持。
type HTTPSource struct {
	quoteURL  string
	quotePath string
	client    *http.Client
}

func NewHTTPSource(quoteURL, quotePath string, timeout time.Duration) (*HTTPSource, error) {
	quoteURL = strings.TrimSpace(quoteURL)
	quotePath = strings.TrimSpace(quotePath)
	if quoteURL == "" || quotePath == "" {
		return nil, fmt.Errorf("http source requires quote_url and quote_path")
	}
	if !strings.Contains(quoteURL, "%s") {
		return nil, fmt.Errorf("quote_url must contain a %%s symbol placeholder")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		quoteURL:  quoteURL,
		quotePath: quotePath,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (s *HTTPSource) GetPrice(ctx context.Context, symbol string) (Quote, error) {
	url := fmt.Sprintf(s.quoteURL, strings.ToUpper(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Quote{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("quote %s: %w: %v", symbol, ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("quote %s: status %d: %w", symbol, resp.StatusCode, ErrUnavailable)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Quote{}, fmt.Errorf("quote %s: %w: %v", symbol, ErrUnavailable, err)
	}
	val := gjson.GetBytes(body, s.quotePath)
	if !val.Exists() || val.Float() <= 0 {
		return Quote{}, fmt.Errorf("quote %s: path %q missing in payload: %w", symbol, s.quotePath, ErrUnavailable)
	}
	return Quote{Symbol: strings.ToUpper(symbol), Price: val.Float(), At: time.Now().UTC()}, nil
}

func (s *HTTPSource) GetHistory(ctx context.Context, symbol, period string, limit int) ([]Candle, error) {
	return nil, fmt.Errorf("http source has no history for %s: %w", symbol, ErrUnavailable)
}
