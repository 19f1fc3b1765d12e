package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxPageBytes 单页面读取上限
const maxPageBytes = 8 << 20

// FetchError 访问来源站点失败（网络错误、非2xx、超时、文档无法解析）
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s抓取失败: %s 返回状态码%d", e.Source, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s抓取失败: %s: %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchPage 发起一次GET并读取响应体
func FetchPage(ctx context.Context, client *http.Client, source, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: err}
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 读掉响应体以便连接复用
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &FetchError{Source: source, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: fmt.Errorf("读取响应体失败: %w", err)}
	}
	return body, nil
}
