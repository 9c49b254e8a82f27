package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	defaultFetchTimeout = 10 * time.Second
	userAgent           = "FeedMon/1.0 (+https://github.com)"
)

// Describer 在 Feed 缺少摘要时根据文章链接抓取描述。
type Describer interface {
	Resolve(ctx context.Context, url string) (string, bool)
}

// Fetcher 负责抓取单个订阅源并提取最新条目。
type Fetcher struct {
	url       string
	parser    *gofeed.Parser
	client    *http.Client
	describer Describer // 可为 nil（不做兜底抓取）
}

// NewFetcher 创建订阅源抓取器。
func NewFetcher(feedURL string, describer Describer) *Fetcher {
	return &Fetcher{
		url:       feedURL,
		parser:    gofeed.NewParser(),
		client:    &http.Client{Timeout: defaultFetchTimeout},
		describer: describer,
	}
}

// Latest 抓取订阅源并返回规范化后的最新条目。
// 第二个返回值为 false 表示 Feed 为空（不是错误）。
// 网络或解析失败返回错误，由调用方决定是否跳过本轮。
func (f *Fetcher) Latest(ctx context.Context) (Entry, bool, error) {
	fd, err := f.parseFeed(ctx)
	if err != nil {
		return Entry{}, false, err
	}

	var describe DescribeFunc
	if f.describer != nil {
		describe = func(link string) (string, bool) {
			return f.describer.Resolve(ctx, link)
		}
	}

	e, ok := Normalize(fd, describe)
	return e, ok, nil
}

// parseFeed 抓取并解析 Feed 地址。
func (f *Fetcher) parseFeed(ctx context.Context) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("抓取订阅源失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("订阅源返回 HTTP %d", resp.StatusCode)
	}

	fd, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("解析订阅源失败: %w", err)
	}
	return fd, nil
}
