// Package scrape 在订阅源缺少摘要时，从文章页面提取描述文本。
// 这是容错式的文本抓取，不做严格的 HTML 校验：任何失败都返回"没取到"，
// 从不向调用方报错。
package scrape

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const (
	fetchTimeout = 10 * time.Second
	maxBodySize  = 1 << 20
	userAgent    = "FeedMon/1.0 (+https://github.com)"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// Resolver 文章页面描述提取器。
type Resolver struct {
	client *http.Client
}

// NewResolver 创建描述提取器。
func NewResolver() *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Resolve 抓取文章页面并按优先级提取描述，第一个命中即返回：
//
//	og:description meta → description meta →
//	第一个 article 块里的第一个 p → 页面上第一个 p
//
// 非 200 响应、网络错误、解析失败都返回 false。
func (r *Resolver) Resolve(ctx context.Context, url string) (string, bool) {
	if url == "" {
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	// 按响应声明的编码转换为 UTF-8，转换失败时按原始字节继续
	var reader io.Reader = io.LimitReader(resp.Body, maxBodySize)
	if cr, err := charset.NewReader(reader, resp.Header.Get("Content-Type")); err == nil {
		reader = cr
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return "", false
	}
	return extract(doc)
}

// extract 从解析后的文档提取描述。
// HTML 解析器把标签名和属性名统一转为小写，属性顺序也被展平，
// 所以选择器天然容忍大小写和属性顺序差异。
func extract(doc *goquery.Document) (string, bool) {
	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if desc := stripTags(v); desc != "" {
			return desc, true
		}
	}
	if v, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if desc := stripTags(v); desc != "" {
			return desc, true
		}
	}
	if p := doc.Find("article").First().Find("p").First(); p.Length() > 0 {
		return strings.TrimSpace(p.Text()), true
	}
	if p := doc.Find("p").First(); p.Length() > 0 {
		return strings.TrimSpace(p.Text()), true
	}
	return "", false
}

// stripTags 移除文本中残留的 HTML 标签并去掉首尾空白。
func stripTags(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}
