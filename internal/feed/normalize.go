package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// DescribeFunc 在摘要缺失时根据文章链接获取描述的回调。
// 返回 false 表示没有取到描述，调用方把摘要降级为空字符串。
type DescribeFunc func(link string) (string, bool)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// publishedLayouts 自由文本发布时间的候选格式。
// gofeed 解析失败时按此顺序逐个尝试。
var publishedLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
}

// Normalize 从解析后的 Feed 文档提取最新条目的规范化记录。
// 文档没有条目时返回 false（空 Feed 不是错误）。
// 只检查文档顺序中的第一条；同一轮询间隔内发布的更早条目不会被回溯。
func Normalize(fd *gofeed.Feed, describe DescribeFunc) (Entry, bool) {
	if fd == nil || len(fd.Items) == 0 {
		return Entry{}, false
	}
	item := fd.Items[0]
	if item == nil {
		return Entry{}, false
	}

	e := Entry{
		ID:        resolveID(item),
		Title:     item.Title,
		Link:      item.Link,
		Published: resolvePublished(item),
		Summary:   resolveSummary(item),
		Author:    resolveAuthor(item),
		MediaURLs: collectMedia(item),
	}

	// Feed 本身没有摘要时，尝试抓取文章页面兜底。
	// 兜底失败一律吞掉，摘要保持空字符串。
	if e.Summary == "" && e.Link != "" && describe != nil {
		if desc, ok := describe(e.Link); ok {
			e.Summary = desc
		}
	}

	return e, true
}

// resolveID 按固定顺序解析稳定标识，在第一个非空值处短路：
// GUID → 链接 → 标题+原始发布时间串。
// gofeed 把 Atom 的 <id> 和 RSS 的 <guid> 统一映射到 GUID 字段。
// 所有来源都为空时返回空字符串，轮询层会比较空串（连续无 ID 的
// 轮询彼此相等，通知被抑制，这是预期的降级行为）。
func resolveID(item *gofeed.Item) string {
	return firstNonEmpty(item.GUID, item.Link, item.Title+item.Published)
}

// resolveSummary 解析摘要：Description（RSS description / Atom summary）→
// 第一个内容块，再剥离 HTML 标签。不做实体解码。
func resolveSummary(item *gofeed.Item) string {
	raw := firstNonEmpty(item.Description, item.Content)
	return stripTags(raw)
}

// resolvePublished 解析发布时间：优先结构化时间，其次按候选格式解析
// 自由文本时间串。解析失败返回 nil，永远不报错。
func resolvePublished(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.Published != "" {
		for _, layout := range publishedLayouts {
			if ts, err := time.Parse(layout, item.Published); err == nil {
				return &ts
			}
		}
	}
	return nil
}

// resolveAuthor 解析作者名：条目作者的 name → email → 作者列表的第一个。
func resolveAuthor(item *gofeed.Item) string {
	if item.Author != nil {
		if v := firstNonEmpty(item.Author.Name, item.Author.Email); v != "" {
			return v
		}
	}
	for _, p := range item.Authors {
		if p == nil {
			continue
		}
		if v := firstNonEmpty(p.Name, p.Email); v != "" {
			return v
		}
	}
	return ""
}

// collectMedia 按固定顺序收集媒体地址：media:content 扩展 → enclosure →
// 条目图片。各来源内部顺序保留，来源间按上述顺序拼接，不做去重。
func collectMedia(item *gofeed.Item) []string {
	var urls []string

	if media, ok := item.Extensions["media"]; ok {
		for _, c := range media["content"] {
			if u := c.Attrs["url"]; u != "" {
				urls = append(urls, u)
			}
		}
	}

	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			urls = append(urls, enc.URL)
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		urls = append(urls, item.Image.URL)
	}

	return urls
}

// stripTags 以标签边界为单位移除 HTML 标签（每个 <...> 片段替换为空），
// 并去掉首尾空白。不做实体解码。
func stripTags(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}

// firstNonEmpty 返回第一个非空值，表达"先到先得"的字段解析链。
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
