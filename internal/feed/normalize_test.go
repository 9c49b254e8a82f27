package feed

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

func feedWith(items ...*gofeed.Item) *gofeed.Feed {
	return &gofeed.Feed{Title: "Test Blog", Items: items}
}

func TestNormalize_EmptyFeed(t *testing.T) {
	if _, ok := Normalize(&gofeed.Feed{}, nil); ok {
		t.Error("空 Feed 应返回 false")
	}
	if _, ok := Normalize(nil, nil); ok {
		t.Error("nil Feed 应返回 false")
	}
}

func TestNormalize_TakesFirstItemOnly(t *testing.T) {
	fd := feedWith(
		&gofeed.Item{GUID: "newest", Title: "最新"},
		&gofeed.Item{GUID: "older", Title: "更早"},
	)
	e, ok := Normalize(fd, nil)
	if !ok {
		t.Fatal("Normalize 应返回条目")
	}
	if e.ID != "newest" {
		t.Errorf("应只取第一条: %s", e.ID)
	}
}

func TestResolveID_Order(t *testing.T) {
	cases := []struct {
		name string
		item *gofeed.Item
		want string
	}{
		{"GUID 优先", &gofeed.Item{GUID: "A", Link: "C", Title: "T"}, "A"},
		{"其次链接", &gofeed.Item{Link: "C", Title: "T"}, "C"},
		{"最后标题+发布时间串", &gofeed.Item{Title: "T", Published: "2026-01-02"}, "T2026-01-02"},
		{"全部为空时降级为空串", &gofeed.Item{}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := resolveID(c.item); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestNormalize_StripsSummaryHTML(t *testing.T) {
	// 场景：无 GUID，有链接和 HTML 摘要
	fd := feedWith(&gofeed.Item{
		Link:        "https://x/a",
		Title:       "T",
		Description: "<p>Hi <b>there</b></p>",
	})
	e, ok := Normalize(fd, nil)
	if !ok {
		t.Fatal("Normalize 应返回条目")
	}
	if e.ID != "https://x/a" {
		t.Errorf("ID 应为链接: %s", e.ID)
	}
	if e.Summary != "Hi there" {
		t.Errorf("摘要应剥离标签: %q", e.Summary)
	}
}

func TestStripTags_NoEntityDecoding(t *testing.T) {
	got := stripTags("<p>Tom &amp; Jerry</p>")
	if got != "Tom &amp; Jerry" {
		t.Errorf("不应做实体解码: %q", got)
	}
}

func TestResolveSummary_FallsBackToContent(t *testing.T) {
	item := &gofeed.Item{Content: "<div>正文内容</div>"}
	if got := resolveSummary(item); got != "正文内容" {
		t.Errorf("应回退到内容块: %q", got)
	}
}

func TestNormalize_DescribeFallback(t *testing.T) {
	fd := feedWith(&gofeed.Item{Link: "https://x/a", Description: "<p>  </p>"})

	called := false
	e, _ := Normalize(fd, func(link string) (string, bool) {
		called = true
		if link != "https://x/a" {
			t.Errorf("兜底抓取链接不匹配: %s", link)
		}
		return "scraped description", true
	})
	if !called {
		t.Fatal("摘要为空且有链接时应触发兜底抓取")
	}
	if e.Summary != "scraped description" {
		t.Errorf("摘要应来自兜底抓取: %q", e.Summary)
	}
}

func TestNormalize_DescribeFailureSwallowed(t *testing.T) {
	fd := feedWith(&gofeed.Item{Link: "https://x/a"})
	e, _ := Normalize(fd, func(string) (string, bool) { return "", false })
	if e.Summary != "" {
		t.Errorf("兜底失败时摘要应为空: %q", e.Summary)
	}
}

func TestNormalize_DescribeNotCalledWhenSummaryPresent(t *testing.T) {
	fd := feedWith(&gofeed.Item{Link: "https://x/a", Description: "已有摘要"})
	e, _ := Normalize(fd, func(string) (string, bool) {
		t.Error("已有摘要时不应触发兜底抓取")
		return "", false
	})
	if e.Summary != "已有摘要" {
		t.Errorf("摘要不匹配: %q", e.Summary)
	}
}

func TestResolvePublished(t *testing.T) {
	parsed := time.Date(2026, 2, 19, 8, 0, 0, 0, time.UTC)

	if got := resolvePublished(&gofeed.Item{PublishedParsed: &parsed}); got == nil || !got.Equal(parsed) {
		t.Errorf("应优先使用结构化时间: %v", got)
	}

	got := resolvePublished(&gofeed.Item{Published: "Thu, 19 Feb 2026 08:00:00 +0000"})
	if got == nil || !got.Equal(parsed) {
		t.Errorf("应解析 RFC1123Z 文本时间: %v", got)
	}

	if got := resolvePublished(&gofeed.Item{Published: "昨天下午"}); got != nil {
		t.Errorf("无法解析的时间应为 nil: %v", got)
	}
	if got := resolvePublished(&gofeed.Item{}); got != nil {
		t.Errorf("缺失时间应为 nil: %v", got)
	}
}

func TestResolveAuthor_Order(t *testing.T) {
	cases := []struct {
		name string
		item *gofeed.Item
		want string
	}{
		{"作者 name 优先", &gofeed.Item{
			Author:  &gofeed.Person{Name: "张三", Email: "z@x.com"},
			Authors: []*gofeed.Person{{Name: "李四"}},
		}, "张三"},
		{"退回 email", &gofeed.Item{Author: &gofeed.Person{Email: "z@x.com"}}, "z@x.com"},
		{"退回作者列表第一个", &gofeed.Item{
			Authors: []*gofeed.Person{nil, {Name: "李四"}},
		}, "李四"},
		{"全部缺失", &gofeed.Item{}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := resolveAuthor(c.item); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestCollectMedia_OrderAndDuplicates(t *testing.T) {
	item := &gofeed.Item{
		Extensions: ext.Extensions{
			"media": {
				"content": []ext.Extension{
					{Name: "content", Attrs: map[string]string{"url": "https://img/1.jpg"}},
					{Name: "content", Attrs: map[string]string{"url": "https://img/2.jpg"}},
				},
			},
		},
		Enclosures: []*gofeed.Enclosure{
			{URL: "https://img/3.jpg", Type: "image/jpeg"},
			{URL: "https://img/1.jpg", Type: "image/jpeg"}, // 与 media:content 重复
		},
		Image: &gofeed.Image{URL: "https://img/4.jpg"},
	}

	got := collectMedia(item)
	want := []string{
		"https://img/1.jpg",
		"https://img/2.jpg",
		"https://img/3.jpg",
		"https://img/1.jpg",
		"https://img/4.jpg",
	}
	if len(got) != len(want) {
		t.Fatalf("期望 %d 个媒体地址，得到 %d 个: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("第 %d 个媒体地址不匹配: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCollectMedia_Empty(t *testing.T) {
	if got := collectMedia(&gofeed.Item{}); len(got) != 0 {
		t.Errorf("无媒体时应为空: %v", got)
	}
}
