// Package discord 负责把规范化条目格式化为 Discord embed 消息并投递到 Webhook。
package discord

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ppNutt/discordnewsfeednotifier/internal/feed"
)

const (
	// embedColor 固定的中性蓝色。
	embedColor = 4886754
	// footerText 固定的页脚标签。
	footerText = "Feed Monitor"

	// 字段缺失时的占位文案。
	placeholderDescription = "(No description available)"
	placeholderTitle       = "New feed entry"

	// maxDescriptionLen 描述长度上限（按字符计），超出时在
	// truncateAt 处截断并回退到空白边界。
	maxDescriptionLen = 2000
	truncateAt        = 1997

	// maxExtraImages 主 embed 之外的附加图片数量上限。
	maxExtraImages = 3
)

// Message Webhook 消息体，包含 1-4 个展示块。
type Message struct {
	Embeds []Embed `json:"embeds"`
}

// Embed 单个展示块。附加图片块只带 Image 字段。
type Embed struct {
	Title       string  `json:"title,omitempty"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
	Author      *Author `json:"author,omitempty"`
	Image       *Image  `json:"image,omitempty"`
}

// Footer embed 页脚。
type Footer struct {
	Text string `json:"text"`
}

// Author embed 作者块。
type Author struct {
	Name string `json:"name"`
}

// Image embed 图片引用。
type Image struct {
	URL string `json:"url"`
}

// BuildMessage 把条目格式化为 Webhook 消息。
// 纯函数，没有失败路径：每个字段缺失时都有安全默认值。
func BuildMessage(e feed.Entry) *Message {
	main := Embed{
		Title:       e.Title,
		URL:         e.Link,
		Description: formatDescription(e.Summary),
		Color:       embedColor,
		Footer:      &Footer{Text: footerText},
	}
	if main.Title == "" {
		main.Title = placeholderTitle
	}
	if e.Published != nil {
		main.Timestamp = e.Published.Format(time.RFC3339)
	}
	if e.Author != "" {
		main.Author = &Author{Name: e.Author}
	}

	// 第一张图片挂在主 embed 上
	if len(e.MediaURLs) > 0 {
		main.Image = &Image{URL: e.MediaURLs[0]}
	}

	msg := &Message{Embeds: []Embed{main}}

	// 其余图片各占一个独立 embed，最多 3 张，更多的静默丢弃
	if len(e.MediaURLs) > 1 {
		extra := e.MediaURLs[1:]
		if len(extra) > maxExtraImages {
			extra = extra[:maxExtraImages]
		}
		for _, u := range extra {
			msg.Embeds = append(msg.Embeds, Embed{Image: &Image{URL: u}})
		}
	}

	return msg
}

// formatDescription 生成描述文本：去掉首尾空白，空摘要用占位文案，
// 超长时截断。
func formatDescription(summary string) string {
	desc := strings.TrimSpace(summary)
	if desc == "" {
		desc = placeholderDescription
	}
	return truncate(desc)
}

// truncate 把超过上限的文本截到 truncateAt 个字符，再回退到最近的
// 空白边界（不把词截成两半），最后追加省略号。
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxDescriptionLen {
		return s
	}
	runes := []rune(s)[:truncateAt]
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			runes = runes[:i]
			break
		}
	}
	return string(runes) + "..."
}
