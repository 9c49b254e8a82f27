// Package feed 负责抓取订阅源并把最新条目规范化为统一记录。
package feed

import "time"

// Entry 订阅源最新条目的规范化记录。
// 每个轮询周期重新计算，所有字段独立降级到空值，单个字段解析失败不会向上传播。
type Entry struct {
	// ID 稳定标识，用于去重比较。所有来源都为空时为空字符串（降级行为）。
	ID string
	// Title 条目标题，可能为空。
	Title string
	// Link 条目链接，为空时无法做摘要兜底抓取。
	Link string
	// Published 发布时间，无法解析时为 nil。
	Published *time.Time
	// Summary 已剥离 HTML 标签的纯文本摘要，未解析到时为空字符串。
	Summary string
	// Author 作者名，为空表示缺失。
	Author string
	// MediaURLs 媒体地址，按来源顺序拼接，不去重。
	MediaURLs []string
}
