// Package trending 按近期使用量与信任分对工具排序
package trending

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrInvalidPeriod 不支持的时间窗口
var ErrInvalidPeriod = errors.New("invalid trending period")

// Period 时间窗口
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod 解析时间窗口，空字符串视为 week
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	case "":
		return PeriodWeek, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// Days 窗口天数
func (p Period) Days() int {
	switch p {
	case PeriodDay:
		return 1
	case PeriodMonth:
		return 30
	default:
		return 7
	}
}

// Since 窗口起点
func (p Period) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.Days())
}

// Event 使用事件
type Event struct {
	ToolID    string
	Timestamp time.Time
}

// ToolStats 排序所需的工具字段
type ToolStats struct {
	ID            string
	TotalScore    int
	DownloadCount int64
	Category      string
}

// Query 排序参数
type Query struct {
	Period   Period
	Limit    int
	Category string
}

// Entry 排序结果
type Entry struct {
	ToolID        string `json:"toolId"`
	TrendingScore int    `json:"trendingScore"`
	RecentUsage   int    `json:"recentUsage"`
}

// OverFetch 分类过滤前至少要取的候选数量
func OverFetch(limit int) int {
	if limit <= 0 {
		return 0
	}
	return 2 * limit
}

// CountSince 统计窗口内每个工具的事件数
func CountSince(events []Event, since time.Time) map[string]int {
	usage := make(map[string]int)
	for _, e := range events {
		if e.Timestamp.Before(since) {
			continue
		}
		usage[e.ToolID]++
	}
	return usage
}

// RankEvents 从原始事件直接计算排行
func RankEvents(events []Event, tools []ToolStats, q Query, now time.Time) []Entry {
	return Rank(CountSince(events, q.Period.Since(now)), tools, q)
}

// Rank 计算排行
//
// usage 为空时退化为按信任分排序；否则只考虑 usage 中出现的工具，
// trendingScore = 近期使用量 + 信任分。分类过滤在使用量聚合之后进行。
func Rank(usage map[string]int, tools []ToolStats, q Query) []Entry {
	if q.Limit <= 0 {
		return []Entry{}
	}
	if len(usage) == 0 {
		return fallback(tools, q)
	}

	seen := make(map[string]bool, len(tools))
	entries := make([]Entry, 0, len(usage))
	for _, t := range tools {
		count, ok := usage[t.ID]
		if !ok || seen[t.ID] {
			continue
		}
		if q.Category != "" && t.Category != q.Category {
			continue
		}
		seen[t.ID] = true
		entries = append(entries, Entry{
			ToolID:        t.ID,
			TrendingScore: count + t.TotalScore,
			RecentUsage:   count,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TrendingScore != b.TrendingScore {
			return a.TrendingScore > b.TrendingScore
		}
		if a.RecentUsage != b.RecentUsage {
			return a.RecentUsage > b.RecentUsage
		}
		return a.ToolID < b.ToolID
	})
	return truncate(entries, q.Limit)
}

// fallback 冷启动：按信任分、下载量排序
func fallback(tools []ToolStats, q Query) []Entry {
	candidates := make([]ToolStats, 0, len(tools))
	seen := make(map[string]bool, len(tools))
	for _, t := range tools {
		if seen[t.ID] {
			continue
		}
		if q.Category != "" && t.Category != q.Category {
			continue
		}
		seen[t.ID] = true
		candidates = append(candidates, t)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.DownloadCount != b.DownloadCount {
			return a.DownloadCount > b.DownloadCount
		}
		return a.ID < b.ID
	})

	entries := make([]Entry, 0, len(candidates))
	for _, t := range candidates {
		entries = append(entries, Entry{ToolID: t.ID, TrendingScore: t.TotalScore})
	}
	return truncate(entries, q.Limit)
}

func truncate(entries []Entry, limit int) []Entry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
