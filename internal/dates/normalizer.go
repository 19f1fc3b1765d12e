// Package dates 把来源站点上不带年份的自然语言日期解析为绝对时间（UTC）。
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Mode 年份推断策略
type Mode int

const (
	// FutureBiased 默认当年，若结果早于 now-2个月 则顺延到下一年
	FutureBiased Mode = iota
	// PastAllowed 一律取当年（用于"本期结束时间"，相对发文时间可能像过去）
	PastAllowed
)

func (m Mode) String() string {
	if m == PastAllowed {
		return "past_allowed"
	}
	return "future_biased"
}

// DefaultReferenceHour 无时刻的日期统一按服务器时间10:00
const DefaultReferenceHour = 10

// rollbackMonths 超出该窗口的"过去日期"视为明年
const rollbackMonths = 2

// DateParseError 无法识别的日期文本
type DateParseError struct {
	Text string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("无法解析日期: %q", e.Text)
}

var (
	// Tuesday 23rd December
	dayMonthRe = regexp.MustCompile(`(?i)^\s*([a-z]+day)\s*,?\s+(\d{1,2})(?:st|nd|rd|th)\s+([a-z]+)\.?\s*$`)
	// Wednesday, December 23 at 5:00 AM EST
	monthDayTimeRe = regexp.MustCompile(`(?i)^\s*([a-z]+day),\s+([a-z]+)\.?\s+(\d{1,2})\s+at\s+(\d{1,2}):(\d{2})\s*(AM|PM)\s+([a-z]+)\s*$`)
	// December 23, 2025
	monthDayYearRe = regexp.MustCompile(`(?i)^\s*([a-z]+)\.?\s+(\d{1,2}),\s*(\d{4})\s*$`)
)

var weekdays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

// zoneOffsets 来源站点常见时区缩写（小时）
var zoneOffsets = map[string]int{
	"UTC": 0, "GMT": 0,
	"EST": -5, "EDT": -4,
	"CST": -6, "CDT": -5,
	"MST": -7, "MDT": -6,
	"PST": -8, "PDT": -7,
	"CET": 1, "CEST": 2,
}

// Normalizer 日期解析器，时钟与时区可注入
type Normalizer struct {
	Location      *time.Location
	ReferenceHour int
	Now           func() time.Time
}

// NewNormalizer loc 为空时使用 UTC
func NewNormalizer(loc *time.Location, referenceHour int) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{
		Location:      loc,
		ReferenceHour: referenceHour,
		Now:           time.Now,
	}
}

// Normalize 解析日期文本，返回UTC时间
func (n *Normalizer) Normalize(text string, mode Mode) (time.Time, error) {
	now := n.Now().In(n.Location)

	if m := dayMonthRe.FindStringSubmatch(text); m != nil {
		month, ok := parseMonth(m[3])
		if !ok || !isWeekday(m[1]) {
			return time.Time{}, &DateParseError{Text: text}
		}
		day, _ := strconv.Atoi(m[2])
		t, ok := n.resolveYear(now, mode, month, day, n.ReferenceHour, 0, n.Location)
		if !ok {
			return time.Time{}, &DateParseError{Text: text}
		}
		return t.UTC(), nil
	}

	if m := monthDayTimeRe.FindStringSubmatch(text); m != nil {
		month, ok := parseMonth(m[2])
		if !ok || !isWeekday(m[1]) {
			return time.Time{}, &DateParseError{Text: text}
		}
		day, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		if hour < 1 || hour > 12 || minute > 59 {
			return time.Time{}, &DateParseError{Text: text}
		}
		hour = to24Hour(hour, strings.ToUpper(m[6]))
		loc := n.zone(m[7])
		t, ok := n.resolveYear(now, mode, month, day, hour, minute, loc)
		if !ok {
			return time.Time{}, &DateParseError{Text: text}
		}
		return t.UTC(), nil
	}

	if m := monthDayYearRe.FindStringSubmatch(text); m != nil {
		month, ok := parseMonth(m[1])
		if !ok {
			return time.Time{}, &DateParseError{Text: text}
		}
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		t := time.Date(year, month, day, n.ReferenceHour, 0, 0, 0, n.Location)
		if t.Day() != day {
			return time.Time{}, &DateParseError{Text: text}
		}
		return t.UTC(), nil
	}

	return time.Time{}, &DateParseError{Text: text}
}

// resolveYear 按模式推断年份；日期不存在（如2月30日）时返回false
func (n *Normalizer) resolveYear(now time.Time, mode Mode, month time.Month, day, hour, minute int, loc *time.Location) (time.Time, bool) {
	t := time.Date(now.Year(), month, day, hour, minute, 0, 0, loc)
	if mode == FutureBiased && t.Before(now.AddDate(0, -rollbackMonths, 0)) {
		t = time.Date(now.Year()+1, month, day, hour, minute, 0, 0, loc)
	}
	// time.Date 会把溢出的日期滚到下个月
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func (n *Normalizer) zone(abbr string) *time.Location {
	abbr = strings.ToUpper(abbr)
	if off, ok := zoneOffsets[abbr]; ok {
		return time.FixedZone(abbr, off*3600)
	}
	return n.Location
}

func to24Hour(hour int, ampm string) int {
	switch {
	case ampm == "PM" && hour != 12:
		return hour + 12
	case ampm == "AM" && hour == 12:
		return 0
	}
	return hour
}

func isWeekday(s string) bool {
	_, ok := weekdays[strings.ToLower(s)]
	return ok
}

// parseMonth 支持完整英文月份和三字母缩写
func parseMonth(s string) (time.Month, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if s == name || s == name[:3] || (s == "sept" && m == time.September) {
			return m, true
		}
	}
	return 0, false
}
