// Package extract 站点适配器共用的字段抽取工具。
// 抽取失败一律表示为缺失字段（Found=false），不返回错误。
package extract

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field 单个抽取结果
type Field struct {
	Value string
	Found bool
}

// Missing 未匹配
var Missing = Field{}

// Found 非空才算找到
func Found(v string) Field {
	v = CleanText(v)
	if v == "" {
		return Missing
	}
	return Field{Value: v, Found: true}
}

// Or 缺失时返回默认值
func (f Field) Or(def string) string {
	if f.Found {
		return f.Value
	}
	return def
}

// Ptr 缺失时返回nil
func (f Field) Ptr() *string {
	if !f.Found {
		return nil
	}
	v := f.Value
	return &v
}

var spaceRe = regexp.MustCompile(`\s+`)

// CleanText 反转义HTML实体并压缩空白
func CleanText(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Submatch 取正则第group个分组
func Submatch(re *regexp.Regexp, s string, group int) Field {
	m := re.FindStringSubmatch(s)
	if m == nil || group >= len(m) {
		return Missing
	}
	return Found(m[group])
}

// entitySplitRe 拼接词：逗号（可带and）、and、西语y、&
var entitySplitRe = regexp.MustCompile(`(?i)\s*,\s*(?:and\s+)?|\s+(?:and|y)\s+|\s*&\s*`)

// SplitEntities 拆分UP对象列表，保持原顺序
func SplitEntities(text string) []string {
	text = CleanText(text)
	if text == "" {
		return nil
	}
	var out []string
	for _, part := range entitySplitRe.Split(text, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var strongRe = regexp.MustCompile(`(?is)<(?:strong|b)\b[^>]*>(.*?)</(?:strong|b)>`)
var tagRe = regexp.MustCompile(`<[^>]+>`)

// StrongTexts 按出现顺序取出片段中所有加粗文本
func StrongTexts(fragment string) []string {
	var out []string
	for _, m := range strongRe.FindAllStringSubmatch(fragment, -1) {
		if v := CleanText(tagRe.ReplaceAllString(m[1], "")); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// StrongEntities 加粗文本再按拼接词拆分，"<strong>A and B</strong>" 得到 A、B
func StrongEntities(fragment string) []string {
	var out []string
	for _, s := range StrongTexts(fragment) {
		out = append(out, SplitEntities(s)...)
	}
	return out
}

// Paragraph 找到包含marker的段落，按marker切分为前后两段原始HTML
func Paragraph(markup, marker string) (before, after string, ok bool) {
	lower := strings.ToLower(markup)
	i := strings.Index(lower, strings.ToLower(marker))
	if i < 0 {
		return "", "", false
	}
	start := strings.LastIndex(lower[:i], "<p")
	if start < 0 {
		start = 0
	}
	end := len(markup)
	tail := i + len(marker)
	if j := strings.Index(lower[tail:], "</p>"); j >= 0 {
		end = tail + j
	}
	return markup[start:i], markup[tail:end], true
}

// Document 解析HTML；goquery 对残缺HTML很宽容，只有读取失败才报错
func Document(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// PlainText 文档纯文本（已压缩空白），日期类字段统一在纯文本上匹配
func PlainText(doc *goquery.Document) string {
	return CleanText(doc.Text())
}

// SelectionText 选择器结果的文本
func SelectionText(sel *goquery.Selection) Field {
	if sel.Length() == 0 {
		return Missing
	}
	return Found(sel.Text())
}

// ListItems 解析片段中的 <li> 文本
func ListItems(fragment string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}
	var items []string
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		if v := CleanText(s.Text()); v != "" {
			items = append(items, v)
		}
	})
	return items
}

var cssURLRe = regexp.MustCompile(`(?i)url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

// CSSBackgroundURL 从内联style中取 url(...)
func CSSBackgroundURL(style string) Field {
	return Submatch(cssURLRe, html.UnescapeString(style), 1)
}
