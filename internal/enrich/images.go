// Package enrich 角色名→立绘地址的静态查表。
package enrich

import (
	"strings"

	"golang.org/x/text/cases"
)

// defaultImages 人工维护的立绘表，配置为空时使用
var defaultImages = map[string]string{
	// 原神
	"varesa":  "https://static.wikia.nocookie.net/gensin-impact/images/8/8c/Varesa_Card.png",
	"xilonen": "https://static.wikia.nocookie.net/gensin-impact/images/d/d5/Xilonen_Card.png",
	"mavuika": "https://static.wikia.nocookie.net/gensin-impact/images/a/a5/Mavuika_Card.png",
	"citlali": "https://static.wikia.nocookie.net/gensin-impact/images/c/c5/Citlali_Card.png",
	"durin":   "https://static.wikia.nocookie.net/gensin-impact/images/d/d0/Durin_Card.png",
	"venti":   "https://static.wikia.nocookie.net/gensin-impact/images/7/76/Venti_Card.png",
	"jahoda":  "https://static.wikia.nocookie.net/gensin-impact/images/j/ja/Jahoda_Card.png",
	// 崩坏：星穹铁道
	"the dahlia": "https://static.wikia.nocookie.net/houkai-star-rail/images/5/5d/Character_The_Dahlia_Card.png",
	"anaxa":      "https://static.wikia.nocookie.net/houkai-star-rail/images/a/a5/Character_Anaxa_Card.png",
	"firefly":    "https://static.wikia.nocookie.net/houkai-star-rail/images/f/f8/Character_Firefly_Card.png",
}

// ImageTable 只读查表，构造后不再修改，可并发使用
type ImageTable struct {
	images map[string]string
}

// NewImageTable 拷贝传入的表；entries 为空时使用内置表
func NewImageTable(entries map[string]string) *ImageTable {
	if len(entries) == 0 {
		entries = defaultImages
	}
	t := &ImageTable{images: make(map[string]string, len(entries))}
	for name, url := range entries {
		if url = strings.TrimSpace(url); url != "" {
			t.images[key(name)] = url
		}
	}
	return t
}

// key 去空格 + Unicode大小写折叠
func key(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Lookup 精确匹配（忽略大小写和首尾空格）
func (t *ImageTable) Lookup(name string) (string, bool) {
	url, ok := t.images[key(name)]
	return url, ok
}

// Resolve 查不到时回退到 fallback（页面背景图或nil）
func (t *ImageTable) Resolve(name string, fallback *string) *string {
	if url, ok := t.Lookup(name); ok {
		return &url
	}
	return fallback
}

// Len 条目数
func (t *ImageTable) Len() int {
	return len(t.images)
}
