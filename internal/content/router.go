package content

import (
	"net/url"
	"strings"
)

type ViewKind string

const (
	ViewHome     ViewKind = "home"
	ViewWeeks    ViewKind = "weeks"
	ViewTags     ViewKind = "tags"
	ViewSections ViewKind = "sections"
	ViewSection  ViewKind = "section"
	ViewQuiz     ViewKind = "quiz"
)

// URL 查询参数
const (
	ParamSet     = "set"
	ParamView    = "view"
	ParamLevel   = "level"
	ParamWeek    = "week"
	ParamTag     = "tag"
	ParamSection = "section"
)

// View 路由结果。Quiz 视图同时保留层级参数，
// 以便未给出 set 时从小节的 quizSet 推出题集。
type View struct {
	Kind    ViewKind `json:"kind"`
	Level   string   `json:"level,omitempty"`
	Week    string   `json:"week,omitempty"`
	Tag     string   `json:"tag,omitempty"`
	Section string   `json:"section,omitempty"`
	SetKey  string   `json:"set,omitempty"`
}

// Resolve 把查询参数映射为视图。view=quiz 或带 set 参数时强制为测验视图；
// 否则取 level/week/tag/section 中最深的连续参数链。
func Resolve(q url.Values) View {
	get := func(k string) string { return strings.TrimSpace(q.Get(k)) }

	chain := [4]string{get(ParamLevel), get(ParamWeek), get(ParamTag), get(ParamSection)}
	depth := 0
	for depth < len(chain) && chain[depth] != "" {
		depth++
	}
	v := View{}
	// 参数链断开处之后的参数忽略
	if depth > 0 {
		v.Level = chain[0]
	}
	if depth > 1 {
		v.Week = chain[1]
	}
	if depth > 2 {
		v.Tag = chain[2]
	}
	if depth > 3 {
		v.Section = chain[3]
	}

	set := get(ParamSet)
	if set != "" || strings.EqualFold(get(ParamView), string(ViewQuiz)) {
		v.Kind = ViewQuiz
		v.SetKey = set
		return v
	}

	switch depth {
	case 0:
		v.Kind = ViewHome
	case 1:
		v.Kind = ViewWeeks
	case 2:
		v.Kind = ViewTags
	case 3:
		v.Kind = ViewSections
	default:
		v.Kind = ViewSection
	}
	return v
}

// Query 生成指向该视图的查询参数
func (v View) Query() url.Values {
	q := url.Values{}
	set := func(k, val string) {
		if val != "" {
			q.Set(k, val)
		}
	}
	set(ParamLevel, v.Level)
	set(ParamWeek, v.Week)
	set(ParamTag, v.Tag)
	set(ParamSection, v.Section)
	if v.Kind == ViewQuiz {
		q.Set(ParamView, string(ViewQuiz))
		set(ParamSet, v.SetKey)
	}
	return q
}

// Href 形如 "?level=A1&week=1"
func (v View) Href() string {
	q := v.Query()
	if len(q) == 0 {
		return "?"
	}
	return "?" + q.Encode()
}
