package content

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrNotFound = errors.New("content not found")

// NotFoundError 指明层级中缺失的节点
type NotFoundError struct {
	Node string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Node, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type Entry struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Href        string `json:"href"`
	HasQuiz     bool   `json:"hasQuiz,omitempty"`
}

type Crumb struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

// Page 一个列表页或详情页的数据
type Page struct {
	View        View     `json:"view"`
	Title       string   `json:"title"`
	Breadcrumbs []Crumb  `json:"breadcrumbs"`
	Items       []Entry  `json:"items,omitempty"`
	Section     *Section `json:"section,omitempty"`
	Tables      []Table  `json:"tables,omitempty"`
	QuizHref    string   `json:"quizHref,omitempty"`
}

// path 沿视图参数解析出的节点
type path struct {
	level   *Level
	week    *Week
	tag     *Tag
	section *Section
}

func walk(doc *Document, v View) (path, error) {
	var p path
	if v.Level == "" {
		return p, nil
	}
	level, ok := doc.Levels.Get(v.Level)
	if !ok {
		return p, &NotFoundError{Node: "level", Key: v.Level}
	}
	p.level = &level
	if v.Week == "" {
		return p, nil
	}
	week, ok := level.Weeks.Get(v.Week)
	if !ok {
		return p, &NotFoundError{Node: "week", Key: v.Week}
	}
	p.week = &week
	if v.Tag == "" {
		return p, nil
	}
	tag, ok := week.Tags.Get(v.Tag)
	if !ok {
		return p, &NotFoundError{Node: "tag", Key: v.Tag}
	}
	p.tag = &tag
	if v.Section == "" {
		return p, nil
	}
	idx, err := strconv.Atoi(v.Section)
	if err != nil || idx < 0 || idx >= len(tag.Sections) {
		return p, &NotFoundError{Node: "section", Key: v.Section}
	}
	p.section = &tag.Sections[idx]
	return p, nil
}

// Lookup 沿内容树解析视图，任何一级缺失都返回 *NotFoundError
func Lookup(doc *Document, v View) (*Page, error) {
	if doc == nil {
		return nil, &NotFoundError{Node: "document", Key: ""}
	}
	p, err := walk(doc, v)
	if err != nil {
		return nil, err
	}

	page := &Page{View: v, Breadcrumbs: []Crumb{{Title: "Home", Href: View{Kind: ViewHome}.Href()}}}
	if p.level != nil {
		page.Breadcrumbs = append(page.Breadcrumbs, Crumb{
			Title: titleOr(p.level.Title, v.Level),
			Href:  View{Kind: ViewWeeks, Level: v.Level}.Href(),
		})
	}
	if p.week != nil {
		page.Breadcrumbs = append(page.Breadcrumbs, Crumb{
			Title: titleOr(p.week.Title, "Week "+v.Week),
			Href:  View{Kind: ViewTags, Level: v.Level, Week: v.Week}.Href(),
		})
	}
	if p.tag != nil {
		page.Breadcrumbs = append(page.Breadcrumbs, Crumb{
			Title: titleOr(p.tag.Title, v.Tag),
			Href:  View{Kind: ViewSections, Level: v.Level, Week: v.Week, Tag: v.Tag}.Href(),
		})
	}

	switch v.Kind {
	case ViewHome:
		page.Title = "Study Materials"
		for _, k := range doc.Levels.Keys() {
			l, _ := doc.Levels.Get(k)
			page.Items = append(page.Items, Entry{
				Key: k, Title: titleOr(l.Title, k), Description: l.Description,
				Href: View{Kind: ViewWeeks, Level: k}.Href(),
			})
		}
	case ViewWeeks:
		page.Title = titleOr(p.level.Title, v.Level)
		for _, k := range p.level.Weeks.Keys() {
			w, _ := p.level.Weeks.Get(k)
			page.Items = append(page.Items, Entry{
				Key: k, Title: titleOr(w.Title, "Week "+k), Description: w.Description,
				Href: View{Kind: ViewTags, Level: v.Level, Week: k}.Href(),
			})
		}
	case ViewTags:
		page.Title = titleOr(p.week.Title, "Week "+v.Week)
		for _, k := range p.week.Tags.Keys() {
			t, _ := p.week.Tags.Get(k)
			page.Items = append(page.Items, Entry{
				Key: k, Title: titleOr(t.Title, k), Description: t.Description,
				Href: View{Kind: ViewSections, Level: v.Level, Week: v.Week, Tag: k}.Href(),
			})
		}
	case ViewSections:
		page.Title = titleOr(p.tag.Title, v.Tag)
		for i, s := range p.tag.Sections {
			key := strconv.Itoa(i)
			page.Items = append(page.Items, Entry{
				Key: key, Title: titleOr(s.Title, "Section "+key), HasQuiz: s.HasQuiz(),
				Href: View{Kind: ViewSection, Level: v.Level, Week: v.Week, Tag: v.Tag, Section: key}.Href(),
			})
		}
	case ViewSection:
		page.Title = titleOr(p.section.Title, "Section "+v.Section)
		page.Section = p.section
		page.Tables = p.section.AllTables()
		if p.section.HasQuiz() {
			page.QuizHref = View{Kind: ViewQuiz, SetKey: p.section.QuizSet}.Href()
		}
	default:
		return nil, fmt.Errorf("view %q has no content page", v.Kind)
	}
	return page, nil
}

// QuizSetFor 返回视图路径所指小节关联的题集；路径未到小节或小节无题集时返回空串
func QuizSetFor(doc *Document, v View) (string, error) {
	if doc == nil || v.Section == "" {
		return "", nil
	}
	p, err := walk(doc, v)
	if err != nil {
		return "", err
	}
	return p.section.QuizSet, nil
}

func titleOr(title, fallback string) string {
	if title != "" {
		return title
	}
	return fallback
}
