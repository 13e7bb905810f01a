package content

import (
	"encoding/json"
	"fmt"

	"vocab_quiz_backend/internal/util"
)

// SectionTypeTable 直接在小节上给出 columns/rows 的扁平表格
const SectionTypeTable = "simple-table"

// Document 内容层级：Level → Week → Tag → Section
type Document struct {
	Levels util.OrderedMap[Level] `json:"levels"`
}

type Level struct {
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Weeks       util.OrderedMap[Week] `json:"weeks"`
}

type Week struct {
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Tags        util.OrderedMap[Tag] `json:"tags"`
}

type Tag struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Sections    []Section `json:"sections"`
}

// Section 学习材料小节，可以挂一组表格，也可以通过 QuizSet 指向一个题集
type Section struct {
	Title   string     `json:"title"`
	Type    string     `json:"type,omitempty"`
	QuizSet string     `json:"quizSet,omitempty"`
	Tables  []Table    `json:"tables,omitempty"`
	Columns []string   `json:"columns,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

type Table struct {
	Title   string     `json:"title,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// AllTables 返回小节的全部表格，扁平 columns/rows 折叠为第一张表
func (s Section) AllTables() []Table {
	out := make([]Table, 0, len(s.Tables)+1)
	if len(s.Columns) > 0 {
		out = append(out, Table{Title: s.Title, Columns: s.Columns, Rows: s.Rows})
	}
	return append(out, s.Tables...)
}

// HasQuiz 小节是否关联题集
func (s Section) HasQuiz() bool { return s.QuizSet != "" }

// Parse 解析内容文档
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse content document: %w", err)
	}
	return &doc, nil
}
