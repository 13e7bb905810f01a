package content

import (
	"net/url"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  View
	}{
		{"empty", "", View{Kind: ViewHome}},
		{"level", "level=A1", View{Kind: ViewWeeks, Level: "A1"}},
		{"scenario D", "level=A1&week=1", View{Kind: ViewTags, Level: "A1", Week: "1"}},
		{"tag", "level=A1&week=1&tag=tag-1", View{Kind: ViewSections, Level: "A1", Week: "1", Tag: "tag-1"}},
		{"section", "level=A1&week=1&tag=tag-1&section=0",
			View{Kind: ViewSection, Level: "A1", Week: "1", Tag: "tag-1", Section: "0"}},
		{"gap falls back", "level=A1&tag=tag-1&section=2", View{Kind: ViewWeeks, Level: "A1"}},
		{"no level", "week=1&tag=tag-1", View{Kind: ViewHome}},
		{"blank values", "level=%20&week=1", View{Kind: ViewHome}},
		{"scenario E", "set=tag-1", View{Kind: ViewQuiz, SetKey: "tag-1"}},
		{"set wins over hierarchy", "set=tag-1&level=A1&week=1&view=home",
			View{Kind: ViewQuiz, SetKey: "tag-1", Level: "A1", Week: "1"}},
		{"view=quiz without set", "view=quiz&level=A1&week=1&tag=t&section=3",
			View{Kind: ViewQuiz, Level: "A1", Week: "1", Tag: "t", Section: "3"}},
		{"view=QUIZ", "view=QUIZ", View{Kind: ViewQuiz}},
		{"other view ignored", "view=study&level=B1", View{Kind: ViewWeeks, Level: "B1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if got := Resolve(q); got != tt.want {
				t.Fatalf("Resolve(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestViewHrefRoundTrip(t *testing.T) {
	views := []View{
		{Kind: ViewHome},
		{Kind: ViewTags, Level: "A1", Week: "2"},
		{Kind: ViewSection, Level: "A1", Week: "2", Tag: "tag-3", Section: "1"},
		{Kind: ViewQuiz, SetKey: "tag-3"},
	}
	for _, v := range views {
		q, err := url.ParseQuery(v.Href()[1:])
		if err != nil {
			t.Fatal(err)
		}
		if got := Resolve(q); got != v {
			t.Errorf("Resolve(%s) = %+v, want %+v", v.Href(), got, v)
		}
	}
}
