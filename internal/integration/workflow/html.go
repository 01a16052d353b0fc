package workflow

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags отделяются пробелом, чтобы слова соседних блоков не склеивались.
var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "li": {}, "ul": {}, "ol": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "tr": {}, "td": {},
}

// StripHTML превращает HTML описание вакансии из редактора в плоский текст.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF или битая разметка: возвращаем то, что успели собрать
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skip++
				} else if tt == html.EndTagToken && skip > 0 {
					skip--
				}
			}
			if _, ok := blockTags[tag]; ok {
				b.WriteByte(' ')
			}
		}
	}
}
