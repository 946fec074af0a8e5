package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

// candidateSpans lists script bodies mentioning name, followed by the whole
// document as a last resort.
func candidateSpans(doc, name string) []string {
	spans := make([]string, 0, 2)
	z := html.NewTokenizer(strings.NewReader(doc))
	inScript := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return append(spans, doc)
		case html.StartTagToken:
			tag, _ := z.TagName()
			inScript = string(tag) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			// Script content is raw text; the tokenizer does not unescape it.
			if body := string(z.Text()); strings.Contains(body, name) {
				spans = append(spans, body)
			}
		}
	}
}

// Title returns the trimmed page <title>, falling back to og:title.
func Title(doc string) string {
	node, err := html.Parse(strings.NewReader(doc))
	if err != nil || node == nil {
		return ""
	}
	if head := findFirst(node, "head"); head != nil {
		if t := findFirst(head, "title"); t != nil && t.FirstChild != nil {
			if s := strings.TrimSpace(t.FirstChild.Data); s != "" {
				return s
			}
		}
	}
	var title string
	walk(node, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "meta" {
			return true
		}
		if attr(n, "property") == "og:title" {
			title = strings.TrimSpace(attr(n, "content"))
			return false
		}
		return true
	})
	return title
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	walk(n, func(cur *html.Node) bool {
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return false
		}
		return true
	})
	return res
}

// walk visits nodes depth-first until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
