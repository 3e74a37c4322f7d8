package youdao

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/at-ishikawa/ydweb/internal/dictionary"
)

// Extract reads a word page and returns its Record.
// A page without any known section yields an empty Record, not an error.
func Extract(reader io.Reader) (dictionary.Record, error) {
	doc, err := html.Parse(reader)
	if err != nil {
		return dictionary.Record{}, fmt.Errorf("html.Parse > %w", err)
	}

	return dictionary.Record{
		Basic:          basicTranslation(doc),
		Authoritative:  textOf(findFirst(doc, byID("authTrans"))),
		Extended:       textOf(findFirst(doc, byID("eTransform"))),
		Examples:       textOf(findFirst(doc, byID("examples"))),
		TypoSuggestion: textOfAll(findAll(doc, byClass("error-typo"))),
	}, nil
}

func basicTranslation(doc *html.Node) string {
	phrases := findFirst(doc, byID("phrsListTab"))
	if phrases == nil {
		return ""
	}

	parts := []string{textOfAll(findAll(phrases, byClass("wordbook-js")))}
	if container := findFirst(phrases, byClass("trans-container")); container != nil {
		parts = append(parts, textOf(findFirst(container, byAtom(atom.Ul))))
		parts = append(parts, textOf(findFirst(container, byClass("additional"))))
	}
	return joinNonEmpty(parts, "\n")
}

type matcher func(*html.Node) bool

func byID(id string) matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	}
}

func byClass(class string) matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && slices.Contains(strings.Fields(attr(n, "class")), class)
	}
}

func byAtom(a atom.Atom) matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findFirst returns the first descendant of root, in document order, that matches.
func findFirst(root *html.Node, match matcher) *html.Node {
	if root == nil {
		return nil
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if match(child) {
			return child
		}
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(root *html.Node, match matcher) []*html.Node {
	var nodes []*html.Node
	if root == nil {
		return nodes
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if match(child) {
			nodes = append(nodes, child)
			continue
		}
		nodes = append(nodes, findAll(child, match)...)
	}
	return nodes
}

var blockElements = []atom.Atom{
	atom.Address, atom.Article, atom.Br, atom.Dd, atom.Div, atom.Dl, atom.Dt,
	atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
	atom.Li, atom.Ol, atom.P, atom.Section, atom.Table, atom.Tr, atom.Ul,
}

var whitespace = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")

// textOf returns the visible text of n. Block elements start new lines and runs of
// whitespace inside a line collapse to one space.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var builder strings.Builder
	writeText(&builder, n)

	lines := strings.Split(builder.String(), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func writeText(builder *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		// Line breaks in the markup are not line breaks on the page.
		builder.WriteString(whitespace.Replace(n.Data))
		return
	case html.ElementNode:
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}
	}

	block := n.Type == html.ElementNode && slices.Contains(blockElements, n.DataAtom)
	if block {
		builder.WriteString("\n")
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		writeText(builder, child)
	}
	if block {
		builder.WriteString("\n")
	}
}

func textOfAll(nodes []*html.Node) string {
	texts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		texts = append(texts, textOf(n))
	}
	return joinNonEmpty(texts, "\n")
}

func joinNonEmpty(parts []string, separator string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, separator)
}
