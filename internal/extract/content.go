package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Selectors for the publisher's release template.
const (
	topicsSelector   = ".col-1 .seo-h4-seemorereleases"
	languageSelector = `meta[http-equiv="Content-Language"]`
	titleSelector    = "#dvHead"

	// cruftSelector lists site chrome stripped from the content container before rendering.
	cruftSelector = "script, style, .newsreldettrans, .horizontalline, .clearboth, #dvWideRelease, #linktopagetop"
)

var linkAttrs = []string{"href", "src", "action"}

var (
	horizontalSpace = regexp.MustCompile(`[\t ]+`)
	trailingBlank   = regexp.MustCompile(`(?m)\s{2,}$`)
)

// Content is what the template yields before dateline and source parsing.
type Content struct {
	Title    string
	Topics   string
	Language string
	Text     string

	// Container is a cleaned copy of the content container; the document is left intact.
	Container *goquery.Selection
}

// ExtractContent pulls the structural fields out of a release page.
// It rewrites relative links in doc to absolute ones using baseURL and
// fails when the title, language metadata or topics container is missing.
func ExtractContent(doc *goquery.Document, baseURL string) (Content, error) {
	makeLinksAbsolute(doc.Selection, baseURL)

	topics, err := extractTopics(doc)
	if err != nil {
		return Content{}, err
	}

	meta := doc.Find(languageSelector).First()
	if meta.Length() == 0 {
		return Content{}, ErrMissingLanguageMetadata
	}
	lang, _ := meta.Attr("content")

	head := doc.Find(titleSelector).First()
	if head.Length() == 0 {
		return Content{}, ErrMissingTitle
	}

	container := head.Parent().Clone()
	container.Find(cruftSelector).Remove()

	return Content{
		Title:     strings.TrimSpace(head.Text()),
		Topics:    topics,
		Language:  strings.ToLower(strings.TrimSpace(lang)),
		Text:      normalizeText(renderText(container.Nodes...)),
		Container: container,
	}, nil
}

// extractTopics collects the title attribute of every link in the related-topics box.
func extractTopics(doc *goquery.Document) (string, error) {
	box := doc.Find(topicsSelector).First()
	if box.Length() == 0 {
		return "", ErrMissingTopicsContainer
	}

	seen := make(map[string]struct{})
	var topics []string
	box.ChildrenFiltered("a").Each(func(_ int, a *goquery.Selection) {
		title, _ := a.Attr("title")
		topic := strings.ReplaceAll(strings.TrimSpace(title), ",", "")
		if topic == "" {
			return
		}
		if _, dup := seen[topic]; dup {
			return
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
	})
	return strings.Join(topics, ","), nil
}

func makeLinksAbsolute(root *goquery.Selection, baseURL string) {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return
	}
	for _, attr := range linkAttrs {
		root.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			raw, _ := s.Attr(attr)
			s.SetAttr(attr, resolveURL(raw, base))
		})
	}
}

// resolveURL resolves a possibly relative URL against base. Unparseable
// values and fragment-only or script links are returned untouched.
func resolveURL(raw string, base *url.URL) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return raw
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}
	return base.ResolveReference(parsed).String()
}

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Blockquote: true, atom.Center: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Fieldset: true,
	atom.Figure: true, atom.Footer: true, atom.Form: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true,
	atom.Hr: true, atom.Li: true, atom.Ol: true, atom.P: true, atom.Pre: true,
	atom.Section: true, atom.Table: true, atom.Tr: true, atom.Ul: true,
}

// renderText linearizes nodes into plain text, breaking lines at block elements.
// Table cells are separated by a tab so figures stay on one line.
func renderText(nodes ...*html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.CommentNode, html.DoctypeNode:
			return
		case html.ElementNode:
			if n.DataAtom == atom.Br {
				b.WriteByte('\n')
				return
			}
		}

		block := n.Type == html.ElementNode && blockElements[n.DataAtom]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		switch {
		case block:
			b.WriteByte('\n')
		case n.DataAtom == atom.Td || n.DataAtom == atom.Th:
			b.WriteByte('\t')
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String()
}

// normalizeText collapses horizontal whitespace runs and blank line runs.
func normalizeText(s string) string {
	s = horizontalSpace.ReplaceAllString(s, " ")
	return trailingBlank.ReplaceAllString(s, "\n")
}
