package template

import (
	"fmt"
	"strings"

	"github.com/dukex/formflow/pkg/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TokenMatching controls how Decode recognises token markers by element id.
type TokenMatching int

const (
	// MatchLoose treats any element id containing 's', 'u' or 'd' as a token.
	MatchLoose TokenMatching = iota
	// MatchStrict only accepts ids of the form [sud]<digits>.
	MatchStrict
)

func (m TokenMatching) recognises(id string) bool {
	if id == "" {
		return false
	}

	if m == MatchStrict {
		return models.IsTokenID(id)
	}

	return strings.ContainsAny(id, "sud")
}

var blockElements = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Pre:        true,
	atom.Blockquote: true,
}

// Decode converts editable markup back to canonical text using loose token matching.
func Decode(editable string) (string, error) {
	return decode(editable, MatchLoose)
}

func decode(editable string, matching TokenMatching) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

	nodes, err := html.ParseFragment(strings.NewReader(editable), body)
	if err != nil {
		return "", fmt.Errorf("failed to parse editable content: %w", err)
	}

	blocks := splitBlocks(nodes)

	lines := make([]string, 0, len(blocks))
	for _, block := range blocks {
		var line strings.Builder

		for _, child := range block {
			if id := elementID(child); matching.recognises(id) {
				line.WriteString("${" + id + "}")

				continue
			}

			line.WriteString(textContent(child))
		}

		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n"), nil
}

// splitBlocks groups top-level nodes into blocks the way the editing surface does:
// block elements stand alone, runs of inline nodes form an implicit block and a
// top-level line break closes the current implicit block.
func splitBlocks(nodes []*html.Node) [][]*html.Node {
	var (
		blocks  [][]*html.Node
		current []*html.Node
		open    bool
	)

	for _, node := range nodes {
		switch {
		case node.Type == html.ElementNode && node.DataAtom == atom.Br:
			blocks = append(blocks, current)
			current = nil
			open = true
		case node.Type == html.ElementNode && blockElements[node.DataAtom]:
			if open {
				blocks = append(blocks, current)
			}

			blocks = append(blocks, children(node))
			current = nil
			open = false
		default:
			current = append(current, node)
			open = true
		}
	}

	if open {
		blocks = append(blocks, current)
	}

	return blocks
}

func children(node *html.Node) []*html.Node {
	var out []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		out = append(out, child)
	}

	return out
}

func elementID(node *html.Node) string {
	if node.Type != html.ElementNode {
		return ""
	}

	for _, attr := range node.Attr {
		if attr.Key == "id" {
			return attr.Val
		}
	}

	return ""
}

func textContent(node *html.Node) string {
	switch node.Type {
	case html.TextNode:
		return node.Data
	case html.ElementNode:
		var b strings.Builder
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			b.WriteString(textContent(child))
		}

		return b.String()
	default:
		return ""
	}
}
