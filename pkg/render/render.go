// Package render turns protocol node trees into HTML for the initial page
// load. It renders a snapshot only: interactivity arrives once the client
// connects its websocket and the runtime starts pushing update commands.
package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/glint-ui/glint/pkg/protocol"
)

// HTML renders a node tree to an HTML string.
func HTML(n *protocol.Node) string {
	var buf bytes.Buffer
	WriteHTML(&buf, n)
	return buf.String()
}

// WriteHTML streams a node tree to the writer as HTML.
func WriteHTML(w io.Writer, n *protocol.Node) error {
	if n == nil {
		return nil
	}

	if n.Tag == "#text" {
		_, err := io.WriteString(w, escapeHTML(n.Text))
		return err
	}

	if _, err := fmt.Fprintf(w, "<%s", n.Tag); err != nil {
		return err
	}
	if err := writeAttrs(w, n); err != nil {
		return err
	}

	if isVoidElement(n.Tag) {
		_, err := io.WriteString(w, ">")
		return err
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if n.Text != "" {
		if _, err := io.WriteString(w, escapeHTML(n.Text)); err != nil {
			return err
		}
	}
	for _, child := range n.Children {
		if err := WriteHTML(w, child); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "</%s>", n.Tag)
	return err
}

// writeAttrs writes the id attribute first, then props in sorted order so
// output is deterministic.
func writeAttrs(w io.Writer, n *protocol.Node) error {
	if n.ID != "" {
		if _, err := fmt.Fprintf(w, ` id="%s"`, escapeAttr(n.ID)); err != nil {
			return err
		}
	}

	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, ` %s="%s"`, k, escapeAttr(n.Props[k])); err != nil {
			return err
		}
	}
	return nil
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

func isVoidElement(tag string) bool {
	return voidElements[tag]
}
