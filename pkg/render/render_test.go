package render

import (
	"strings"
	"testing"

	"github.com/glint-ui/glint/pkg/protocol"
)

func TestHTML(t *testing.T) {
	tests := []struct {
		name string
		node *protocol.Node
		want string
	}{
		{
			name: "nil node",
			node: nil,
			want: "",
		},
		{
			name: "empty element",
			node: protocol.El("div"),
			want: "<div></div>",
		},
		{
			name: "text node",
			node: protocol.Text("hello"),
			want: "hello",
		},
		{
			name: "element with id and props",
			node: protocol.El("span").WithID("x").WithProp("class", "big"),
			want: `<span id="x" class="big"></span>`,
		},
		{
			name: "nested children",
			node: protocol.El("ul",
				protocol.El("li", protocol.Text("one")),
				protocol.El("li", protocol.Text("two")),
			),
			want: "<ul><li>one</li><li>two</li></ul>",
		},
		{
			name: "element text content",
			node: protocol.El("p").WithText("inline"),
			want: "<p>inline</p>",
		},
		{
			name: "void element",
			node: protocol.El("input").WithProp("type", "text"),
			want: `<input type="text">`,
		},
		{
			name: "props sorted",
			node: protocol.El("a").WithProp("href", "/x").WithProp("class", "nav"),
			want: `<a class="nav" href="/x"></a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTML(tt.node); got != tt.want {
				t.Errorf("HTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscaping(t *testing.T) {
	node := protocol.El("div", protocol.Text(`<script>alert("x")</script>`)).
		WithProp("title", `a"b<c>`)
	got := HTML(node)

	if strings.Contains(got, "<script>") {
		t.Errorf("text not escaped: %s", got)
	}
	if !strings.Contains(got, `title="a&quot;b&lt;c&gt;"`) {
		t.Errorf("attr not escaped: %s", got)
	}
	if !strings.Contains(got, "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;") {
		t.Errorf("text escaping wrong: %s", got)
	}
}
