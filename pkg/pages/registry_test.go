package pages

import (
	"reflect"
	"testing"

	"github.com/glint-ui/glint/pkg/protocol"
)

type fakeSession struct {
	data  map[string]any
	route string
}

func (f *fakeSession) Get(key string) any { return f.data[key] }
func (f *fakeSession) GetDefault(key string, def any) any {
	if v, ok := f.data[key]; ok {
		return v
	}
	return def
}
func (f *fakeSession) Set(key string, value any) { f.data[key] = value }
func (f *fakeSession) CurrentRoute() string      { return f.route }

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.Register("/todos", func(s Session) *protocol.Node {
		return protocol.El("main").WithID("page-root")
	})

	fn, ok := r.Lookup("/todos")
	if !ok {
		t.Fatal("Lookup(/todos) not found")
	}

	tree := fn(&fakeSession{data: map[string]any{}})
	if tree.ID != "page-root" {
		t.Errorf("rendered root id = %q, want page-root", tree.ID)
	}

	if _, ok := r.Lookup("/missing"); ok {
		t.Error("Lookup(/missing) should not be found")
	}
}

func TestRegistryReplace(t *testing.T) {
	r := NewRegistry()
	r.Register("/", func(s Session) *protocol.Node { return protocol.El("div") })
	r.Register("/", func(s Session) *protocol.Node { return protocol.El("span") })

	fn, _ := r.Lookup("/")
	if tree := fn(&fakeSession{}); tree.Tag != "span" {
		t.Errorf("tag = %q, want span (later registration wins)", tree.Tag)
	}
}

func TestRegistryRoutes(t *testing.T) {
	r := NewRegistry()
	r.Register("/b", func(s Session) *protocol.Node { return nil })
	r.Register("/a", func(s Session) *protocol.Node { return nil })

	if got := r.Routes(); !reflect.DeepEqual(got, []string{"/a", "/b"}) {
		t.Errorf("Routes() = %v, want [/a /b]", got)
	}
}
