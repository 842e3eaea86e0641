package protocol

import "errors"

// MaxNodeDepth limits tree nesting during decode to prevent stack
// exhaustion from hostile payloads.
const MaxNodeDepth = 64

// ErrNodeTooDeep is returned when a decoded tree exceeds MaxNodeDepth.
var ErrNodeTooDeep = errors.New("protocol: node tree too deep")

// Node is the wire form of a rendered subtree. The runtime treats it as
// opaque data produced by page functions and component code: it is
// transmitted, never diffed, server-side.
type Node struct {
	Tag      string            `json:"tag"`
	ID       string            `json:"id,omitempty"`
	Text     string            `json:"text,omitempty"`
	Props    map[string]string `json:"props,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// El builds a Node with the given tag and children.
func El(tag string, children ...*Node) *Node {
	return &Node{Tag: tag, Children: children}
}

// Text builds a text-only Node.
func Text(s string) *Node {
	return &Node{Tag: "#text", Text: s}
}

// WithID sets the element id and returns the node for chaining.
func (n *Node) WithID(id string) *Node {
	n.ID = id
	return n
}

// WithText sets the text content and returns the node for chaining.
func (n *Node) WithText(s string) *Node {
	n.Text = s
	return n
}

// WithProp sets a single prop and returns the node for chaining.
func (n *Node) WithProp(key, value string) *Node {
	if n.Props == nil {
		n.Props = make(map[string]string)
	}
	n.Props[key] = value
	return n
}

// Append adds children and returns the node for chaining.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// EncodeNode encodes a node tree. A nil node encodes as a zero marker.
func EncodeNode(e *Encoder, n *Node) {
	if n == nil {
		e.WriteBool(false)
		return
	}
	e.WriteBool(true)
	e.WriteString(n.Tag)
	e.WriteString(n.ID)
	e.WriteString(n.Text)
	e.WriteUvarint(uint64(len(n.Props)))
	for k, v := range n.Props {
		e.WriteString(k)
		e.WriteString(v)
	}
	e.WriteUvarint(uint64(len(n.Children)))
	for _, child := range n.Children {
		EncodeNode(e, child)
	}
}

// DecodeNode decodes a node tree.
func DecodeNode(d *Decoder) (*Node, error) {
	return decodeNodeDepth(d, 0)
}

func decodeNodeDepth(d *Decoder, depth int) (*Node, error) {
	if depth > MaxNodeDepth {
		return nil, ErrNodeTooDeep
	}

	present, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}

	n := &Node{}
	if n.Tag, err = d.ReadString(); err != nil {
		return nil, err
	}
	if n.ID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if n.Text, err = d.ReadString(); err != nil {
		return nil, err
	}

	propCount, err := d.readCount()
	if err != nil {
		return nil, err
	}
	if propCount > 0 {
		n.Props = make(map[string]string, propCount)
		for i := 0; i < propCount; i++ {
			k, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			v, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			n.Props[k] = v
		}
	}

	childCount, err := d.readCount()
	if err != nil {
		return nil, err
	}
	for i := 0; i < childCount; i++ {
		child, err := decodeNodeDepth(d, depth+1)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}

	return n, nil
}

// TreeFrame is a full-tree push: the initial page load over the socket and
// every in-place navigation use it.
type TreeFrame struct {
	Route string `json:"route"`
	Root  *Node  `json:"root"`
}

// EncodeTree encodes a tree frame payload.
func EncodeTree(tf *TreeFrame) []byte {
	e := NewEncoder()
	e.WriteString(tf.Route)
	EncodeNode(e, tf.Root)
	return e.Bytes()
}

// DecodeTree decodes a tree frame payload.
func DecodeTree(data []byte) (*TreeFrame, error) {
	d := NewDecoder(data)
	route, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	root, err := DecodeNode(d)
	if err != nil {
		return nil, err
	}
	return &TreeFrame{Route: route, Root: root}, nil
}
