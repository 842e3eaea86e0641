package protocol

import "fmt"

// CommandKind is the type of update command.
type CommandKind uint8

// Update command constants. Each command targets exactly one element on the
// remote side; the runtime never validates target existence.
const (
	CmdReplace     CommandKind = 0x01 // Replace target's subtree with Node
	CmdAppend      CommandKind = 0x02 // Append Node as target's last child
	CmdPrepend     CommandKind = 0x03 // Insert Node as target's first child
	CmdRemove      CommandKind = 0x04 // Remove target element
	CmdUpdateProps CommandKind = 0x05 // Merge Props into target's props
	CmdUpdateText  CommandKind = 0x06 // Set target's text content
	CmdAppendProp  CommandKind = 0x07 // Append Text to the prop named Key
)

// String returns the string representation of the command kind.
func (k CommandKind) String() string {
	switch k {
	case CmdReplace:
		return "Replace"
	case CmdAppend:
		return "Append"
	case CmdPrepend:
		return "Prepend"
	case CmdRemove:
		return "Remove"
	case CmdUpdateProps:
		return "UpdateProps"
	case CmdUpdateText:
		return "UpdateText"
	case CmdAppendProp:
		return "AppendProp"
	default:
		return "Unknown"
	}
}

// Command is one imperative instruction for the remote renderer.
//
// Payload fields by kind:
//
//	Replace, Append, Prepend  -> Node, Seq
//	Remove                    -> none
//	UpdateProps               -> Props
//	UpdateText                -> Text, Seq
//	AppendProp                -> Key, Text, Seq
type Command struct {
	Kind   CommandKind
	Target string
	Node   *Node
	Props  map[string]string
	Key    string
	Text   string

	// Seq orders chunks within one stream. Zero means unsequenced; the
	// remote side applies sequenced chunks in Seq order regardless of
	// network reordering.
	Seq uint64
}

// UpdateFrame wraps a single command with the channel sequence number.
type UpdateFrame struct {
	ChannelSeq uint64
	Command    Command
}

// EncodeUpdate encodes an update frame payload.
func EncodeUpdate(uf *UpdateFrame) []byte {
	e := NewEncoder()
	e.WriteUvarint(uf.ChannelSeq)
	encodeCommand(e, &uf.Command)
	return e.Bytes()
}

func encodeCommand(e *Encoder, c *Command) {
	e.WriteByte(byte(c.Kind))
	e.WriteString(c.Target)

	switch c.Kind {
	case CmdReplace, CmdAppend, CmdPrepend:
		EncodeNode(e, c.Node)
		e.WriteUvarint(c.Seq)

	case CmdRemove:
		// Target is sufficient

	case CmdUpdateProps:
		e.WriteUvarint(uint64(len(c.Props)))
		for k, v := range c.Props {
			e.WriteString(k)
			e.WriteString(v)
		}

	case CmdUpdateText:
		e.WriteString(c.Text)
		e.WriteUvarint(c.Seq)

	case CmdAppendProp:
		e.WriteString(c.Key)
		e.WriteString(c.Text)
		e.WriteUvarint(c.Seq)
	}
}

// DecodeUpdate decodes an update frame payload.
func DecodeUpdate(data []byte) (*UpdateFrame, error) {
	d := NewDecoder(data)

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	uf := &UpdateFrame{ChannelSeq: seq}
	if err := decodeCommand(d, &uf.Command); err != nil {
		return nil, err
	}
	return uf, nil
}

func decodeCommand(d *Decoder, c *Command) error {
	kindByte, err := d.ReadByte()
	if err != nil {
		return err
	}
	c.Kind = CommandKind(kindByte)

	if c.Target, err = d.ReadString(); err != nil {
		return err
	}

	switch c.Kind {
	case CmdReplace, CmdAppend, CmdPrepend:
		if c.Node, err = DecodeNode(d); err != nil {
			return err
		}
		c.Seq, err = d.ReadUvarint()

	case CmdRemove:
		// No additional data

	case CmdUpdateProps:
		var count int
		count, err = d.readCount()
		if err != nil {
			return err
		}
		if count > 0 {
			c.Props = make(map[string]string, count)
			for i := 0; i < count; i++ {
				var k, v string
				if k, err = d.ReadString(); err != nil {
					return err
				}
				if v, err = d.ReadString(); err != nil {
					return err
				}
				c.Props[k] = v
			}
		}

	case CmdUpdateText:
		if c.Text, err = d.ReadString(); err != nil {
			return err
		}
		c.Seq, err = d.ReadUvarint()

	case CmdAppendProp:
		if c.Key, err = d.ReadString(); err != nil {
			return err
		}
		if c.Text, err = d.ReadString(); err != nil {
			return err
		}
		c.Seq, err = d.ReadUvarint()

	default:
		return fmt.Errorf("protocol: unknown command kind 0x%02x", kindByte)
	}

	return err
}

// NewReplace creates a Replace command.
func NewReplace(target string, node *Node) Command {
	return Command{Kind: CmdReplace, Target: target, Node: node}
}

// NewAppend creates an Append command.
func NewAppend(target string, node *Node) Command {
	return Command{Kind: CmdAppend, Target: target, Node: node}
}

// NewPrepend creates a Prepend command.
func NewPrepend(target string, node *Node) Command {
	return Command{Kind: CmdPrepend, Target: target, Node: node}
}

// NewRemove creates a Remove command.
func NewRemove(target string) Command {
	return Command{Kind: CmdRemove, Target: target}
}

// NewUpdateProps creates an UpdateProps command.
func NewUpdateProps(target string, props map[string]string) Command {
	return Command{Kind: CmdUpdateProps, Target: target, Props: props}
}

// NewUpdateText creates an UpdateText command.
func NewUpdateText(target, text string) Command {
	return Command{Kind: CmdUpdateText, Target: target, Text: text}
}

// NewAppendProp creates an AppendProp command carrying one stream chunk.
func NewAppendProp(target, key, text string, seq uint64) Command {
	return Command{Kind: CmdAppendProp, Target: target, Key: key, Text: text, Seq: seq}
}
