package testreport

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Node is a generic attributed element tree built before any typed mapping
type Node struct {
	Name     string
	Attrs    map[string]string
	Nodes    []*Node
	Text     string
	hasAttrs bool
}

// Attr returns the named attribute and whether it was present
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// HasAttrs reports whether the element carried any attributes
func (n *Node) HasAttrs() bool {
	return n != nil && n.hasAttrs
}

// Children returns every direct child with the given tag. The result is
// always a sequence, whether the tag occurs zero, one or many times.
func (n *Node) Children(tag string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Nodes {
		if c.Name == tag {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first direct child with the given tag, or nil
func (n *Node) Child(tag string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Nodes {
		if c.Name == tag {
			return c
		}
	}
	return nil
}

// parseTree tokenizes r into a single-rooted Node tree
func parseTree(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = true

	var root *Node
	var stack []*Node
	var text []*strings.Builder

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Reason: "failed to decode XML", Cause: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && root != nil {
				return nil, &MalformedInputError{Reason: "multiple root elements"}
			}
			node := &Node{
				Name:     t.Name.Local,
				Attrs:    make(map[string]string, len(t.Attr)),
				hasAttrs: len(t.Attr) > 0,
			}
			for _, a := range t.Attr {
				node.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Nodes = append(parent.Nodes, node)
			}
			stack = append(stack, node)
			text = append(text, &strings.Builder{})

		case xml.EndElement:
			node := stack[len(stack)-1]
			node.Text = strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, &MalformedInputError{Reason: "text outside of the root element"}
				}
				continue
			}
			text[len(text)-1].Write(t)
		}
	}

	if root == nil {
		return nil, &MalformedInputError{Reason: "no root element"}
	}
	return root, nil
}
