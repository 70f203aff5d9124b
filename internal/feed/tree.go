package feed

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

type node struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*node

	// content holds n's own character data and its children in document order.
	content []segment
}

// segment is either a run of character data or a child element.
type segment struct {
	data  string
	child *node
}

// buildTree decodes the whole document. Any syntax error aborts the parse.
func buildTree(text string) (*node, error) {
	d := xml.NewDecoder(strings.NewReader(text))
	d.Strict = true
	d.Entity = xml.HTMLEntity
	// The text was already decoded to UTF-8 by the fetcher, whatever the prolog claims.
	d.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	var root *node
	var stack []*node

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name, attrs: t.Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("xml: multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
				parent.content = append(parent.content, segment{child: n})
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				n := stack[len(stack)-1]
				n.content = append(n.content, segment{data: string(t)})
			}
		}
	}

	if root == nil {
		return nil, errors.New("xml: no root element")
	}
	return root, nil
}

func (n *node) local() string {
	return strings.ToLower(n.name.Local)
}

// child returns the first direct child named local, preferring one in n's namespace.
func (n *node) child(local string) *node {
	var fallback *node
	for _, c := range n.children {
		if !strings.EqualFold(c.name.Local, local) {
			continue
		}
		if c.name.Space == n.name.Space {
			return c
		}
		if fallback == nil {
			fallback = c
		}
	}
	return fallback
}

// text joins the character data of n and all its descendants in document order.
func (n *node) text() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *node) writeText(sb *strings.Builder) {
	for _, seg := range n.content {
		if seg.child != nil {
			seg.child.writeText(sb)
			continue
		}
		sb.WriteString(seg.data)
	}
}

func (n *node) childText(local string) string {
	if c := n.child(local); c != nil {
		return c.text()
	}
	return ""
}

// firstText returns the text of the first listed child that has non-empty text.
func (n *node) firstText(locals ...string) string {
	for _, local := range locals {
		if t := n.childText(local); t != "" {
			return t
		}
	}
	return ""
}

func (n *node) childrenNamed(local string) []*node {
	var out []*node
	for _, c := range n.children {
		if strings.EqualFold(c.name.Local, local) {
			out = append(out, c)
		}
	}
	return out
}

// descendants collects every node below n named local, in document order.
func (n *node) descendants(local string) []*node {
	var out []*node
	var walk func(*node)
	walk = func(cur *node) {
		for _, c := range cur.children {
			if strings.EqualFold(c.name.Local, local) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func (n *node) attr(local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
