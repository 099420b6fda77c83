package executor

import (
	"errors"
	"strings"
)

// fakeNode is a tiny in-memory DOM. Selectors understood: `tag`,
// `tag[attr="v"]` and `tag[attr^="v"]`.
type fakeNode struct {
	tag      string
	attrs    map[string]string
	text     string
	hidden   bool
	parent   *fakeNode
	children []*fakeNode

	clicks      int
	focused     int
	value       string
	currentTime float64

	onClick func()
	err     error
	panicOn string
}

func el(tag string, attrs map[string]string, children ...*fakeNode) *fakeNode {
	n := &fakeNode{tag: tag, attrs: attrs}
	for _, c := range children {
		n.append(c)
	}
	return n
}

func (n *fakeNode) withText(s string) *fakeNode {
	n.text = s
	return n
}

func (n *fakeNode) hide() *fakeNode {
	n.hidden = true
	return n
}

func (n *fakeNode) append(c *fakeNode) {
	c.parent = n
	n.children = append(n.children, c)
}

func (n *fakeNode) descendants() []*fakeNode {
	var out []*fakeNode
	for _, c := range n.children {
		out = append(out, c)
		out = append(out, c.descendants()...)
	}
	return out
}

type selector struct {
	tag, attr, op, val string
}

func parseSelector(s string) selector {
	open := strings.Index(s, "[")
	if open < 0 {
		return selector{tag: s}
	}
	sel := selector{tag: s[:open]}
	body := strings.TrimSuffix(s[open+1:], "]")
	if i := strings.Index(body, "^="); i >= 0 {
		sel.attr, sel.op, sel.val = body[:i], "^=", body[i+2:]
	} else if i := strings.Index(body, "="); i >= 0 {
		sel.attr, sel.op, sel.val = body[:i], "=", body[i+1:]
	} else {
		sel.attr = body
	}
	sel.val = strings.Trim(sel.val, `"'`)
	return sel
}

func (n *fakeNode) matches(s string) bool {
	sel := parseSelector(s)
	if sel.tag != "" && sel.tag != n.tag {
		return false
	}
	if sel.attr == "" {
		return true
	}
	v, ok := n.attrs[sel.attr]
	switch sel.op {
	case "=":
		return ok && v == sel.val
	case "^=":
		return ok && strings.HasPrefix(v, sel.val)
	default:
		return ok
	}
}

func (n *fakeNode) check(op string) error {
	if n.panicOn == op {
		panic("boom in " + op)
	}
	return n.err
}

func (n *fakeNode) Text() (string, error) {
	if err := n.check("text"); err != nil {
		return "", err
	}
	parts := []string{n.text}
	for _, c := range n.children {
		t, _ := c.Text()
		parts = append(parts, t)
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

func (n *fakeNode) Attr(name string) (string, error) {
	return n.attrs[name], n.check("attr")
}

func (n *fakeNode) Query(s string) (Node, error) {
	if err := n.check("query"); err != nil {
		return nil, err
	}
	for _, d := range n.descendants() {
		if d.matches(s) {
			return d, nil
		}
	}
	return nil, nil
}

func (n *fakeNode) QueryAll(s string) ([]Node, error) {
	var out []Node
	for _, d := range n.descendants() {
		if d.matches(s) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (n *fakeNode) Parent() (Node, error) {
	if n.parent == nil {
		return nil, nil
	}
	return n.parent, nil
}

func (n *fakeNode) Matches(s string) (bool, error) {
	return n.matches(s), nil
}

func (n *fakeNode) Visible() (bool, error) {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.hidden {
			return false, nil
		}
	}
	return true, nil
}

func (n *fakeNode) Click() error {
	if err := n.check("click"); err != nil {
		return err
	}
	n.clicks++
	if n.onClick != nil {
		n.onClick()
	}
	return nil
}

func (n *fakeNode) Seek(seconds float64) error {
	if err := n.check("seek"); err != nil {
		return err
	}
	n.currentTime = seconds
	return nil
}

func (n *fakeNode) Focus() error {
	n.focused++
	return n.check("focus")
}

func (n *fakeNode) WriteValue(v string) error {
	if err := n.check("write"); err != nil {
		return err
	}
	n.value = v
	return nil
}

// fakeDoc queries below a synthetic root
type fakeDoc struct {
	root *fakeNode
	err  error
}

func newDoc(children ...*fakeNode) *fakeDoc {
	return &fakeDoc{root: el("html", nil, children...)}
}

func (d *fakeDoc) Query(s string) (Node, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.root.Query(s)
}

func (d *fakeDoc) QueryAll(s string) ([]Node, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.root.QueryAll(s)
}

var errDetached = errors.New("Execution context was destroyed")
