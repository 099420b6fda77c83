package browser

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/v0xg/streamchapters/internal/executor"
)

// NewDocument exposes a Rod page as the executor's page-query capability.
// Queries never wait: a missing element is reported as nil right away.
func NewDocument(page *rod.Page) executor.Document {
	return &document{page: page}
}

type document struct {
	page *rod.Page
}

func (d *document) Query(selector string) (executor.Node, error) {
	has, el, err := d.page.Has(selector)
	if err != nil || !has {
		return nil, err
	}
	return &node{el: el}, nil
}

func (d *document) QueryAll(selector string) ([]executor.Node, error) {
	els, err := d.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrap(els), nil
}

type node struct {
	el *rod.Element
}

func wrap(els rod.Elements) []executor.Node {
	out := make([]executor.Node, len(els))
	for i, el := range els {
		out[i] = &node{el: el}
	}
	return out
}

func (n *node) Text() (string, error) {
	return n.el.Text()
}

func (n *node) Attr(name string) (string, error) {
	v, err := n.el.Attribute(name)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

func (n *node) Query(selector string) (executor.Node, error) {
	has, el, err := n.el.Has(selector)
	if err != nil || !has {
		return nil, err
	}
	return &node{el: el}, nil
}

func (n *node) QueryAll(selector string) ([]executor.Node, error) {
	els, err := n.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrap(els), nil
}

func (n *node) Parent() (executor.Node, error) {
	obj, err := n.el.Evaluate(rod.Eval(`() => this.parentElement`).ByObject())
	if err != nil {
		return nil, err
	}
	if obj.Subtype == proto.RuntimeRemoteObjectSubtypeNull || obj.ObjectID == "" {
		return nil, nil
	}
	el, err := n.el.Page().ElementFromObject(obj)
	if err != nil {
		return nil, err
	}
	return &node{el: el}, nil
}

func (n *node) Matches(selector string) (bool, error) {
	return n.el.Matches(selector)
}

func (n *node) Visible() (bool, error) {
	res, err := n.el.Eval(`() => this.offsetParent !== null`)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (n *node) Click() error {
	_, err := n.el.Eval(`() => this.click()`)
	return err
}

func (n *node) Seek(seconds float64) error {
	_, err := n.el.Eval(`(t) => { this.currentTime = t }`, seconds)
	return err
}

func (n *node) Focus() error {
	_, err := n.el.Eval(`() => { this.focus(); this.click() }`)
	return err
}

// The title box is a controlled textarea. A plain .value assignment is lost
// on the next render, so the prototype setter is used and input/change fire.
const writeValueJS = `(v) => {
	const proto = this instanceof HTMLTextAreaElement
		? HTMLTextAreaElement.prototype
		: HTMLInputElement.prototype;
	const setter = Object.getOwnPropertyDescriptor(proto, 'value').set;
	setter.call(this, v);
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
	this.blur();
}`

func (n *node) WriteValue(value string) error {
	_, err := n.el.Eval(writeValueJS, value)
	return err
}
