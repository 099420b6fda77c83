package executor

// Document is the query capability the executor needs from a live page.
// Query returns a nil Node, not an error, when nothing matches.
type Document interface {
	Query(selector string) (Node, error)
	QueryAll(selector string) ([]Node, error)
}

// Node is one element of the page
type Node interface {
	// Text is the rendered text (innerText)
	Text() (string, error)
	// Attr returns "" when the attribute is absent
	Attr(name string) (string, error)
	Query(selector string) (Node, error)
	QueryAll(selector string) ([]Node, error)
	// Parent returns nil at the document root
	Parent() (Node, error)
	Matches(selector string) (bool, error)
	// Visible reports whether the element takes part in layout (offsetParent != null)
	Visible() (bool, error)

	// Click dispatches a DOM click on the element
	Click() error
	// Seek sets currentTime on a media element
	Seek(seconds float64) error
	// Focus focuses and clicks the element
	Focus() error
	// WriteValue sets the value through the native property setter, fires
	// bubbling input and change events, then blurs
	WriteValue(value string) error
}

// Closest returns n or its nearest ancestor matching selector
func Closest(n Node, selector string) (Node, error) {
	for cur := n; cur != nil; {
		ok, err := cur.Matches(selector)
		if err != nil {
			return nil, err
		}
		if ok {
			return cur, nil
		}
		next, err := cur.Parent()
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return nil, nil
}
