package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_FirstHitWins(t *testing.T) {
	a := el("a", nil)
	b := el("b", nil)
	doc := newDoc(a, b)

	var calls []string
	miss := Strategy{Name: "miss", Locate: func(Document, Node) (Node, error) {
		calls = append(calls, "miss")
		return nil, nil
	}}
	chain := Chain{miss, FirstMatch("find-b", "b"), FirstMatch("find-a", "a")}

	n, name, err := chain.Find(doc, nil)

	require.NoError(t, err)
	assert.Same(t, b, n)
	assert.Equal(t, "find-b", name)
	assert.Equal(t, []string{"miss"}, calls)
}

func TestChain_ErrorStopsTheChain(t *testing.T) {
	doc := &fakeDoc{root: el("html", nil), err: errDetached}
	chain := Chain{FirstMatch("broken", "video"), FirstMatch("never", "video")}

	n, name, err := chain.Find(doc, nil)

	assert.Nil(t, n)
	assert.Equal(t, "broken", name)
	assert.ErrorIs(t, err, errDetached)
}

func TestAncestorIconButton_RespectsDepth(t *testing.T) {
	title := el("textarea", nil)
	save := el("button", nil, el("i", map[string]string{"data-icon-name": "CheckMark"}))
	// title -> d1 -> d2 -> d3, where d3 holds the save button
	el("div", nil, el("div", nil, el("div", nil, title)), save)

	near := AncestorIconButton("near", `i[data-icon-name="CheckMark"]`, "button", 2)
	far := AncestorIconButton("far", `i[data-icon-name="CheckMark"]`, "button", 3)

	n, err := near.Locate(nil, title)
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = far.Locate(nil, title)
	require.NoError(t, err)
	assert.Same(t, save, n)
}

func TestAncestorIconButton_NilAnchor(t *testing.T) {
	s := AncestorIconButton("x", "i", "button", 10)
	n, err := s.Locate(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestClosest(t *testing.T) {
	icon := el("i", nil)
	span := el("span", nil, icon)
	btn := el("button", nil, span)
	el("div", nil, btn)

	got, err := Closest(icon, "button")
	require.NoError(t, err)
	assert.Same(t, btn, got)

	got, err = Closest(btn, "button")
	require.NoError(t, err)
	assert.Same(t, btn, got)

	got, err = Closest(icon, "textarea")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestContainsAny_CaseInsensitive(t *testing.T) {
	assert.True(t, containsAny("Yeni BÖLÜM ekle", []string{"yeni bölüm"}))
	assert.True(t, containsAny("NEW CHAPTER", []string{"", "new chapter"}))
	assert.False(t, containsAny("Share", []string{"new chapter"}))
	assert.False(t, containsAny("anything", []string{""}))
}
