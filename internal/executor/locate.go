package executor

import (
	"strings"
)

// Selectors is the data the default locators are built from. The Stream
// chapter editor is owned by someone else and changes without notice, so
// every piece of it can be overridden.
type Selectors struct {
	Video  string `json:"video"`
	Button string `json:"button"`

	// AddChapterPhrases are matched case-insensitively against button text
	// and aria-label
	AddChapterPhrases []string `json:"addChapterPhrases"`
	AddChapterIcon    string   `json:"addChapterIcon"`

	TitleBox string `json:"titleBox"`

	SaveIcon          string `json:"saveIcon"`
	SaveAncestorDepth int    `json:"saveAncestorDepth"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		Video:             "video",
		Button:            "button",
		AddChapterPhrases: []string{"yeni bölüm", "new chapter"},
		AddChapterIcon:    `i[data-icon-name="Add"]`,
		TitleBox:          `textarea[data-automation-id^="OnePlayer-Chaptering-ChapterTitleEdit"]`,
		SaveIcon:          `i[data-icon-name="CheckMark"]`,
		SaveAncestorDepth: 10,
	}
}

// Strategy finds one element. anchor is the element found by the previous
// step, or nil. A nil Node with a nil error means "no match, try the next".
type Strategy struct {
	Name   string
	Locate func(doc Document, anchor Node) (Node, error)
}

// Chain is an ordered fallback list of strategies
type Chain []Strategy

// Find runs the strategies in order and returns the first hit together
// with the name of the strategy that produced it
func (c Chain) Find(doc Document, anchor Node) (Node, string, error) {
	for _, s := range c {
		n, err := s.Locate(doc, anchor)
		if err != nil {
			return nil, s.Name, err
		}
		if n != nil {
			return n, s.Name, nil
		}
	}
	return nil, "", nil
}

// Locators holds one chain per element the executor needs
type Locators struct {
	Video      Chain
	AddChapter Chain
	TitleBox   Chain
	Save       Chain
}

func NewLocators(s Selectors) Locators {
	return Locators{
		Video: Chain{FirstMatch("video-element", s.Video)},
		AddChapter: Chain{
			ButtonMatching("add-chapter-button", s.Button,
				TextContains(s.AddChapterPhrases...),
				LabelContains(s.AddChapterPhrases...),
				HasDescendant(s.AddChapterIcon),
			),
		},
		TitleBox: Chain{FirstMatch("title-textarea", s.TitleBox)},
		Save: Chain{
			AncestorIconButton("save-near-title", s.SaveIcon, s.Button, s.SaveAncestorDepth),
			LastVisibleIconButton("save-last-visible", s.SaveIcon, s.Button),
		},
	}
}

// FirstMatch takes the first element matching selector
func FirstMatch(name, selector string) Strategy {
	return Strategy{
		Name: name,
		Locate: func(doc Document, _ Node) (Node, error) {
			return doc.Query(selector)
		},
	}
}

// ButtonPredicate decides whether a candidate button is the one wanted
type ButtonPredicate func(Node) (bool, error)

// ButtonMatching takes the first element matching selector, in document
// order, for which any predicate holds
func ButtonMatching(name, selector string, preds ...ButtonPredicate) Strategy {
	return Strategy{
		Name: name,
		Locate: func(doc Document, _ Node) (Node, error) {
			candidates, err := doc.QueryAll(selector)
			if err != nil {
				return nil, err
			}
			for _, c := range candidates {
				for _, pred := range preds {
					ok, err := pred(c)
					if err != nil {
						return nil, err
					}
					if ok {
						return c, nil
					}
				}
			}
			return nil, nil
		},
	}
}

func TextContains(phrases ...string) ButtonPredicate {
	return func(n Node) (bool, error) {
		text, err := n.Text()
		if err != nil {
			return false, err
		}
		return containsAny(text, phrases), nil
	}
}

func LabelContains(phrases ...string) ButtonPredicate {
	return func(n Node) (bool, error) {
		label, err := n.Attr("aria-label")
		if err != nil {
			return false, err
		}
		return containsAny(label, phrases), nil
	}
}

func HasDescendant(selector string) ButtonPredicate {
	return func(n Node) (bool, error) {
		if selector == "" {
			return false, nil
		}
		hit, err := n.Query(selector)
		if err != nil {
			return false, err
		}
		return hit != nil, nil
	}
}

func containsAny(s string, phrases []string) bool {
	s = strings.ToLower(s)
	for _, p := range phrases {
		if p != "" && strings.Contains(s, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// AncestorIconButton walks up to depth ancestors of the anchor looking for
// an icon that sits inside a button
func AncestorIconButton(name, icon, button string, depth int) Strategy {
	return Strategy{
		Name: name,
		Locate: func(_ Document, anchor Node) (Node, error) {
			cur := anchor
			for i := 0; i < depth && cur != nil; i++ {
				parent, err := cur.Parent()
				if err != nil {
					return nil, err
				}
				if parent == nil {
					return nil, nil
				}
				cur = parent

				hit, err := cur.Query(icon)
				if err != nil {
					return nil, err
				}
				if hit == nil {
					continue
				}
				btn, err := Closest(hit, button)
				if err != nil {
					return nil, err
				}
				if btn != nil {
					return btn, nil
				}
			}
			return nil, nil
		},
	}
}

// LastVisibleIconButton takes the button around the last visible icon in
// the whole document
func LastVisibleIconButton(name, icon, button string) Strategy {
	return Strategy{
		Name: name,
		Locate: func(doc Document, _ Node) (Node, error) {
			icons, err := doc.QueryAll(icon)
			if err != nil {
				return nil, err
			}
			var last Node
			for _, i := range icons {
				visible, err := i.Visible()
				if err != nil {
					return nil, err
				}
				if visible {
					last = i
				}
			}
			if last == nil {
				return nil, nil
			}
			return Closest(last, button)
		},
	}
}
