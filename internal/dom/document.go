// Package dom holds the live HTML document the filter works on, together
// with subtree mutation observation.
//
// A Document is owned by a loop.Scheduler: every method must be called from
// callbacks running on that scheduler. Observers are notified in batches;
// all records produced within one scheduler turn reach an observer as a
// single call.
package dom

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/clockedin/internal/loop"
	"golang.org/x/net/html"
)

var (
	ErrDetached   = errors.New("node is not attached to the document")
	ErrNotElement = errors.New("node is not an element")
)

// MutationType mirrors the record types a browser reports. Only structural
// changes are tracked.
type MutationType string

const ChildList MutationType = "childList"

// Mutation is one structural change under Target.
type Mutation struct {
	Type    MutationType
	Target  *html.Node
	Added   []*html.Node
	Removed []*html.Node
}

type observer struct {
	target  *html.Node
	fn      func([]Mutation)
	records []Mutation
	active  bool
}

// Document is a parsed page plus its registered observers.
type Document struct {
	root      *html.Node
	sched     loop.Scheduler
	observers []*observer
	pending   bool
}

// Parse reads an HTML page. Batches are delivered through sched.
func Parse(r io.Reader, sched loop.Scheduler) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{root: root, sched: sched}, nil
}

func ParseString(page string, sched loop.Scheduler) (*Document, error) {
	return Parse(strings.NewReader(page), sched)
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Selection wraps the whole document for goquery traversal.
func (d *Document) Selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(d.root).Selection
}

// Find runs selector against the whole document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.Selection().Find(selector)
}

// First returns the first element matched by the earliest selector in
// selectors that matches anything, or nil.
func (d *Document) First(selectors ...string) *html.Node {
	sel := d.Selection()
	for _, selector := range selectors {
		if match := sel.Find(selector).First(); match.Length() > 0 {
			return match.Get(0)
		}
	}
	return nil
}

// Attached reports whether n is still part of the document tree.
func (d *Document) Attached(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == d.root {
			return true
		}
	}
	return false
}

// Remove detaches n from its parent. Removing a detached node is a no-op
// and reports false.
func (d *Document) Remove(n *html.Node) bool {
	if n == nil || n.Parent == nil {
		return false
	}
	parent := n.Parent
	parent.RemoveChild(n)
	d.record(Mutation{Type: ChildList, Target: parent, Removed: []*html.Node{n}})
	return true
}

// Append parses fragment in the context of parent and appends the result
// to it, the way a page inserts freshly rendered markup.
func (d *Document) Append(parent *html.Node, fragment string) ([]*html.Node, error) {
	if parent == nil || parent.Type != html.ElementNode {
		return nil, ErrNotElement
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	if len(nodes) > 0 {
		d.record(Mutation{Type: ChildList, Target: parent, Added: nodes})
	}
	return nodes, nil
}

// Replace swaps old for the nodes parsed from fragment. Observers of old
// keep pointing at the detached subtree.
func (d *Document) Replace(old *html.Node, fragment string) ([]*html.Node, error) {
	if old == nil || old.Parent == nil {
		return nil, ErrDetached
	}
	parent := old.Parent
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		parent.InsertBefore(n, old)
	}
	parent.RemoveChild(old)
	d.record(Mutation{Type: ChildList, Target: parent, Added: nodes, Removed: []*html.Node{old}})
	return nodes, nil
}

// Observe registers fn for child list changes anywhere under target. The
// returned cancel stops delivery, including records already queued.
func (d *Document) Observe(target *html.Node, fn func([]Mutation)) func() {
	o := &observer{target: target, fn: fn, active: true}
	d.observers = append(d.observers, o)
	return func() {
		if !o.active {
			return
		}
		o.active = false
		o.records = nil
		for i, cur := range d.observers {
			if cur == o {
				d.observers = append(d.observers[:i], d.observers[i+1:]...)
				break
			}
		}
	}
}

// Observers returns how many observers are registered.
func (d *Document) Observers() int {
	return len(d.observers)
}

// Render writes the current tree as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// HTML returns the current tree as a string.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (d *Document) record(m Mutation) {
	queued := false
	for _, o := range d.observers {
		if !o.active || !contains(o.target, m.Target) {
			continue
		}
		o.records = append(o.records, m)
		queued = true
	}
	if !queued || d.pending {
		return
	}
	d.pending = true
	d.sched.Post(d.deliver)
}

func (d *Document) deliver() {
	d.pending = false
	observers := append([]*observer(nil), d.observers...)
	for _, o := range observers {
		if !o.active || len(o.records) == 0 {
			continue
		}
		records := o.records
		o.records = nil
		o.fn(records)
	}
}

// contains reports whether ancestor is n or one of its parents.
func contains(ancestor, n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}
