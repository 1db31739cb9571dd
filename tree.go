package formskema

import (
	"sort"

	json "github.com/goccy/go-json"
)

// Entry is one position of an error List. It is a Message, a nested Tree, a
// List of messages gathered at a single array index, or nil for a position
// without errors.
type Entry interface{ isEntry() }

// Message is a human-readable error message.
type Message string

// List holds the errors recorded for one field key. For array-typed fields
// positions line up with the indexes of the validated value.
type List []Entry

// Tree maps field keys to their errors. An empty Tree means "no errors".
type Tree map[string]List

func (Message) isEntry() {}
func (List) isEntry()    {}
func (Tree) isEntry()    {}

// Has reports whether key has at least one recorded error.
func (t Tree) Has(key string) bool { return !emptyList(t[key]) }

// Keys returns the keys of t in ascending order.
func (t Tree) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON renders the tree as {"key": ["msg", {...}, null]}.
func (t Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]List(t))
}

// MarshalJSON keeps nil slots so indexes stay aligned on the wire.
func (l List) MarshalJSON() ([]byte, error) {
	out := make([]any, len(l))
	for i, e := range l {
		if e != nil {
			out[i] = e
		}
	}
	return json.Marshal(out)
}

// Merge combines two error entries recorded for the same key or index.
// Neither side is modified and nothing recorded by either side is dropped.
// Two trees are merged with MergeTrees. Anything else becomes one flat List:
// messages in order, with every tree folded into the first tree of the
// result, so the grouping of successive merges does not matter.
func Merge(a, b Entry) Entry {
	switch {
	case emptyEntry(a) && emptyEntry(b):
		return nil
	case emptyEntry(b):
		return a
	case emptyEntry(a):
		return b
	}
	at, aTree := a.(Tree)
	bt, bTree := b.(Tree)
	if aTree && bTree {
		return MergeTrees(at, bt)
	}
	items := flatten(nil, a)
	for _, e := range flatten(nil, b) {
		if t, ok := e.(Tree); ok {
			if i := firstTree(items); i >= 0 {
				items[i] = MergeTrees(items[i].(Tree), t)
				continue
			}
		}
		items = append(items, e)
	}
	if len(items) == 1 {
		return items[0]
	}
	return items
}

func flatten(out List, e Entry) List {
	switch v := e.(type) {
	case List:
		for _, it := range v {
			out = flatten(out, it)
		}
	default:
		if !emptyEntry(e) {
			out = append(out, e)
		}
	}
	return out
}

func firstTree(l List) int {
	for i, e := range l {
		if _, ok := e.(Tree); ok {
			return i
		}
	}
	return -1
}

// MergeTrees returns the union of a and b; keys present on both sides are
// combined with MergeLists.
func MergeTrees(a, b Tree) Tree {
	if len(a) == 0 && len(b) == 0 {
		return Tree{}
	}
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make(Tree, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if cur, ok := out[k]; ok {
			out[k] = MergeLists(cur, v)
			continue
		}
		out[k] = v
	}
	return out
}

// MergeLists combines two lists recorded for the same key.
//
// Two message lists are concatenated, a first. Any other list is treated as
// per-index (array of nested schema errors) and merged element-wise: two
// trees at the same index are shallow-merged with b winning per key,
// otherwise b's entry wins when present, else a's. Empty positions stay nil
// and trailing empty positions are dropped.
func MergeLists(a, b List) List {
	switch {
	case emptyList(a) && emptyList(b):
		return nil
	case emptyList(b):
		return a
	case emptyList(a):
		return b
	}
	if messageList(a) && messageList(b) {
		out := make(List, 0, len(a)+len(b))
		out = append(out, a...)
		return append(out, b...)
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(List, n)
	for i := 0; i < n; i++ {
		x, y := at(a, i), at(b, i)
		xt, xTree := x.(Tree)
		yt, yTree := y.(Tree)
		var merged Entry
		switch {
		case xTree && yTree:
			merged = shallowMerge(xt, yt)
		case !emptyEntry(y):
			merged = y
		default:
			merged = x
		}
		if !emptyEntry(merged) {
			out[i] = merged
		}
	}
	for len(out) > 0 && out[len(out)-1] == nil {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func shallowMerge(a, b Tree) Tree {
	out := make(Tree, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if !emptyList(v) {
			out[k] = v
		}
	}
	return out
}

func at(l List, i int) Entry {
	if i < len(l) {
		return l[i]
	}
	return nil
}

func emptyEntry(e Entry) bool {
	switch v := e.(type) {
	case nil:
		return true
	case Tree:
		return len(v) == 0
	case List:
		return emptyList(v)
	}
	return false
}

func emptyList(l List) bool {
	for _, e := range l {
		if !emptyEntry(e) {
			return false
		}
	}
	return true
}

// messagesOnly reports whether e is a Message or a List made only of messages.
func messagesOnly(e Entry) bool {
	switch v := e.(type) {
	case Message:
		return true
	case List:
		return messageList(v)
	}
	return false
}

func messageList(l List) bool {
	for _, e := range l {
		if e == nil || !messagesOnly(e) {
			return false
		}
	}
	return true
}

// setAt returns a copy of l whose position i holds Merge(l[i], e).
func setAt(l List, i int, e Entry) List {
	n := len(l)
	if i >= n {
		n = i + 1
	}
	out := make(List, n)
	copy(out, l)
	out[i] = Merge(out[i], e)
	return out
}
