package scan

import (
	"strings"

	"github.com/aiscrub/aiscrub/internal/gitx"
)

// pathTrie indexes every path the history stream ever mentioned. Interior
// nodes are directories; a node is tracked when some commit introduced a blob
// at exactly that path. Each node remembers the first addition event seen at
// or below it, which with an oldest-first replay is the earliest introduction.
type pathTrie struct {
	root    *trieNode
	tracked int
}

type trieNode struct {
	children map[string]*trieNode
	tracked  bool
	earliest *gitx.Change
}

func newPathTrie() *pathTrie {
	return &pathTrie{root: &trieNode{}}
}

// insert records path in the universe. introduced is the commit of an
// addition event, or nil for sightings that do not introduce the path
// (renames in, modifications, deletions). The first non-nil introduction
// wins, at the leaf and at every ancestor directory on the way down.
func (t *pathTrie) insert(path string, introduced *gitx.Change) {
	if path == "" {
		return
	}
	node := t.root
	rest := path
	for {
		var seg string
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			seg, rest = rest[:i], rest[i+1:]
		} else {
			seg, rest = rest, ""
		}
		if seg == "" {
			if rest == "" {
				break
			}
			continue
		}
		child, ok := node.children[seg]
		if !ok {
			if node.children == nil {
				node.children = make(map[string]*trieNode)
			}
			child = &trieNode{}
			node.children[seg] = child
		}
		node = child
		if introduced != nil && node.earliest == nil {
			node.earliest = introduced
		}
		if rest == "" {
			break
		}
	}
	if !node.tracked {
		node.tracked = true
		t.tracked++
	}
}

func (t *pathTrie) node(path string) *trieNode {
	node := t.root
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		child, ok := node.children[seg]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// isDir reports whether any scanned path extends path + "/".
func (t *pathTrie) isDir(path string) bool {
	node := t.node(path)
	return node != nil && len(node.children) > 0
}

// earliest returns the first introduction event at or below path, nil when
// the path only ever appeared as a rename or copy target.
func (t *pathTrie) earliest(path string) *gitx.Change {
	node := t.node(path)
	if node == nil {
		return nil
	}
	return node.earliest
}

// walkTracked visits every tracked path. Visit order is unspecified; callers
// sort their own results.
func (t *pathTrie) walkTracked(fn func(path string)) {
	var walk func(prefix string, node *trieNode)
	walk = func(prefix string, node *trieNode) {
		if node.tracked {
			fn(prefix)
		}
		for seg, child := range node.children {
			p := seg
			if prefix != "" {
				p = prefix + "/" + seg
			}
			walk(p, child)
		}
	}
	walk("", t.root)
}
