package prefixrouter

import synerrors "github.com/xavier-caroff/synapse/errors"

// trieNode is one node of the deterministic byte-prefix trie. Patterns
// sharing a common prefix share nodes until they diverge, at which point
// the divergent branch hangs off alt (the specification calls this field
// "fallback" on the node; it is renamed here to avoid confusion with the
// router's own configured fallback port).
type trieNode struct {
	b    byte
	next *trieNode // match-then-continue: more bytes follow in the pattern
	alt  *trieNode // try this sibling when b doesn't match
	port string    // terminal: pattern ends here, dispatch to this port
}

// trie is the built router: a chain of top-level trieNodes.
type trie struct {
	root *trieNode
}

// insert adds pattern, routed to port, to the trie. Rejected cases:
//   - an empty pattern (ErrEmptyPattern)
//   - pattern is a strict prefix of an already-inserted longer pattern, or
//     extends past an already-terminal node (ErrPrefixConflict)
//   - pattern exactly matches an already-inserted pattern claimed by a
//     different port (ErrPatternConflict)
func (t *trie) insert(pattern []byte, port string) error {
	if len(pattern) == 0 {
		return synerrors.WrapInvalid(synerrors.ErrEmptyPattern, "prefixrouter", "insert", port)
	}

	cur := &t.root
	var node *trieNode
	for i, b := range pattern {
		node = findOrAppend(cur, b)

		last := i == len(pattern)-1
		if last {
			if node.next != nil {
				return synerrors.WrapInvalid(synerrors.ErrPrefixConflict, "prefixrouter", "insert", port)
			}
			if node.port != "" {
				if node.port == port {
					return nil
				}
				return synerrors.WrapInvalid(synerrors.ErrPatternConflict, "prefixrouter", "insert", port)
			}
			node.port = port
			return nil
		}

		if node.port != "" {
			return synerrors.WrapInvalid(synerrors.ErrPrefixConflict, "prefixrouter", "insert", port)
		}
		cur = &node.next
	}
	return nil
}

func findOrAppend(head **trieNode, b byte) *trieNode {
	if *head == nil {
		n := &trieNode{b: b}
		*head = n
		return n
	}
	cur := *head
	for {
		if cur.b == b {
			return cur
		}
		if cur.alt == nil {
			n := &trieNode{b: b}
			cur.alt = n
			return n
		}
		cur = cur.alt
	}
}

// match walks data from the trie root, per the specification's algorithm:
// at each node, if data[i] == node.b, descend into node.next (consuming
// the byte) when it exists, else the node is terminal and its port is
// returned; if data[i] != node.b, try node.alt. Running off either side
// (including empty input) yields no match.
func (t *trie) match(data []byte) (string, bool) {
	node := t.root
	i := 0
	for node != nil && i < len(data) {
		if data[i] == node.b {
			if node.next != nil {
				node = node.next
				i++
				continue
			}
			if node.port != "" {
				return node.port, true
			}
			return "", false
		}
		node = node.alt
	}
	return "", false
}
