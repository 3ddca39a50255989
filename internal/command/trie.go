package command

import "sort"

// trie maps key sequences to commands. Sequences are small, so children
// live in a map per node.
type trie struct {
	root *trieNode
	size int
}

type trieNode struct {
	children map[rune]*trieNode
	command  Command
	terminal bool
}

func newTrie() *trie {
	return &trie{root: &trieNode{}}
}

func (t *trie) insert(keys string, cmd Command) {
	if keys == "" {
		return
	}
	node := t.root
	for _, r := range keys {
		if node.children == nil {
			node.children = make(map[rune]*trieNode)
		}
		next, ok := node.children[r]
		if !ok {
			next = &trieNode{}
			node.children[r] = next
		}
		node = next
	}
	if !node.terminal {
		t.size++
	}
	node.command = cmd
	node.terminal = true
}

func (t *trie) find(keys string) *trieNode {
	node := t.root
	for _, r := range keys {
		next, ok := node.children[r]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

func (t *trie) get(keys string) (Command, bool) {
	node := t.find(keys)
	if node == nil || !node.terminal {
		return Command{}, false
	}
	return node.command, true
}

// hasPrefix reports whether at least one bound sequence starts with keys.
func (t *trie) hasPrefix(keys string) bool {
	node := t.find(keys)
	if node == nil {
		return false
	}
	return node.terminal || len(node.children) > 0
}

// withPrefix returns every binding starting with prefix, ordered by key.
func (t *trie) withPrefix(prefix string) []Hint {
	node := t.find(prefix)
	if node == nil {
		return nil
	}
	var out []Hint
	var walk func(n *trieNode, path []rune)
	walk = func(n *trieNode, path []rune) {
		if n.terminal {
			out = append(out, Hint{Keys: string(path), Description: n.command.String()})
		}
		for r, child := range n.children {
			walk(child, append(path, r))
		}
	}
	walk(node, []rune(prefix))
	sort.Slice(out, func(i, j int) bool { return out[i].Keys < out[j].Keys })
	return out
}
