package registry

import (
	"strings"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/artifact"
)

// Tree is the registry produced by Hierarchical.
type Tree = map[string]any

// Hierarchical deep-assigns artifacts into a tree using their dot-separated
// name as the path, so "User.byId" lands at tree["User"]["byId"]. The leaf is
// the artifact's handler when it has one, otherwise the artifact itself.
// Intermediate nodes are created as needed and the last artifact wins at a
// path, whether that replaces a leaf with a subtree or the other way round.
// Names with an empty segment are skipped.
func Hierarchical(artifacts []any, _ appctx.Context) (Tree, error) {
	root := make(node)
	for _, v := range artifacts {
		a, name, ok := named(v)
		if !ok {
			continue
		}
		path := strings.Split(name, ".")
		if !validPath(path) {
			continue
		}
		root.assign(path, leafOf(a))
	}
	return root.tree(), nil
}

// node is an intermediate map created by this build. Maps that came in as
// leaves are copied into a node before anything is written below them, so
// the input artifacts are never modified.
type node map[string]any

func (n node) assign(path []string, leaf any) {
	cur := n
	for _, seg := range path[:len(path)-1] {
		switch next := cur[seg].(type) {
		case node:
			cur = next
		case map[string]any:
			cp := make(node, len(next)+1)
			for k, v := range next {
				cp[k] = v
			}
			cur[seg] = cp
			cur = cp
		default:
			created := make(node)
			cur[seg] = created
			cur = created
		}
	}
	cur[path[len(path)-1]] = leaf
}

func (n node) tree() Tree {
	out := make(Tree, len(n))
	for k, v := range n {
		if child, ok := v.(node); ok {
			out[k] = child.tree()
			continue
		}
		out[k] = v
	}
	return out
}

func leafOf(a artifact.Artifact) any {
	if h, ok := a[artifact.KeyHandler]; ok {
		return h
	}
	return a
}

func validPath(path []string) bool {
	for _, seg := range path {
		if seg == "" {
			return false
		}
	}
	return true
}
