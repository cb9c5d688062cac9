package relationship

import (
	"slices"

	"github.com/matzehuels/runshape/pkg/run"
)

// Relationship is the adjacency of one task, keyed by its external id.
type Relationship struct {
	Node     string   `json:"node"`
	Children []string `json:"children"`
	Parents  []string `json:"parents"`
}

// Set holds the relationships of a task list in task order.
type Set struct {
	rels  []Relationship
	index map[string]int
}

// Resolve computes the relationship of every task with a non-empty external
// id. Duplicate external ids resolve to a single relationship at the position
// of the first task.
func Resolve(tasks []run.Task, shape []run.ShapeEdge) Set {
	childrenOf := make(map[string][]string, len(shape))
	parentsOf := make(map[string][]string)
	seenParent := make(map[[2]string]bool)

	for _, e := range shape {
		if _, ok := childrenOf[e.Parent]; !ok {
			childrenOf[e.Parent] = e.Children
		}
		for _, c := range e.Children {
			key := [2]string{c, e.Parent}
			if seenParent[key] {
				continue
			}
			seenParent[key] = true
			parentsOf[c] = append(parentsOf[c], e.Parent)
		}
	}

	set := Set{index: make(map[string]int, len(tasks))}
	for _, t := range tasks {
		id := t.ExternalID
		if id == "" {
			continue
		}
		if _, dup := set.index[id]; dup {
			continue
		}
		set.index[id] = len(set.rels)
		set.rels = append(set.rels, Relationship{
			Node:     id,
			Children: nonNil(slices.Clone(childrenOf[id])),
			Parents:  nonNil(parentsOf[id]),
		})
	}
	return set
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Lookup returns the relationship of the task with the given external id.
func (s Set) Lookup(id string) (Relationship, bool) {
	i, ok := s.index[id]
	if !ok {
		return Relationship{}, false
	}
	return s.rels[i], true
}

// All returns every relationship in task order.
func (s Set) All() []Relationship { return slices.Clone(s.rels) }

// Len returns the number of resolved tasks.
func (s Set) Len() int { return len(s.rels) }

// Edges returns the number of parent references across all relationships.
func (s Set) Edges() int {
	n := 0
	for _, r := range s.rels {
		n += len(r.Parents)
	}
	return n
}
