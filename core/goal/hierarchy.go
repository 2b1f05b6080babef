package goal

import "sort"

// HierarchyBuilder assembles goals into a forest. Add every goal first, then Build.
// A builder is meant to be used once and holds no state shared with other builders.
type HierarchyBuilder struct {
	nodes map[string]*HierarchicalGoal
	order []*HierarchicalGoal
}

func NewHierarchyBuilder(capacity int) *HierarchyBuilder {
	return &HierarchyBuilder{
		nodes: make(map[string]*HierarchicalGoal, capacity),
		order: make([]*HierarchicalGoal, 0, capacity),
	}
}

// Add registers a copy of `g`; `g` itself is never modified.
func (b *HierarchyBuilder) Add(g Goal) *HierarchyBuilder {
	node := &HierarchicalGoal{Goal: g, Children: []*HierarchicalGoal{}}
	b.nodes[g.ID] = node
	b.order = append(b.order, node)
	return b
}

// Build links every goal to its parent and returns the sorted roots.
// Goals whose parent is unknown (orphans) or whose ancestry loops back to them become roots.
func (b *HierarchyBuilder) Build() []*HierarchicalGoal {
	roots := make([]*HierarchicalGoal, 0)
	for _, node := range b.order {
		parent := b.parentOf(node)
		if parent == nil {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	sortForest(roots)
	return roots
}

func (b *HierarchyBuilder) parentOf(node *HierarchicalGoal) *HierarchicalGoal {
	if node.ParentID == nil {
		return nil
	}
	parent, ok := b.nodes[*node.ParentID]
	if !ok {
		return nil
	}
	// walk up the ancestry: a loop would detach the whole cycle from the forest
	for anc, steps := parent, 0; anc != nil && steps <= len(b.order); steps++ {
		if anc == node {
			return nil
		}
		if anc.ParentID == nil {
			break
		}
		anc = b.nodes[*anc.ParentID]
	}
	return parent
}

func sortForest(nodes []*HierarchicalGoal) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return CompareGoalNumbers(nodes[i].GoalNumber, nodes[j].GoalNumber) < 0
	})
	for _, n := range nodes {
		sortForest(n.Children)
	}
}

// BuildHierarchy assembles a flat list of goals into a forest sorted by goal number.
// No goal is dropped: len(Flatten(BuildHierarchy(goals))) == len(goals).
func BuildHierarchy(goals []Goal) []*HierarchicalGoal {
	b := NewHierarchyBuilder(len(goals))
	for _, g := range goals {
		b.Add(g)
	}
	return b.Build()
}

// Flatten lists the goals of a forest depth-first, parents before their children.
func Flatten(roots []*HierarchicalGoal) []Goal {
	goals := make([]Goal, 0, len(roots))
	var walk func(nodes []*HierarchicalGoal)
	walk = func(nodes []*HierarchicalGoal) {
		for _, n := range nodes {
			goals = append(goals, n.Goal)
			walk(n.Children)
		}
	}
	walk(roots)
	return goals
}

// Count returns the number of goals in a forest.
func Count(roots []*HierarchicalGoal) int {
	n := len(roots)
	for _, r := range roots {
		n += Count(r.Children)
	}
	return n
}
