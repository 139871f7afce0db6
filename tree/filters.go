package tree

// Filter is a predicate over nodes. Navigation and traversal only yield
// nodes for which all applicable filters return true.
type Filter func(*Node) bool

// IsTag matches tag nodes.
func IsTag(n *Node) bool { return n.nodeType == TagNode }

// IsText matches text nodes.
func IsText(n *Node) bool { return n.nodeType == TextNode }

// IsComment matches comment nodes.
func IsComment(n *Node) bool { return n.nodeType == CommentNode }

// IsProcessingInstruction matches processing instruction nodes.
func IsProcessingInstruction(n *Node) bool {
	return n.nodeType == ProcessingInstructionNode
}

// AnyOf combines filters into one that matches when at least one of them
// does.
func AnyOf(filters ...Filter) Filter {
	return func(n *Node) bool {
		for _, f := range filters {
			if f(n) {
				return true
			}
		}
		return false
	}
}

// Not combines filters into one that matches when none of them do.
func Not(filters ...Filter) Filter {
	return func(n *Node) bool {
		for _, f := range filters {
			if f(n) {
				return false
			}
		}
		return true
	}
}

// The default filters apply to all navigation, counting and traversal unless
// suspended. Out of the box they hide comments and processing instructions.
// Like the trees themselves the filter state is not synchronized; programs
// mutate it from one goroutine only.
var defaultFilters = []Filter{Not(IsComment, IsProcessingInstruction)}

func currentDefaultFilters() []Filter {
	return defaultFilters
}

// AlterDefaultFilters replaces the default filters for a scope. The returned
// function restores the previous state and is intended for defer:
//
//	defer tree.AlterDefaultFilters()()
//
// Calling it with no filters suspends the default filters entirely, so that
// comments and processing instructions become visible. Traversals that are
// already underway pick up the change at their next step.
func AlterDefaultFilters(filters ...Filter) (restore func()) {
	previous := defaultFilters
	defaultFilters = append([]Filter(nil), filters...)
	return func() { defaultFilters = previous }
}

// ExtendDefaultFilters adds filters to the currently active default filters
// for a scope. The returned function restores the previous state.
func ExtendDefaultFilters(filters ...Filter) (restore func()) {
	previous := defaultFilters
	extended := make([]Filter, 0, len(previous)+len(filters))
	extended = append(extended, previous...)
	extended = append(extended, filters...)
	defaultFilters = extended
	return func() { defaultFilters = previous }
}
