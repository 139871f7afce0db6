// Package tree implements a document-order-preserving tree model for
// XML-encoded documents. Tag, text, comment and processing-instruction
// nodes are first-class siblings in one hierarchy; there is no notion of
// text that trails an element as a hidden attribute of that element.
package tree

// NodeType discriminates the variants of a Node.
type NodeType uint8

const (
	// TagNode represents an element with a name, attributes and children.
	TagNode NodeType = 1
	// TextNode represents literal character data.
	TextNode NodeType = 2
	// CommentNode represents a comment.
	CommentNode NodeType = 3
	// ProcessingInstructionNode represents a processing instruction.
	ProcessingInstructionNode NodeType = 4
)

// String returns the string representation of the NodeType.
func (nt NodeType) String() string {
	switch nt {
	case TagNode:
		return "TAG_NODE"
	case TextNode:
		return "TEXT_NODE"
	case CommentNode:
		return "COMMENT_NODE"
	case ProcessingInstructionNode:
		return "PROCESSING_INSTRUCTION_NODE"
	default:
		return "UNKNOWN_NODE"
	}
}
