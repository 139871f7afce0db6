package tree

// Text is the view of a node that holds character content.
type Text Node

// AsNode returns the underlying node.
func (t *Text) AsNode() *Node { return (*Node)(t) }

// Content returns the text content.
func (t *Text) Content() string { return t.data }

// SetContent changes the text content.
func (t *Text) SetContent(content string) { t.data = content }

// Comment is the view of a node that represents an XML comment.
type Comment Node

// AsNode returns the underlying node.
func (c *Comment) AsNode() *Node { return (*Node)(c) }

// Content returns the comment's content.
func (c *Comment) Content() string { return c.data }

// SetContent changes the comment's content.
func (c *Comment) SetContent(content string) { c.data = content }

// ProcessingInstruction is the view of a node that represents an XML
// processing instruction.
type ProcessingInstruction Node

// AsNode returns the underlying node.
func (p *ProcessingInstruction) AsNode() *Node { return (*Node)(p) }

// Target returns the instruction's target.
func (p *ProcessingInstruction) Target() string { return p.name.Local }

// SetTarget changes the instruction's target.
func (p *ProcessingInstruction) SetTarget(target string) { p.name.Local = target }

// Content returns the instruction's content.
func (p *ProcessingInstruction) Content() string { return p.data }

// SetContent changes the instruction's content.
func (p *ProcessingInstruction) SetContent(content string) { p.data = content }
