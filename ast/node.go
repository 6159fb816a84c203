package ast

import "github.com/pete-tpl/pete-core/token"

// Node is implemented by every template-tree node: Container, Static,
// Comment, Expression, If. It carries the shared base fields §3 requires
// (offsets, trim flags) plus the child-ownership operation each kind
// implements differently — Container appends, If forwards to its last
// branch, and the three leaf kinds (Static, Comment, Expression) refuse.
type Node interface {
	Pos() token.Pos
	End() token.Pos
	SetEnd(token.Pos)

	// HasNolinebreakBeginning reports whether the tag that produced this
	// node opened with a trim marker ({#-, {%-, {{-).
	HasNolinebreakBeginning() bool
	// HasNolinebreakEnd reports whether the tag that produced this node
	// closed with a trim marker (-#}, -%}, -}}).
	HasNolinebreakEnd() bool

	// IsStatic reports whether this is a Static node — the render walker
	// uses this, not a property of the rendered text, to decide whether
	// neighbour trim rules apply (§4.5).
	IsStatic() bool

	// AddChild appends child to this node's children, or — for If —
	// forwards to the currently open branch. Static, Comment, and
	// Expression nodes have no children and panic if called, matching the
	// source project's StaticNode::add_child/ExpressionNode::add_child.
	AddChild(child Node)
}

// Base holds the fields every Node shares: its source range and trim flags.
type Base struct {
	StartOffset          token.Pos
	EndOffset             token.Pos
	NolinebreakBeginning bool
	NolinebreakEnd       bool
}

func (b *Base) Pos() token.Pos { return b.StartOffset }
func (b *Base) End() token.Pos { return b.EndOffset }
func (b *Base) SetEnd(p token.Pos) { b.EndOffset = p }
func (b *Base) HasNolinebreakBeginning() bool { return b.NolinebreakBeginning }
func (b *Base) HasNolinebreakEnd() bool { return b.NolinebreakEnd }

// Container is a pure grouping node: it owns an ordered list of children and
// contributes nothing of its own to rendering beyond their concatenation.
// It is the root node of every build, and the implicit branch body of every
// If guard.
type Container struct {
	Base
	Children []Node
}

func NewContainer(start token.Pos) *Container {
	return &Container{Base: Base{StartOffset: start, EndOffset: start}}
}

func (c *Container) IsStatic() bool { return false }

func (c *Container) AddChild(child Node) {
	c.Children = append(c.Children, child)
	if child.End() > c.EndOffset {
		c.EndOffset = child.End()
	}
}

// Static is a run of literal template text with no dynamic content.
type Static struct {
	Base
	Content string
}

func (s *Static) IsStatic() bool { return true }
func (s *Static) AddChild(Node) { panic("cannot add a child to a static node") }

// Comment is a {# ... #} node. It always renders as the empty string; its
// trim flags still participate in neighbour whitespace stripping.
type Comment struct {
	Base
	Text string
}

func (c *Comment) IsStatic() bool { return false }
func (c *Comment) AddChild(Node) { panic("cannot add a child to a comment node") }

// Expression is a {{ ... }} value-output node. It owns exactly one
// expression tree and has no children.
type Expression struct {
	Base
	Expr Expr
}

func (e *Expression) IsStatic() bool { return false }
func (e *Expression) AddChild(Node) { panic("cannot add a child to an expression node") }

// If is the if/elseif/else/endif node. Guards and Branches are parallel:
// Branches[i] renders iff Guards[i] is the first truthy guard. AddChild
// forwards to the currently open branch (its last element), matching the
// source project's ConditionNode::add_child forwarding to
// children.last_mut().
//
// A branch's own leading/trailing whitespace cannot be resolved by looking
// at its siblings the way Static/Comment/Expression can, because the branch
// is a fresh Container with no sibling of its own: the tag that opens it
// (if/elseif/else) and the tag that closes it (the next elseif/else/endif)
// sit on either side of a container boundary. BranchOpenTrailingTrim and
// BranchCloseLeadingTrim record those two tags' own trim markers so the
// render walker can seed and finish the branch's render the same way a
// sibling's flags would.
type If struct {
	Base
	Guards                 []Expr
	Branches               []*Container
	BranchOpenTrailingTrim []bool
	BranchCloseLeadingTrim []bool
}

func (i *If) IsStatic() bool { return false }

func (i *If) AddChild(child Node) {
	if len(i.Branches) == 0 {
		return
	}
	i.Branches[len(i.Branches)-1].AddChild(child)
}

// OpenBranch appends a new guard/branch pair, starting a fresh Container at
// start. openTrailingTrim is whether the if/elseif/else tag that opens this
// branch itself closed with a trailing trim marker. Used by the
// if/elseif/else build modes (§4.4.4).
func (i *If) OpenBranch(guard Expr, start token.Pos, openTrailingTrim bool) *Container {
	branch := NewContainer(start)
	i.Guards = append(i.Guards, guard)
	i.Branches = append(i.Branches, branch)
	i.BranchOpenTrailingTrim = append(i.BranchOpenTrailingTrim, openTrailingTrim)
	i.BranchCloseLeadingTrim = append(i.BranchCloseLeadingTrim, false)
	return branch
}

// CloseLastBranch records whether the tag terminating the currently open
// branch (elseif, else, or endif) itself opened with a leading trim marker.
func (i *If) CloseLastBranch(leadingTrim bool) {
	if len(i.BranchCloseLeadingTrim) == 0 {
		return
	}
	i.BranchCloseLeadingTrim[len(i.BranchCloseLeadingTrim)-1] = leadingTrim
}

var (
	_ Node = (*Container)(nil)
	_ Node = (*Static)(nil)
	_ Node = (*Comment)(nil)
	_ Node = (*Expression)(nil)
	_ Node = (*If)(nil)
)
