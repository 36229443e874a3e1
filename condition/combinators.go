package condition

// And combines two conditions so the result is true only when both are.
//
// When a is already an AND composite and not itself async, b is appended to
// a's child list instead of nesting a new two-child composite. The
// flattening changes the evaluation shape (n-ary fan-out instead of
// pairwise joins) and therefore the exact sequence of logged outcomes:
// a.And(b).And(c) is one three-child composite, not two nested ones. It
// mutates only the tree under construction, never a previously published
// one.
func And(a, b *Node) *Node { return combine(OpAnd, a, b) }

// Or combines two conditions so the result is true when either is.
// Flattens into an existing non-async OR composite exactly like And.
func Or(a, b *Node) *Node { return combine(OpOr, a, b) }

func combine(op Operator, a, b *Node) *Node {
	if a == nil || b == nil {
		panic("condition: nil node")
	}
	if a.kind == kindComposite && a.op == op && !a.attrs.Async {
		a.children = append(a.children, b)
		return a
	}
	return newComposite(op, []*Node{a, b})
}

func newComposite(op Operator, children []*Node) *Node {
	return &Node{id: newNodeID(), kind: kindComposite, op: op, children: children}
}

// Not wraps a condition, inverting its result. The derived alias inverts
// too: "not(<inner alias>)".
func Not(n *Node) *Node {
	if n == nil {
		panic("condition: nil node")
	}
	return &Node{id: newNodeID(), kind: kindNot, children: []*Node{n}}
}

// AllOf builds an n-ary AND over the given conditions.
// Fails with a ConfigError when given zero nodes.
func AllOf(nodes ...*Node) (*Node, error) {
	if len(nodes) == 0 {
		return nil, &ConfigError{Message: "allOf requires at least one condition"}
	}
	return newComposite(OpAnd, append([]*Node(nil), nodes...)), nil
}

// AnyOf builds an n-ary OR over the given conditions.
// Fails with a ConfigError when given zero nodes.
func AnyOf(nodes ...*Node) (*Node, error) {
	if len(nodes) == 0 {
		return nil, &ConfigError{Message: "anyOf requires at least one condition"}
	}
	return newComposite(OpOr, append([]*Node(nil), nodes...)), nil
}

// NoneOf builds the negation of an n-ary OR: true when no condition holds.
// Fails with a ConfigError when given zero nodes.
func NoneOf(nodes ...*Node) (*Node, error) {
	any, err := AnyOf(nodes...)
	if err != nil {
		return nil, &ConfigError{Message: "noneOf requires at least one condition"}
	}
	return Not(any), nil
}

// And is the method form of the package-level combinator, enabling
// n.And(m).And(k) chains.
func (n *Node) And(other *Node) *Node { return And(n, other) }

// Or is the method form of the package-level combinator.
func (n *Node) Or(other *Node) *Node { return Or(n, other) }

// Negate is the method form of Not.
func (n *Node) Negate() *Node { return Not(n) }
