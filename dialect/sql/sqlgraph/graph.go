// Package sqlgraph describes tables and the relations between them, and
// derives joinsql source trees from dotted edge paths over that graph.
package sqlgraph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"

	"github.com/syssam/joinsql"
)

// Rel is an edge relation type.
type Rel int

// Relation types.
const (
	Unk Rel = iota // Unknown.
	O2O            // One to one / has one.
	O2M            // One to many / has many.
	M2O            // Many to one (inverse perspective for O2M).
	M2M            // Many to many.
)

// String returns the relation name.
func (r Rel) String() string {
	switch r {
	case O2O:
		return "O2O"
	case O2M:
		return "O2M"
	case M2O:
		return "M2O"
	case M2M:
		return "M2M"
	default:
		return "Unknown"
	}
}

// DefaultIDColumn is the identifier column of nodes that do not name one.
const DefaultIDColumn = "id"

type (
	// FieldSpec holds the information for a node field.
	FieldSpec struct {
		Column string
		// Type is the database column type as reported by the inspector, if known.
		Type string
	}

	// NodeSpec defines the table and identifier of a node.
	NodeSpec struct {
		Table string
		ID    *FieldSpec
	}

	// EdgeSpec holds the information for describing how an edge maps to tables.
	//
	// For O2M and non-inverse O2O edges, Columns live in Table, the table of the
	// edge target. For M2O and inverse O2O edges, Columns live in the table of
	// the edge owner. For M2M edges, Table is the join table and Columns holds
	// exactly two columns: the owner side first, then the target side.
	EdgeSpec struct {
		Rel     Rel
		Inverse bool
		Table   string
		Columns []string
		// RefColumns overrides the referenced identifier columns. Defaults to
		// the ID column of the referenced node.
		RefColumns []string
		// Optional edges are rendered as LEFT JOIN.
		Optional bool
	}

	// Edge is a named edge to another node.
	Edge struct {
		Name string
		To   *Node
		Spec *EdgeSpec
	}

	// Node in the graph is an entity backed by a table.
	Node struct {
		NodeSpec

		// Type holds the node type (schema name).
		Type string

		// Fields maps from field names to their spec.
		Fields map[string]*FieldSpec

		// Edges maps from edge names to their spec.
		Edges map[string]*Edge
	}

	// Schema holds a representation of the table graph.
	Schema struct {
		Nodes []*Node
	}
)

// TableName returns the node table, defaulting to the pluralized snake case
// of its type.
func (n *Node) TableName() string {
	if n.Table != "" {
		return n.Table
	}
	return inflect.Pluralize(inflect.Underscore(n.Type))
}

// IDColumn returns the identifier column of the node.
func (n *Node) IDColumn() string {
	if n.ID != nil && n.ID.Column != "" {
		return n.ID.Column
	}
	return DefaultIDColumn
}

// Column resolves a field name to its column. The identifier column and
// fields without an explicit column resolve to themselves.
func (n *Node) Column(name string) (string, bool) {
	if f, ok := n.Fields[name]; ok {
		if f.Column != "" {
			return f.Column, true
		}
		return name, true
	}
	if name == n.IDColumn() {
		return n.IDColumn(), true
	}
	return "", false
}

// Edge returns the named edge. An exact match is preferred; otherwise the
// name is compared Unicode case-folded and must match a single edge.
func (n *Node) Edge(name string) (*Edge, error) {
	if e, ok := n.Edges[name]; ok {
		return e, nil
	}
	fold := cases.Fold()
	want := fold.String(name)
	var matches []string
	for k := range n.Edges {
		if fold.String(k) == want {
			matches = append(matches, k)
		}
	}
	switch len(matches) {
	case 0:
		return nil, joinsql.NewNotFoundError("edge", n.Type+"."+name)
	case 1:
		return n.Edges[matches[0]], nil
	default:
		slices.Sort(matches)
		return nil, fmt.Errorf("sqlgraph: edge name %q of %q is ambiguous: %s", name, n.Type, strings.Join(matches, ", "))
	}
}

// Node returns the node with the given type.
func (g *Schema) Node(typ string) (*Node, error) {
	for _, n := range g.Nodes {
		if n.Type == typ {
			return n, nil
		}
	}
	return nil, joinsql.NewNotFoundError("node", typ)
}

// AddE adds an edge to the graph. It fails if one of the node types is
// missing or the owner already has an edge with that name.
func (g *Schema) AddE(name string, spec *EdgeSpec, from, to string) error {
	fromT, err := g.Node(from)
	if err != nil {
		return err
	}
	toT, err := g.Node(to)
	if err != nil {
		return err
	}
	if spec == nil {
		return fmt.Errorf("sqlgraph: edge %q of %q has no spec", name, from)
	}
	if fromT.Edges == nil {
		fromT.Edges = make(map[string]*Edge)
	}
	if _, ok := fromT.Edges[name]; ok {
		return fmt.Errorf("sqlgraph: edge %q already defined on %q", name, from)
	}
	fromT.Edges[name] = &Edge{Name: name, To: toT, Spec: spec}
	return nil
}

// Resolve follows the dotted edge path from the root node and returns the
// node it ends on. An empty path resolves to the root itself.
func (g *Schema) Resolve(root, path string) (*Node, error) {
	n, err := g.Node(root)
	if err != nil {
		return nil, err
	}
	for _, name := range splitPath(path) {
		e, err := n.Edge(name)
		if err != nil {
			return nil, err
		}
		n = e.To
	}
	return n, nil
}

// Path builds the source chain for a dotted edge path starting at root, for
// example Path("car", "engine.parts"). The root source is named after the
// node type and every edge target after the edge. M2M edges go through a
// source for their join table.
//
// Rendered joins qualify columns by table name, so a path that reaches the
// same table twice, such as a self-referencing edge, is rejected.
func (g *Schema) Path(root, path string) (*joinsql.Source, error) {
	n, err := g.Node(root)
	if err != nil {
		return nil, err
	}
	head := joinsql.NewSource(n.Type, n.TableName())
	cur := head
	for _, name := range splitPath(path) {
		e, err := n.Edge(name)
		if err != nil {
			return nil, err
		}
		if cur, err = addEdge(cur, n, e); err != nil {
			return nil, err
		}
		n = e.To
	}
	if err := checkTables(head); err != nil {
		return nil, err
	}
	return head, nil
}

// Source builds one chain per path and merges them into a single tree. As
// with Path, the tree may join each table only once.
func (g *Schema) Source(root string, paths ...string) (*joinsql.Source, error) {
	head, err := g.Path(root, "")
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		s, err := g.Path(root, p)
		if err != nil {
			return nil, err
		}
		if err := head.MergeWith(s); err != nil {
			return nil, err
		}
	}
	if err := checkTables(head); err != nil {
		return nil, err
	}
	return head, nil
}

// checkTables fails if a table occurs more than once in the tree of s.
func checkTables(s *joinsql.Source) error {
	seen := map[string]string{s.EntityName: s.Name}
	var walk func(*joinsql.Source) error
	walk = func(from *joinsql.Source) error {
		for _, j := range from.Joins().All() {
			to := j.ToSource
			if name, ok := seen[to.EntityName]; ok {
				return fmt.Errorf("sqlgraph: table %q is joined as both %q and %q, table aliases are not supported", to.EntityName, name, to.Name)
			}
			seen[to.EntityName] = to.Name
			if err := walk(to); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(s)
}

// addEdge appends the joins of edge e, owned by node n, to cur and returns
// the source of the edge target.
func addEdge(cur *joinsql.Source, n *Node, e *Edge) (*joinsql.Source, error) {
	spec := e.Spec
	typ := joinsql.InnerJoin
	if spec.Optional {
		typ = joinsql.LeftJoin
	}
	to := joinsql.NewSource(e.Name, e.To.TableName())
	switch {
	case spec.Rel == M2M:
		if len(spec.Columns) != 2 {
			return nil, fmt.Errorf("sqlgraph: M2M edge %q of %q requires 2 join table columns, got %d", e.Name, n.Type, len(spec.Columns))
		}
		if spec.Table == "" {
			return nil, fmt.Errorf("sqlgraph: M2M edge %q of %q has no join table", e.Name, n.Type)
		}
		fromC, toC := spec.Columns[0], spec.Columns[1]
		if spec.Inverse {
			fromC, toC = toC, fromC
		}
		jt := joinsql.NewSource(spec.Table, spec.Table)
		cur.Joins().AddNewJoinToWithType(jt, typ).AddField(n.IDColumn(), fromC)
		jt.Joins().AddNewJoinToWithType(to, typ).AddField(toC, e.To.IDColumn())
	case spec.Rel == M2O, spec.Rel == O2O && spec.Inverse:
		refs := refColumns(spec, e.To)
		if err := checkColumns(e, n, refs); err != nil {
			return nil, err
		}
		j := cur.Joins().AddNewJoinToWithType(to, typ)
		for i, c := range spec.Columns {
			j.AddField(c, refs[i])
		}
	case spec.Rel == O2M, spec.Rel == O2O:
		refs := refColumns(spec, n)
		if err := checkColumns(e, n, refs); err != nil {
			return nil, err
		}
		j := cur.Joins().AddNewJoinToWithType(to, typ)
		for i, c := range spec.Columns {
			j.AddField(refs[i], c)
		}
	default:
		return nil, fmt.Errorf("sqlgraph: edge %q of %q has unknown relation %s", e.Name, n.Type, spec.Rel)
	}
	return to, nil
}

func refColumns(spec *EdgeSpec, n *Node) []string {
	if len(spec.RefColumns) > 0 {
		return spec.RefColumns
	}
	return []string{n.IDColumn()}
}

func checkColumns(e *Edge, n *Node, refs []string) error {
	if len(e.Spec.Columns) == 0 {
		return fmt.Errorf("sqlgraph: edge %q of %q has no columns", e.Name, n.Type)
	}
	if len(e.Spec.Columns) != len(refs) {
		return fmt.Errorf("sqlgraph: edge %q of %q has %d columns referencing %d", e.Name, n.Type, len(e.Spec.Columns), len(refs))
	}
	return nil
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
