package graphql

import (
	"fmt"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/syssam/joinsql"
	"github.com/syssam/joinsql/dialect/sql"
	"github.com/syssam/joinsql/dialect/sql/sqlgraph"
)

// Column is a selected column qualified by its table.
type Column struct {
	// Path is the dotted edge path of the node owning the column.
	Path  string
	Table string
	Name  string
}

// String returns the column as "table.name".
func (c Column) String() string { return c.Table + "." + c.Name }

// Selection is the join tree and columns of a GraphQL operation.
type Selection struct {
	Source  *joinsql.Source
	Paths   []string
	Columns []Column
}

// Option configures FromQuery.
type Option func(*config)

type config struct {
	operation string
}

// WithOperationName selects the named operation of a document holding more
// than one.
func WithOperationName(name string) Option {
	return func(c *config) {
		c.operation = name
	}
}

// FromQuery parses a GraphQL document and maps the selection of its
// operation onto the graph, starting at the root node type.
func FromQuery(g *sqlgraph.Schema, root, query string, opts ...Option) (*Selection, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	doc, perr := parser.ParseQuery(&ast.Source{Input: query})
	if perr != nil {
		return nil, fmt.Errorf("graphql: parse query: %w", perr)
	}
	op, err := operation(doc, cfg.operation)
	if err != nil {
		return nil, err
	}
	n, err := g.Node(root)
	if err != nil {
		return nil, err
	}
	w := &walker{doc: doc, active: make(map[string]bool)}
	for _, s := range op.SelectionSet {
		f, ok := s.(*ast.Field)
		if !ok || f.Name == "__typename" {
			continue
		}
		if len(f.SelectionSet) == 0 {
			return nil, fmt.Errorf("graphql: top-level field %q has no selection", f.Name)
		}
		if err := w.walk(n, "", f.SelectionSet); err != nil {
			return nil, err
		}
	}
	src, err := g.Source(root, w.paths...)
	if err != nil {
		return nil, err
	}
	return &Selection{Source: src, Paths: w.paths, Columns: w.columns}, nil
}

func operation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, error) {
	if name != "" {
		op := doc.Operations.ForName(name)
		if op == nil {
			return nil, joinsql.NewNotFoundError("operation", name)
		}
		return op, nil
	}
	switch len(doc.Operations) {
	case 0:
		return nil, fmt.Errorf("graphql: document has no operation")
	case 1:
		return doc.Operations[0], nil
	default:
		return nil, fmt.Errorf("graphql: document has %d operations, an operation name is required", len(doc.Operations))
	}
}

type walker struct {
	doc     *ast.QueryDocument
	active  map[string]bool
	paths   []string
	columns []Column
}

func (w *walker) walk(n *sqlgraph.Node, path string, set ast.SelectionSet) error {
	for _, s := range set {
		switch s := s.(type) {
		case *ast.Field:
			if s.Name == "__typename" {
				continue
			}
			if len(s.SelectionSet) == 0 {
				c, ok := n.Column(s.Name)
				if !ok {
					return joinsql.NewNotFoundError("field", n.Type+"."+s.Name)
				}
				w.addColumn(Column{Path: path, Table: n.TableName(), Name: c})
				continue
			}
			e, err := n.Edge(s.Name)
			if err != nil {
				return err
			}
			p := e.Name
			if path != "" {
				p = path + "." + e.Name
			}
			if !slices.Contains(w.paths, p) {
				w.paths = append(w.paths, p)
			}
			if err := w.walk(e.To, p, s.SelectionSet); err != nil {
				return err
			}
		case *ast.InlineFragment:
			if s.TypeCondition != "" && s.TypeCondition != n.Type {
				continue
			}
			if err := w.walk(n, path, s.SelectionSet); err != nil {
				return err
			}
		case *ast.FragmentSpread:
			def := w.doc.Fragments.ForName(s.Name)
			if def == nil {
				return joinsql.NewNotFoundError("fragment", s.Name)
			}
			if w.active[s.Name] {
				return fmt.Errorf("graphql: fragment %q spreads itself", s.Name)
			}
			w.active[s.Name] = true
			err := w.walk(n, path, def.SelectionSet)
			delete(w.active, s.Name)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) addColumn(c Column) {
	for _, have := range w.columns {
		if have.Table == c.Table && have.Name == c.Name {
			return
		}
	}
	w.columns = append(w.columns, c)
}

// Query renders the SELECT statement of the selection for a dialect.
func (s *Selection) Query(dialectName string) (string, []any, error) {
	b := sql.Dialect(dialectName)
	columns := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		columns[i] = b.C(c.Table, c.Name)
	}
	return b.Select(columns...).From(sql.NewSourceDB(s.Source)).Query()
}
