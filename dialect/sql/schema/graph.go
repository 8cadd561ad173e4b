package schema

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/schema"

	"github.com/syssam/joinsql/dialect/sql/sqlgraph"
)

// FromAtlas builds a graph with one node per table. Every foreign key adds
// two edges: an M2O edge on the referencing table, named after the foreign
// key column without its "_id" suffix (or after the referenced table), and
// an O2M edge on the referenced table, named after the referencing table.
// Colliding edge names are suffixed with the foreign key columns.
func FromAtlas(s *schema.Schema) (*sqlgraph.Schema, error) {
	if s == nil {
		return nil, fmt.Errorf("dialect/sql/schema: nil schema")
	}
	g := &sqlgraph.Schema{}
	for _, t := range s.Tables {
		g.Nodes = append(g.Nodes, node(t))
	}
	for _, t := range s.Tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == nil || len(fk.Columns) == 0 {
				continue
			}
			if _, err := g.Node(fk.RefTable.Name); err != nil {
				return nil, fmt.Errorf("dialect/sql/schema: foreign key %q of %q references table %q outside the inspected schema", fk.Symbol, t.Name, fk.RefTable.Name)
			}
			cols, refs := columnNames(fk.Columns), columnNames(fk.RefColumns)
			if len(cols) != len(refs) {
				return nil, fmt.Errorf("dialect/sql/schema: foreign key %q of %q has %d columns referencing %d", fk.Symbol, t.Name, len(cols), len(refs))
			}
			owner, _ := g.Node(t.Name)
			name := edgeName(owner, m2oName(fk, cols), cols)
			if err := g.AddE(name, &sqlgraph.EdgeSpec{
				Rel:        sqlgraph.M2O,
				Inverse:    true,
				Table:      t.Name,
				Columns:    cols,
				RefColumns: refs,
				Optional:   nullable(fk.Columns),
			}, t.Name, fk.RefTable.Name); err != nil {
				return nil, err
			}
			ref, _ := g.Node(fk.RefTable.Name)
			name = edgeName(ref, t.Name, cols)
			if err := g.AddE(name, &sqlgraph.EdgeSpec{
				Rel:        sqlgraph.O2M,
				Table:      t.Name,
				Columns:    cols,
				RefColumns: refs,
			}, fk.RefTable.Name, t.Name); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

func node(t *schema.Table) *sqlgraph.Node {
	n := &sqlgraph.Node{
		Type:     t.Name,
		NodeSpec: sqlgraph.NodeSpec{Table: t.Name},
		Fields:   make(map[string]*sqlgraph.FieldSpec, len(t.Columns)),
	}
	for _, c := range t.Columns {
		f := &sqlgraph.FieldSpec{Column: c.Name}
		if c.Type != nil {
			f.Type = c.Type.Raw
		}
		n.Fields[c.Name] = f
	}
	if pk := t.PrimaryKey; pk != nil && len(pk.Parts) == 1 && pk.Parts[0].C != nil {
		n.ID = &sqlgraph.FieldSpec{Column: pk.Parts[0].C.Name}
		if f, ok := n.Fields[pk.Parts[0].C.Name]; ok {
			n.ID.Type = f.Type
		}
	}
	return n
}

func m2oName(fk *schema.ForeignKey, cols []string) string {
	if len(cols) == 1 {
		if name, ok := strings.CutSuffix(cols[0], "_id"); ok && name != "" {
			return name
		}
	}
	return fk.RefTable.Name
}

// edgeName returns name, or a column suffixed variant if n already has an
// edge with that name.
func edgeName(n *sqlgraph.Node, name string, cols []string) string {
	if _, ok := n.Edges[name]; !ok {
		return name
	}
	base := name + "_by_" + strings.Join(cols, "_")
	name = base
	for i := 2; ; i++ {
		if _, ok := n.Edges[name]; !ok {
			return name
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
}

func columnNames(cs []*schema.Column) []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return names
}

func nullable(cs []*schema.Column) bool {
	for _, c := range cs {
		if c.Type != nil && c.Type.Null {
			return true
		}
	}
	return false
}
