package graphql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/joinsql"
	"github.com/syssam/joinsql/dialect"
	"github.com/syssam/joinsql/dialect/sql/sqlgraph"
)

func garage(t *testing.T) *sqlgraph.Schema {
	t.Helper()
	g := &sqlgraph.Schema{
		Nodes: []*sqlgraph.Node{
			{Type: "car", NodeSpec: sqlgraph.NodeSpec{Table: "cars"}, Fields: map[string]*sqlgraph.FieldSpec{"model": {}}},
			{Type: "engine", Fields: map[string]*sqlgraph.FieldSpec{"power": {Column: "power_kw"}}},
			{Type: "person", NodeSpec: sqlgraph.NodeSpec{Table: "people"}, Fields: map[string]*sqlgraph.FieldSpec{"name": {}}},
			{Type: "part", Fields: map[string]*sqlgraph.FieldSpec{"label": {}}},
		},
	}
	require.NoError(t, g.AddE("engine", &sqlgraph.EdgeSpec{Rel: sqlgraph.M2O, Columns: []string{"engine_id"}}, "car", "engine"))
	require.NoError(t, g.AddE("owner", &sqlgraph.EdgeSpec{Rel: sqlgraph.M2O, Columns: []string{"owner_id"}, Optional: true}, "car", "person"))
	require.NoError(t, g.AddE("parts", &sqlgraph.EdgeSpec{Rel: sqlgraph.O2M, Columns: []string{"engine_id"}}, "engine", "part"))
	return g
}

func TestFromQuery(t *testing.T) {
	sel, err := FromQuery(garage(t), "car", `
		query Cars {
			cars {
				id
				__typename
				Engine { power parts { label } }
				...OwnerFields
				... on truck { payload }
				... { model }
			}
		}
		fragment OwnerFields on car {
			owner { name }
			engine { power }
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"engine", "engine.parts", "owner"}, sel.Paths)
	var cols []string
	for _, c := range sel.Columns {
		cols = append(cols, c.String())
	}
	assert.Equal(t, []string{"cars.id", "engines.power_kw", "parts.label", "people.name", "cars.model"}, cols)
	assert.Equal(t, "engine.parts", sel.Columns[2].Path)

	query, args, err := sel.Query(dialect.Postgres)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "cars"."id", "engines"."power_kw", "parts"."label", "people"."name", "cars"."model" FROM "cars"`+
			` JOIN "engines" ON "cars"."engine_id" = "engines"."id"`+
			` JOIN "parts" ON "engines"."id" = "parts"."engine_id"`+
			` LEFT JOIN "people" ON "cars"."owner_id" = "people"."id"`,
		query,
	)
	assert.Empty(t, args)
}

func TestFromQuery_Operations(t *testing.T) {
	doc := `
		query A { cars { id } }
		query B { cars { owner { name } } }
	`
	_, err := FromQuery(garage(t), "car", doc)
	assert.ErrorContains(t, err, "an operation name is required")

	sel, err := FromQuery(garage(t), "car", doc, WithOperationName("B"))
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, sel.Paths)
	require.Len(t, sel.Columns, 1)
	assert.Equal(t, "people.name", sel.Columns[0].String())

	_, err = FromQuery(garage(t), "car", doc, WithOperationName("C"))
	assert.True(t, joinsql.IsNotFound(err))
}

func TestFromQuery_Errors(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		query    string
		wantErr  string
		notFound bool
	}{
		{name: "Parse", root: "car", query: `{ cars { `, wantErr: "graphql: parse query"},
		{name: "NoOperation", root: "car", query: `fragment F on car { id }`, wantErr: "document has no operation"},
		{name: "UnknownRoot", root: "truck", query: `{ trucks { id } }`, notFound: true},
		{name: "UnknownField", root: "car", query: `{ cars { color } }`, notFound: true},
		{name: "UnknownEdge", root: "car", query: `{ cars { wheels { id } } }`, notFound: true},
		{name: "UnknownFragment", root: "car", query: `{ cars { ...Missing } }`, notFound: true},
		{name: "LeafRoot", root: "car", query: `{ count }`, wantErr: `top-level field "count" has no selection`},
		{name: "RecursiveFragment", root: "car", query: `{ cars { ...F } } fragment F on car { id ...F }`, wantErr: `fragment "F" spreads itself`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromQuery(garage(t), tt.root, tt.query)
			require.Error(t, err)
			if tt.notFound {
				assert.True(t, joinsql.IsNotFound(err), err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
