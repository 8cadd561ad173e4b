// Package graphql turns GraphQL selections into join trees.
//
// Nested selections of a query are followed as edges of a sqlgraph.Schema,
// and leaf fields become the selected columns:
//
//	sel, err := graphql.FromQuery(g, "car", `{
//	    cars {
//	        id
//	        engine { power }
//	        owner { name }
//	    }
//	}`)
//	if err != nil {
//	    return err
//	}
//	query, args, err := sel.Query(dialect.Postgres)
//
// Every top-level field of the operation selects from the root node. Inline
// fragments and fragment spreads are expanded in place, and __typename is
// ignored.
package graphql
