// Package joinsql models the sources of a SQL query as a tree of joins.
//
// A Source names a table or view. Its JoinList holds the joins to other
// sources, each carrying one or more JoinField equality predicates:
//
//	order := joinsql.NewSource("order", "orders")
//	customer := joinsql.NewSource("customer", "customers")
//	order.Joins().AddNewJoinTo(customer).AddField("customer_id", "id")
//
// Join trees built independently for the same root can be merged without
// duplicating joins. Joins are matched by the Name and EntityName of their
// target, the first inserted join wins and subtrees are merged recursively:
//
//	if err := order.MergeWith(otherOrderTree); err != nil {
//	    return err
//	}
//
// Rendering a tree into the FROM clause of a statement is done by
// dialect/sql.SourceDB.
package joinsql
