package joinsql

import (
	"fmt"
	"strings"
)

// JoinType describes how the target of a join is combined with its source.
type JoinType int

const (
	// InnerJoin keeps only rows with a match on both sides. It is rendered as "JOIN".
	InnerJoin JoinType = iota
	// LeftJoin keeps all rows of the source side. It is rendered as "LEFT JOIN".
	LeftJoin
)

// String returns the SQL keyword of the join type.
func (t JoinType) String() string {
	switch t {
	case LeftJoin:
		return "LEFT JOIN"
	default:
		return "JOIN"
	}
}

// ParseJoinType parses "inner", "left" or an empty string (inner).
func ParseJoinType(s string) (JoinType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inner", "join":
		return InnerJoin, nil
	case "left", "left join", "left outer":
		return LeftJoin, nil
	default:
		return InnerJoin, fmt.Errorf("joinsql: unknown join type %q", s)
	}
}

// JoinField is one equality predicate of a join: FromField on the source side
// equals ToField on the target side.
type JoinField struct {
	FromField string
	ToField   string
}

// Join is a directed edge from one source to another.
type Join struct {
	// FromSource is the source owning the join. It is a back reference only.
	FromSource *Source
	// ToSource is the joined target.
	ToSource *Source
	// Type is the join type, InnerJoin by default.
	Type JoinType
	// Fields holds the join predicates in insertion order.
	Fields []*JoinField
}

// AddField appends a field pair to the join predicate.
func (j *Join) AddField(fromField, toField string) *Join {
	j.Fields = append(j.Fields, &JoinField{FromField: fromField, ToField: toField})
	return j
}
