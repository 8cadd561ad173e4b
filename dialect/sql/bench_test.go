package sql

import (
	"strconv"
	"testing"

	"github.com/syssam/joinsql"
	"github.com/syssam/joinsql/dialect"
)

func benchTree(depth, width int) *joinsql.Source {
	root := joinsql.NewSource("root", "root")
	level := []*joinsql.Source{root}
	for d := 0; d < depth; d++ {
		var next []*joinsql.Source
		for _, s := range level {
			for w := 0; w < width; w++ {
				name := s.Name + "_" + strconv.Itoa(w)
				c := joinsql.NewSource(name, name)
				s.Joins().AddNewJoinTo(c).AddField(name+"_id", "id")
				next = append(next, c)
			}
		}
		level = next
	}
	return root
}

func BenchmarkSourceDB_CreateSQL(b *testing.B) {
	src := NewSourceDB(benchTree(3, 3))
	for _, d := range []string{dialect.SQLite, dialect.MySQL, dialect.Postgres, dialect.SQLServer} {
		f, err := FormatterFor(d)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := src.CreateSQLWith(f); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkJoinList_MergeWith(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		root := benchTree(2, 4)
		if err := root.MergeWith(benchTree(3, 2)); err != nil {
			b.Fatal(err)
		}
	}
}
