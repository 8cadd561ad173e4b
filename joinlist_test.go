package joinsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJoinList(t *testing.T) {
	t.Run("NilSource", func(t *testing.T) {
		l, err := NewJoinList(nil)
		require.Error(t, err)
		assert.Nil(t, l)
		assert.True(t, IsArgumentNull(err))
		var e *ArgumentNullError
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "fromSource", e.Param)
	})

	t.Run("Source", func(t *testing.T) {
		s := NewSource("car", "")
		l, err := NewJoinList(s)
		require.NoError(t, err)
		assert.Same(t, s, l.FromSource())
		assert.Zero(t, l.Len())
	})
}

func TestJoinList_AddNewJoinTo(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		car := NewSource("car", "cars")
		engine := NewSource("engine", "engines")
		j := car.Joins().AddNewJoinTo(engine)
		require.NotNil(t, j)
		assert.Same(t, car, j.FromSource)
		assert.Same(t, engine, j.ToSource)
		assert.Equal(t, InnerJoin, j.Type)
		assert.Empty(t, j.Fields)
		assert.Equal(t, 1, car.Joins().Len())
	})

	t.Run("SameTargetTwice", func(t *testing.T) {
		car := NewSource("car", "cars")
		first := car.Joins().AddNewJoinTo(NewSource("engine", "engines"))
		second := car.Joins().AddNewJoinTo(NewSource("engine", "engines"))
		assert.Equal(t, 1, car.Joins().Len())
		assert.Same(t, first, second)
	})

	t.Run("DifferentEntity", func(t *testing.T) {
		car := NewSource("car", "cars")
		car.Joins().AddNewJoinTo(NewSource("engine", "engines"))
		car.Joins().AddNewJoinTo(NewSource("engine", "motors"))
		assert.Equal(t, 2, car.Joins().Len())
	})

	t.Run("CaseSensitive", func(t *testing.T) {
		car := NewSource("car", "cars")
		car.Joins().AddNewJoinTo(NewSource("engine", "engines"))
		car.Joins().AddNewJoinTo(NewSource("Engine", "engines"))
		assert.Equal(t, 2, car.Joins().Len())
	})

	t.Run("Nil", func(t *testing.T) {
		car := NewSource("car", "cars")
		assert.Nil(t, car.Joins().AddNewJoinTo(nil))
		assert.Zero(t, car.Joins().Len())
	})

	t.Run("WithType", func(t *testing.T) {
		car := NewSource("car", "cars")
		j := car.Joins().AddNewJoinToWithType(NewSource("engine", "engines"), LeftJoin)
		assert.Equal(t, LeftJoin, j.Type)
		again := car.Joins().AddNewJoinToWithType(NewSource("engine", "engines"), InnerJoin)
		assert.Same(t, j, again)
		assert.Equal(t, LeftJoin, again.Type)
	})
}

func TestJoinList_MergeWith(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		car := NewSource("car", "cars")
		car.Joins().AddNewJoinTo(NewSource("engine", "engines"))
		require.NoError(t, car.Joins().MergeWith(nil))
		assert.Equal(t, 1, car.Joins().Len())
	})

	t.Run("Empty", func(t *testing.T) {
		car := NewSource("car", "cars")
		require.NoError(t, car.Joins().MergeWith(NewSource("car", "cars").Joins()))
		assert.Zero(t, car.Joins().Len())
	})

	t.Run("DifferentRoots", func(t *testing.T) {
		car := NewSource("car", "cars")
		other := NewSource("engine", "engines")
		other.Joins().AddNewJoinTo(NewSource("part", "parts"))
		err := car.Joins().MergeWith(other.Joins())
		require.Error(t, err)
		assert.True(t, IsMergeError(err))
		assert.Contains(t, err.Error(), "cannot merge")
		assert.Zero(t, car.Joins().Len())
	})

	t.Run("EmptyListOfDifferentRoot", func(t *testing.T) {
		car := NewSource("car", "cars")
		car.Joins().AddNewJoinTo(NewSource("engine", "engines"))
		err := car.Joins().MergeWith(NewSource("engine", "engines").Joins())
		assert.True(t, IsMergeError(err))
		assert.Equal(t, 1, car.Joins().Len())
		assert.True(t, IsMergeError(car.MergeWith(NewSource("truck", "cars"))))
	})

	t.Run("EmptyNameOnlyMatchesEmptyName", func(t *testing.T) {
		anon := NewSource("", "cars")
		other := NewSource("car", "cars")
		other.Joins().AddNewJoinTo(NewSource("engine", "engines"))
		assert.True(t, IsMergeError(anon.Joins().MergeWith(other.Joins())))

		empty := NewSource("", "cars")
		empty.Joins().AddNewJoinTo(NewSource("engine", "engines"))
		require.NoError(t, anon.Joins().MergeWith(empty.Joins()))
		assert.Equal(t, 1, anon.Joins().Len())
	})

	t.Run("SingleLevelEquivalentTargets", func(t *testing.T) {
		original := NewSource("car", "cars")
		engine := NewSource("engine", "engines")
		original.Joins().AddNewJoinTo(engine).AddField("engine_id", "id")

		other := NewSource("car", "cars")
		otherEngine := NewSource("engine", "engines")
		other.Joins().AddNewJoinTo(otherEngine).AddField("other_id", "id")

		require.NoError(t, original.Joins().MergeWith(other.Joins()))
		require.Equal(t, 1, original.Joins().Len())
		j := original.Joins().At(0)
		assert.Same(t, engine, j.ToSource)
		assert.NotSame(t, otherEngine, j.ToSource)
		assert.Equal(t, []*JoinField{{FromField: "engine_id", ToField: "id"}}, j.Fields)
	})

	t.Run("AppendsMissingJoins", func(t *testing.T) {
		original := NewSource("car", "cars")
		original.Joins().AddNewJoinTo(NewSource("engine", "engines")).AddField("engine_id", "id")

		other := NewSource("car", "cars")
		owner := NewSource("owner", "people")
		other.Joins().AddNewJoinToWithType(owner, LeftJoin).AddField("owner_id", "id")

		require.NoError(t, original.Joins().MergeWith(other.Joins()))
		require.Equal(t, 2, original.Joins().Len())
		j := original.Joins().At(1)
		assert.Same(t, original, j.FromSource)
		assert.Same(t, owner, j.ToSource)
		assert.Equal(t, LeftJoin, j.Type)
		assert.Equal(t, []*JoinField{{FromField: "owner_id", ToField: "id"}}, j.Fields)
		assert.Len(t, other.Joins().At(0).Fields, 1, "merged-in join is left untouched")
	})

	t.Run("TwoLevels", func(t *testing.T) {
		original := NewSource("car", "cars")
		original.Joins().AddNewJoinTo(NewSource("engine", "engines"))

		other := NewSource("car", "cars")
		otherEngine := NewSource("engine", "engines")
		other.Joins().AddNewJoinTo(otherEngine)
		part := NewSource("part", "parts")
		otherEngine.Joins().AddNewJoinTo(part)

		require.NoError(t, original.Joins().MergeWith(other.Joins()))
		require.Equal(t, 1, original.Joins().Len())
		assert.Same(t, part, original.Joins().At(0).ToSource.ChildSource())
		assert.Same(t, part, original.ChildSource().ChildSource())
	})

	t.Run("ThreeLevelsKeepsExistingBranches", func(t *testing.T) {
		original := FromString("car.engine.part")
		other := FromString("car.engine.piston")
		require.NoError(t, original.MergeWith(other))

		engine := original.ChildSource()
		require.Equal(t, 2, engine.Joins().Len())
		assert.Equal(t, "part", engine.Joins().At(0).ToSource.Name)
		assert.Equal(t, "piston", engine.Joins().At(1).ToSource.Name)
	})

	t.Run("Idempotent", func(t *testing.T) {
		original := FromString("car.engine.part")
		require.NoError(t, original.MergeWith(FromString("car.engine.part")))
		require.NoError(t, original.MergeWith(FromString("car.engine.part")))
		assert.Equal(t, "car:car(JOIN[]engine:engine(JOIN[]part:part))", original.Key())
	})
}
