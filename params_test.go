package testgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsExpand(t *testing.T) {
	t.Run("empty_params_yield_one_empty_assignment", func(t *testing.T) {
		assignments := Params{}.Expand()

		require.Len(t, assignments, 1)
		assert.Empty(t, assignments[0])
	})

	t.Run("cartesian_completeness", func(t *testing.T) {
		params := Params{
			P("a", 1, 2),
			P("b", "x", "y"),
		}

		assignments := params.Expand()
		require.Len(t, assignments, 4)

		got := make(map[string]bool)
		for _, a := range assignments {
			got[a.Describe()] = true
		}
		assert.True(t, got["a=1, b=x"])
		assert.True(t, got["a=1, b=y"])
		assert.True(t, got["a=2, b=x"])
		assert.True(t, got["a=2, b=y"])
	})

	t.Run("lexicographic_order_last_param_fastest", func(t *testing.T) {
		params := Params{
			P("a", 1, 2),
			P("b", "x", "y"),
		}

		assignments := params.Expand()
		require.Len(t, assignments, 4)
		assert.Equal(t, "a=1, b=x", assignments[0].Describe())
		assert.Equal(t, "a=1, b=y", assignments[1].Describe())
		assert.Equal(t, "a=2, b=x", assignments[2].Describe())
		assert.Equal(t, "a=2, b=y", assignments[3].Describe())
	})

	t.Run("single_param_preserves_value_order", func(t *testing.T) {
		assignments := Params{P("n", 3, 1, 2)}.Expand()

		require.Len(t, assignments, 3)
		assert.Equal(t, 3, assignments[0].Int("n"))
		assert.Equal(t, 1, assignments[1].Int("n"))
		assert.Equal(t, 2, assignments[2].Int("n"))
	})

	t.Run("param_with_no_values_yields_nothing", func(t *testing.T) {
		assignments := Params{P("a", 1, 2), P("b")}.Expand()

		assert.Empty(t, assignments)
	})

	t.Run("expand_is_pure", func(t *testing.T) {
		params := Params{P("a", 1, 2), P("b", "x")}

		first := params.Expand()
		second := params.Expand()
		assert.Equal(t, first, second)
	})
}

func TestAssignmentGetters(t *testing.T) {
	a := Assignment{
		{Name: "length", Value: 7},
		{Name: "label", Value: "big"},
		{Name: "ratio", Value: 0.5},
		{Name: "strict", Value: true},
	}

	assert.Equal(t, 7, a.Int("length"))
	assert.Equal(t, int64(7), a.Int64("length"))
	assert.Equal(t, "big", a.String("label"))
	assert.Equal(t, 0.5, a.Float64("ratio"))
	assert.True(t, a.Bool("strict"))

	t.Run("missing_name_yields_zero_value", func(t *testing.T) {
		assert.Equal(t, 0, a.Int("nope"))
		assert.Equal(t, "", a.String("nope"))

		_, ok := a.Get("nope")
		assert.False(t, ok)
	})

	t.Run("string_values_convert_to_numbers", func(t *testing.T) {
		b := Assignment{{Name: "n", Value: "42"}}
		assert.Equal(t, 42, b.Int("n"))
	})
}

func TestAssignmentSortedByName(t *testing.T) {
	a := Assignment{
		{Name: "z", Value: 1},
		{Name: "a", Value: 2},
		{Name: "m", Value: 3},
	}

	sorted := a.sortedByName()
	assert.Equal(t, "a", sorted[0].Name)
	assert.Equal(t, "m", sorted[1].Name)
	assert.Equal(t, "z", sorted[2].Name)

	// The original keeps declaration order.
	assert.Equal(t, "z", a[0].Name)
}
