package testgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopBuilder(rnd *Rand, params Assignment) (TestCase, error) {
	return fixedCase{data: "1\n"}, nil
}

func TestCollectionRegister(t *testing.T) {
	t.Run("entries_keep_declaration_order", func(t *testing.T) {
		c := NewCollection()

		require.NoError(t, c.Register("gen_b", nopBuilder))
		require.NoError(t, c.Register("gen_a", nopBuilder))
		require.NoError(t, c.Register("gen_c", nopBuilder))

		entries := c.Entries()
		require.Len(t, entries, 3)
		assert.Equal(t, "gen_b", entries[0].Name())
		assert.Equal(t, "gen_a", entries[1].Name())
		assert.Equal(t, "gen_c", entries[2].Name())
	})

	t.Run("duplicate_name_fails_eagerly", func(t *testing.T) {
		c := NewCollection()

		require.NoError(t, c.Register("foo", nopBuilder))
		err := c.Register("foo", nopBuilder)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateName))
		assert.Equal(t, 1, c.Len())
	})

	t.Run("empty_name_rejected", func(t *testing.T) {
		c := NewCollection()

		err := c.Register("", nopBuilder)
		assert.True(t, errors.Is(err, ErrEmptyName))
	})

	t.Run("nil_builder_rejected", func(t *testing.T) {
		c := NewCollection()

		err := c.Register("foo", nil)
		assert.True(t, errors.Is(err, ErrNilBuilder))
	})

	t.Run("options_applied", func(t *testing.T) {
		c := NewCollection()

		require.NoError(t, c.Register("foo", nopBuilder,
			WithDescription("max sized array filled with ones"),
			WithRepeat(3),
			WithParams(P("n", 1, 2)),
		))

		entry := c.Entries()[0]
		assert.Equal(t, "max sized array filled with ones", entry.Description())
		assert.Equal(t, 3, entry.Repeat())
		require.Len(t, entry.Params(), 1)
		assert.Equal(t, "n", entry.Params()[0].Name)
	})

	t.Run("invalid_repeat_rejected", func(t *testing.T) {
		c := NewCollection()

		err := c.Register("foo", nopBuilder, WithRepeat(0))
		assert.True(t, errors.Is(err, ErrInvalidRepeat))

		err = c.Register("bar", nopBuilder, WithRepeat(-1))
		assert.True(t, errors.Is(err, ErrInvalidRepeat))

		err = c.Register("baz", nopBuilder, WithRepeat(MaxRepeat+1))
		assert.True(t, errors.Is(err, ErrInvalidRepeat))
	})

	t.Run("must_register_panics_on_error", func(t *testing.T) {
		c := NewCollection()
		c.MustRegister("foo", nopBuilder)

		assert.Panics(t, func() {
			c.MustRegister("foo", nopBuilder)
		})
	})

	t.Run("entries_returns_a_copy", func(t *testing.T) {
		c := NewCollection()
		require.NoError(t, c.Register("foo", nopBuilder))

		entries := c.Entries()
		entries[0] = nil
		assert.NotNil(t, c.Entries()[0])
	})
}

func TestBuildPlan(t *testing.T) {
	t.Run("empty_collection_is_an_error", func(t *testing.T) {
		_, err := buildPlan(NewCollection(), 42)

		assert.True(t, errors.Is(err, ErrEmptyCollection))
	})

	t.Run("expands_params_and_repeats", func(t *testing.T) {
		c := NewCollection()
		require.NoError(t, c.Register("gen", nopBuilder,
			WithParams(P("a", 1, 2), P("b", "x", "y")),
			WithRepeat(2),
		))

		plan, err := buildPlan(c, 42)
		require.NoError(t, err)
		assert.Len(t, plan, 8)

		slugs := make(map[string]struct{})
		for _, inv := range plan {
			slugs[inv.Slug] = struct{}{}
		}
		assert.Len(t, slugs, 8, "all slugs must be pairwise distinct")
	})

	t.Run("slug_collision_detected_before_generation", func(t *testing.T) {
		c := NewCollection()
		require.NoError(t, c.Register("foo_bar", nopBuilder))
		require.NoError(t, c.Register("foo-bar", nopBuilder))

		_, err := buildPlan(c, 42)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSlugCollision))
	})

	t.Run("seed_and_slug_independent_of_unrelated_registrations", func(t *testing.T) {
		first := NewCollection()
		require.NoError(t, first.Register("alpha", nopBuilder))
		require.NoError(t, first.Register("beta", nopBuilder, WithRepeat(2)))

		second := NewCollection()
		require.NoError(t, second.Register("beta", nopBuilder, WithRepeat(2)))
		require.NoError(t, second.Register("alpha", nopBuilder))

		planA, err := buildPlan(first, 42)
		require.NoError(t, err)
		planB, err := buildPlan(second, 42)
		require.NoError(t, err)

		bySlugA := make(map[string]Seed)
		for _, inv := range planA {
			bySlugA[inv.Slug] = inv.Seed
		}
		for _, inv := range planB {
			seed, ok := bySlugA[inv.Slug]
			require.True(t, ok, "slug %s missing from reordered plan", inv.Slug)
			assert.Equal(t, seed, inv.Seed)
		}
	})
}
