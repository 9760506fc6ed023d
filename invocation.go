package testgen

import "fmt"

// Invocation is one fully resolved unit of generation work: a generator
// entry, one parameter assignment out of its cartesian product, and a
// repeat index. The triple fully determines the derived seed, the resolved
// slug and the arguments passed to the builder.
type Invocation struct {
	Entry       *GeneratorEntry
	Assignment  Assignment
	RepeatIndex int
	Slug        string
	Seed        Seed
}

// buildPlan expands every registered entry, in declaration order, into the
// full sequence of invocations with their slugs and seeds resolved up
// front. Slug collisions across the whole plan are a fatal configuration
// error and are detected here, before any file is written.
func buildPlan(c *Collection, collectionID uint64) ([]Invocation, error) {
	if c.Len() == 0 {
		return nil, ErrEmptyCollection
	}

	var plan []Invocation
	seen := make(map[string]Invocation)

	for _, entry := range c.Entries() {
		for _, assignment := range entry.Params().Expand() {
			for repeatIdx := 0; repeatIdx < entry.Repeat(); repeatIdx++ {
				slug, err := resolveSlug(entry.Name(), assignment, repeatIdx, entry.Repeat())
				if err != nil {
					return nil, err
				}

				if prev, collides := seen[slug]; collides {
					return nil, ErrSlugCollision.
						WithSlug(slug).
						WithDetails(fmt.Sprintf(
							"generator %s (params: %s, repeat %d) collides with generator %s (params: %s, repeat %d)",
							entry.Name(), assignment.Describe(), repeatIdx,
							prev.Entry.Name(), prev.Assignment.Describe(), prev.RepeatIndex,
						))
				}

				inv := Invocation{
					Entry:       entry,
					Assignment:  assignment,
					RepeatIndex: repeatIdx,
					Slug:        slug,
					Seed:        deriveSeed(collectionID, entry.Name(), assignment, repeatIdx),
				}
				seen[slug] = inv
				plan = append(plan, inv)
			}
		}
	}

	return plan, nil
}
