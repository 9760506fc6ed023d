package testgen

import "fmt"

// GeneratorEntry is one registered unit of generation work. Entries are
// owned exclusively by their Collection and are immutable after
// registration.
type GeneratorEntry struct {
	name        string
	description string
	repeat      int
	params      Params
	builder     Builder
}

// Name returns the raw declared name of the generator.
func (e *GeneratorEntry) Name() string { return e.name }

// Description returns the optional free-text description.
func (e *GeneratorEntry) Description() string { return e.description }

// Repeat returns the repeat count (>= 1).
func (e *GeneratorEntry) Repeat() int { return e.repeat }

// Params returns the declared parameter set.
func (e *GeneratorEntry) Params() Params { return e.params }

// RegisterOption customizes a registration.
type RegisterOption func(*GeneratorEntry)

// WithDescription attaches a free-text description to the generator. When
// set, the driver also writes it next to the test files as <slug>.desc.
func WithDescription(desc string) RegisterOption {
	return func(e *GeneratorEntry) { e.description = desc }
}

// WithRepeat runs the generator repeat times per parameter assignment,
// each repetition with its own seed and slug.
func WithRepeat(repeat int) RegisterOption {
	return func(e *GeneratorEntry) { e.repeat = repeat }
}

// WithParams declares the generator's parameter sets. The generator runs
// once per element of their cartesian product.
func WithParams(params ...Param) RegisterOption {
	return func(e *GeneratorEntry) { e.params = params }
}

// Collection is an ordered registry of test case generators. It is built
// incrementally as a script declares generators and is read-only during
// generation; it performs no execution itself.
type Collection struct {
	entries []*GeneratorEntry
	names   map[string]struct{}
}

// NewCollection creates an empty test collection.
func NewCollection() *Collection {
	return &Collection{
		names: make(map[string]struct{}),
	}
}

// Register appends a generator entry in declaration order.
//
// Registration is purely additive. Duplicate raw names are a programmer
// error and fail here, eagerly, rather than at generation time.
func (c *Collection) Register(name string, builder Builder, opts ...RegisterOption) error {
	if name == "" {
		return ErrEmptyName
	}
	if builder == nil {
		return ErrNilBuilder.WithDetails("generator " + name)
	}
	if _, exists := c.names[name]; exists {
		return ErrDuplicateName.WithDetails("generator " + name)
	}

	entry := &GeneratorEntry{
		name:    name,
		repeat:  DefaultRepeat,
		builder: builder,
	}
	for _, opt := range opts {
		opt(entry)
	}

	if err := ValidateRepeat(entry.repeat); err != nil {
		return ErrInvalidRepeat.WithDetails(fmt.Sprintf("generator %s: repeat=%d", name, entry.repeat))
	}

	c.names[name] = struct{}{}
	c.entries = append(c.entries, entry)
	return nil
}

// MustRegister is Register for top-of-script declarations: it panics on
// registration errors, which are programmer errors by definition.
func (c *Collection) MustRegister(name string, builder Builder, opts ...RegisterOption) {
	if err := c.Register(name, builder, opts...); err != nil {
		panic(err)
	}
}

// Len returns the number of registered generators.
func (c *Collection) Len() int { return len(c.entries) }

// Entries returns the registered entries in declaration order.
func (c *Collection) Entries() []*GeneratorEntry {
	out := make([]*GeneratorEntry, len(c.entries))
	copy(out, c.entries)
	return out
}
