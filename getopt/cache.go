package getopt

import "sync"

// compiled holds the outcome of compiling one descriptor text.
type compiled struct {
	once sync.Once
	opt  *Option
	err  error
}

// prototypes caches compiled options keyed by descriptor text. Options are
// immutable, so every caller receives its own copy of the cached prototype.
var prototypes sync.Map

// Compile parses a descriptor string into an [Option].
//
// Compilation is pure: the same text always yields the same option shape.
// Results are cached by text and safe to request concurrently. The returned
// option carries id 0 until a [Registry] registers it.
//
// Malformed descriptors fail with an error matching [ErrDescriptor].
func Compile(descriptor string) (*Option, error) {
	v, _ := prototypes.LoadOrStore(descriptor, new(compiled))

	entry, ok := v.(*compiled)
	if !ok {
		return compile(descriptor)
	}

	entry.once.Do(func() {
		entry.opt, entry.err = compile(descriptor)
	})

	if entry.err != nil {
		return nil, entry.err
	}

	return entry.opt.clone(0), nil
}

// MustCompile is like [Compile] but panics on error. It is meant for
// descriptor literals fixed at build time.
func MustCompile(descriptor string) *Option {
	opt, err := Compile(descriptor)
	if err != nil {
		panic(err)
	}

	return opt
}

// ClearCache drops all cached compilations.
func ClearCache() {
	prototypes.Clear()
}
