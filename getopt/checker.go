package getopt

// Checker validates, and may normalize, a value bound to an option that
// names a checker in its descriptor ("port:int", for example).
//
// Check receives the checker name and the matched value, which is a string,
// true for flags, or nil for an optional value that was not given. It
// returns the value to bind, or an error to reject the argument.
type Checker interface {
	Check(name string, value any) (any, error)
}

// CheckerFunc adapts a function to [Checker].
type CheckerFunc func(name string, value any) (any, error)

// Check calls f.
func (f CheckerFunc) Check(name string, value any) (any, error) { return f(name, value) }

// NopChecker accepts every value unchanged. It is used when no checker is
// configured.
var NopChecker Checker = CheckerFunc(func(_ string, value any) (any, error) {
	return value, nil
})
