// Package getopt parses command lines against options declared with compact
// descriptor strings.
//
// A descriptor names an option's aliases, how many values it takes, and how
// matched values are bound into a [Result]:
//
//	v|verbose            flag, binds true to "v" and "verbose"
//	o|output{0,1}:path   at most one value, checked by the "path" checker
//	l|level?             value only when attached (--level=2, -l2)
//	p|package*           repeatable, values accumulate
//	h|help[__help__]     binds true to "__help__" only
//	$file+ Input files   positional taking one or more bare values
//
// Descriptors are compiled with [Compile] and registered with a [Registry],
// which tokenizes and binds argument vectors with [Registry.Parse].
package getopt
