package param

import (
	"slices"

	"github.com/ardnew/argot/getopt"
)

// Converter concatenates the output of an ordered list of parameters.
type Converter struct {
	params []Param
}

// NewConverter compiles each descriptor, stopping at the first error.
func NewConverter(descriptors ...string) (*Converter, error) {
	c := &Converter{params: make([]Param, 0, len(descriptors))}

	for _, d := range descriptors {
		p, err := Compile(d)
		if err != nil {
			return nil, err
		}

		c.params = append(c.params, p)
	}

	return c, nil
}

// Params returns the compiled parameters in order.
func (c *Converter) Params() []Param { return slices.Clone(c.params) }

// Convert returns every parameter's arguments, in descriptor order.
func (c *Converter) Convert(result getopt.Result, args []string) []string {
	out := []string{}

	for _, p := range c.params {
		out = append(out, p.Args(result, args)...)
	}

	return out
}
