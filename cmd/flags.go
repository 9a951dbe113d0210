package cmd

import (
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/tblx/internal/orderby"
)

// orderFlag parses "name,-other,third:desc" into an orderby.Spec.
type orderFlag struct {
	spec orderby.Spec
}

var _ pflag.Value = (*orderFlag)(nil)

func (f *orderFlag) String() string {
	if f == nil {
		return ""
	}
	return f.spec.String()
}

func (f *orderFlag) Set(s string) error {
	spec, err := orderby.Parse(s)
	if err != nil {
		return err
	}
	f.spec = spec
	return nil
}

func (f *orderFlag) Type() string {
	return "order"
}

// Spec returns the parsed ordering, never nil.
func (f *orderFlag) Spec() orderby.Spec {
	if f.spec == nil {
		return orderby.Spec{}
	}
	return f.spec
}
