package flowexpr

import "github.com/randalmurphal/flowexpr/pkg/flowexpr/value"

// Options is the per-call configuration threaded through an evaluation.
// A nil *Options is valid and means no locale and no null substitution.
type Options struct {
	// Locale is a BCP 47 tag passed through to locale-aware functions.
	Locale string

	// NullSubstitution, if set, supplies a replacement when a memory path
	// resolves to a missing value.
	NullSubstitution func(path string) value.Value
}

// LocaleOnly returns a copy with the same locale and no null substitution.
func (o *Options) LocaleOnly() *Options {
	if o == nil {
		return nil
	}
	if o.NullSubstitution == nil {
		return o
	}
	return &Options{Locale: o.Locale}
}

// locale returns the locale tag, or "" for nil options.
func (o *Options) locale() string {
	if o == nil {
		return ""
	}
	return o.Locale
}

// substitute applies the null substitution hook to path, if one is set.
func (o *Options) substitute(path string) (value.Value, bool) {
	if o == nil || o.NullSubstitution == nil {
		return nil, false
	}
	return value.OrMissing(o.NullSubstitution(path)), true
}
