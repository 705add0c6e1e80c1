package domain

// MatchVariable compares a message's attributes against a catalog and returns
// the first entry whose declared attributes are all defined on the message and
// equal to their expected values under the expected value's own type. Extra
// attributes on the message are ignored. Iteration stops at the first match;
// catalogs are curated so entries are mutually exclusive, and when they are
// not, the earliest entry wins.
func MatchVariable(msg Message, catalog []VariableSpec) (VariableSpec, bool) {
	for _, spec := range catalog {
		if matchesSpec(msg, spec) {
			return spec, true
		}
	}
	return VariableSpec{}, false
}

// matchesSpec reports whether every declared attribute matches exactly.
// Any failed read (undefined, wrong type, decode error) rejects the spec.
func matchesSpec(msg Message, spec VariableSpec) bool {
	for _, attr := range spec.Match {
		if !msg.IsDefined(attr.Name) {
			return false
		}
		if !attrEquals(msg, attr) {
			return false
		}
	}
	return true
}

func attrEquals(msg Message, attr Attribute) bool {
	switch attr.Value.Kind {
	case AttrString:
		got, err := msg.GetString(attr.Name)
		return err == nil && got == attr.Value.Str
	case AttrInt:
		got, err := msg.GetInt(attr.Name)
		return err == nil && got == attr.Value.Int
	case AttrFloat:
		got, err := msg.GetFloat(attr.Name)
		return err == nil && got == attr.Value.Float
	default:
		return false
	}
}
