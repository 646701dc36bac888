package domain

// Selection records the chosen option(s) for a single variant. The kind
// mirrors the variant's kind: single selections carry exactly one option
// id, multiple selections carry zero or more.
type Selection struct {
	Kind    VariantKind
	Option  string
	Options []string
}

// SingleSelection builds a single-choice selection.
func SingleSelection(optionID string) Selection {
	return Selection{Kind: VariantSingle, Option: optionID}
}

// MultiSelection builds a multi-choice selection.
func MultiSelection(optionIDs ...string) Selection {
	ids := make([]string, len(optionIDs))
	copy(ids, optionIDs)
	return Selection{Kind: VariantMultiple, Options: ids}
}

// OptionIDs returns the selected option identifiers regardless of kind.
func (s Selection) OptionIDs() []string {
	if s.Kind == VariantSingle {
		if s.Option == "" {
			return nil
		}
		return []string{s.Option}
	}
	if len(s.Options) == 0 {
		return nil
	}
	ids := make([]string, len(s.Options))
	copy(ids, s.Options)
	return ids
}

// Equal reports whether two selections are identical. Shape mismatches
// (single vs multiple) are never equal. Multi selections compare as
// multisets, so ordering is irrelevant but duplicates are counted.
func (s Selection) Equal(other Selection) bool {
	if s.Kind != other.Kind {
		return false
	}
	if s.Kind == VariantSingle {
		return s.Option == other.Option
	}
	if len(s.Options) != len(other.Options) {
		return false
	}
	counts := make(map[string]int, len(s.Options))
	for _, id := range s.Options {
		counts[id]++
	}
	for _, id := range other.Options {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}

// SelectedOptions maps variant ids to the user's selection for that
// variant. Partial maps are tolerated: a variant absent from the map
// contributes no price delta.
type SelectedOptions map[string]Selection

// Equal reports whether both selection sets cover the same variants with
// identical selections per variant.
func (s SelectedOptions) Equal(other SelectedOptions) bool {
	if len(s) != len(other) {
		return false
	}
	for variantID, sel := range s {
		otherSel, ok := other[variantID]
		if !ok || !sel.Equal(otherSel) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so cart lines never alias caller state.
func (s SelectedOptions) Clone() SelectedOptions {
	if s == nil {
		return nil
	}
	out := make(SelectedOptions, len(s))
	for variantID, sel := range s {
		out[variantID] = Selection{
			Kind:    sel.Kind,
			Option:  sel.Option,
			Options: append([]string(nil), sel.Options...),
		}
	}
	return out
}

// Merge layers explicit selections over defaults: every entry of
// overrides wins, entries only present in s are kept.
func (s SelectedOptions) Merge(overrides SelectedOptions) SelectedOptions {
	if len(s) == 0 {
		return overrides.Clone()
	}
	merged := s.Clone()
	for variantID, sel := range overrides {
		merged[variantID] = Selection{
			Kind:    sel.Kind,
			Option:  sel.Option,
			Options: append([]string(nil), sel.Options...),
		}
	}
	return merged
}
