package variants

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"catalog-sync-service/internal/models"
	"github.com/google/uuid"
)

// Selection holds the values a user picked for one attribute. Attributes with
// no picked values do not participate in the expansion.
type Selection struct {
	Attribute models.AttributeDefinition `json:"attribute"`
	Values    []models.AttributeValue    `json:"values"`
}

// Combination is one leaf of the Cartesian expansion: exactly one value per
// participating attribute, in attribute declaration order. VariantText is the
// group-level descriptor shared by every combination of the same expansion;
// Values carries this combination's own identity.
type Combination struct {
	Values      []models.AttributeValue `json:"values"`
	VariantText string                  `json:"variantText"`
	Index       int                     `json:"index"`
}

// PriceExtra sums the price surcharges of this combination's values
func (c Combination) PriceExtra() float64 {
	var total float64
	for _, v := range c.Values {
		if v.PriceExtra != nil {
			total += *v.PriceExtra
		}
	}
	return total
}

// Combine expands the selection into the full Cartesian product of variant
// combinations. Attributes are processed in catalog declaration order
// (Sequence), values keep the order they were given in, and duplicate values
// within one attribute are dropped. An empty selection yields no combinations,
// never a single default one.
func Combine(selections []Selection) []Combination {
	participating := make([]Selection, 0, len(selections))
	for _, sel := range selections {
		values := dedupeValues(sel.Values)
		if len(values) == 0 {
			continue
		}
		participating = append(participating, Selection{Attribute: sel.Attribute, Values: values})
	}
	if len(participating) == 0 {
		return []Combination{}
	}

	sort.SliceStable(participating, func(i, j int) bool {
		return participating[i].Attribute.Sequence < participating[j].Attribute.Sequence
	})

	text := VariantText(participating)

	total := 1
	for _, sel := range participating {
		total *= len(sel.Values)
	}

	combinations := make([]Combination, 0, total)
	indexes := make([]int, len(participating))
	for i := 0; i < total; i++ {
		values := make([]models.AttributeValue, len(participating))
		for pos, sel := range participating {
			values[pos] = sel.Values[indexes[pos]]
		}
		combinations = append(combinations, Combination{
			Values:      values,
			VariantText: text,
			Index:       i,
		})

		// Advance the rightmost axis first so output order matches the
		// nesting of the selection.
		for pos := len(participating) - 1; pos >= 0; pos-- {
			indexes[pos]++
			if indexes[pos] < len(participating[pos].Values) {
				break
			}
			indexes[pos] = 0
		}
	}

	return combinations
}

// VariantText renders the canonical descriptor for a set of participating
// selections: one bracketed, pipe-joined group per attribute, in the order
// given. The group lists the attribute's full selected set, not a single
// combination's value.
func VariantText(participating []Selection) string {
	groups := make([]string, 0, len(participating))
	for _, sel := range participating {
		names := make([]string, 0, len(sel.Values))
		for _, v := range sel.Values {
			names = append(names, v.Name)
		}
		groups = append(groups, "("+strings.Join(names, " | ")+")")
	}
	return strings.Join(groups, " ")
}

var variantGroupPattern = regexp.MustCompile(`\(([^)]*)\)`)

// ParseVariantText resolves a variant descriptor back to per-attribute value
// sets against the given catalog. Each bracketed group is assigned to the
// first attribute (in declaration order) whose values cover every name in the
// group. Names that resolve to no attribute are an error, never dropped.
func ParseVariantText(catalog []models.AttributeDefinition, text string) ([]Selection, error) {
	matches := variantGroupPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return []Selection{}, nil
	}

	ordered := make([]models.AttributeDefinition, len(catalog))
	copy(ordered, catalog)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})

	selections := make([]Selection, 0, len(matches))
	claimed := make(map[uuid.UUID]bool)

	for _, m := range matches {
		names := splitGroup(m[1])
		if len(names) == 0 {
			continue
		}

		var resolved *Selection
		for _, attr := range ordered {
			if claimed[attr.ID] {
				continue
			}
			values, ok := lookupValues(attr, names)
			if !ok {
				continue
			}
			resolved = &Selection{Attribute: attr, Values: values}
			claimed[attr.ID] = true
			break
		}

		if resolved == nil {
			return nil, fmt.Errorf("no attribute matches values %q", strings.Join(names, ", "))
		}
		selections = append(selections, *resolved)
	}

	return selections, nil
}

// dedupeValues removes duplicate values by ID, preserving first occurrence order
func dedupeValues(values []models.AttributeValue) []models.AttributeValue {
	seen := make(map[uuid.UUID]bool, len(values))
	out := make([]models.AttributeValue, 0, len(values))
	for _, v := range values {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	return out
}

func splitGroup(group string) []string {
	parts := strings.Split(group, "|")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func lookupValues(attr models.AttributeDefinition, names []string) ([]models.AttributeValue, bool) {
	byName := make(map[string]models.AttributeValue, len(attr.Values))
	for _, v := range attr.Values {
		byName[v.Name] = v
	}

	values := make([]models.AttributeValue, 0, len(names))
	for _, name := range names {
		v, ok := byName[name]
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}
