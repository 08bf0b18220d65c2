package variants

import (
	"testing"

	"catalog-sync-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func makeAttribute(name string, sequence int, valueNames ...string) models.AttributeDefinition {
	attr := models.AttributeDefinition{
		ID:       uuid.New(),
		Name:     name,
		Sequence: sequence,
	}
	for i, vn := range valueNames {
		attr.Values = append(attr.Values, models.AttributeValue{
			ID:          uuid.New(),
			AttributeID: attr.ID,
			Name:        vn,
			Sequence:    i,
		})
	}
	return attr
}

func selectionOf(attr models.AttributeDefinition, valueNames ...string) Selection {
	sel := Selection{Attribute: attr}
	for _, name := range valueNames {
		for _, v := range attr.Values {
			if v.Name == name {
				sel.Values = append(sel.Values, v)
			}
		}
	}
	return sel
}

func TestCombine_CartesianProduct(t *testing.T) {
	color := makeAttribute("Color", 0, "Red", "Blue")
	size := makeAttribute("Size", 1, "S", "M", "L")

	combinations := Combine([]Selection{
		selectionOf(color, "Red", "Blue"),
		selectionOf(size, "S", "M", "L"),
	})

	assert.Len(t, combinations, 6)

	// Rightmost axis varies fastest
	assert.Equal(t, "Red", combinations[0].Values[0].Name)
	assert.Equal(t, "S", combinations[0].Values[1].Name)
	assert.Equal(t, "Red", combinations[1].Values[0].Name)
	assert.Equal(t, "M", combinations[1].Values[1].Name)
	assert.Equal(t, "Blue", combinations[3].Values[0].Name)
	assert.Equal(t, "S", combinations[3].Values[1].Name)

	for i, c := range combinations {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "(Red | Blue) (S | M | L)", c.VariantText)
	}
}

func TestCombine_EmptySelection(t *testing.T) {
	assert.Empty(t, Combine(nil))
	assert.Empty(t, Combine([]Selection{}))

	// An attribute with no picked values does not participate
	color := makeAttribute("Color", 0, "Red")
	assert.Empty(t, Combine([]Selection{{Attribute: color}}))
}

func TestCombine_SingleAttribute(t *testing.T) {
	size := makeAttribute("Size", 1, "S", "M", "L")

	combinations := Combine([]Selection{selectionOf(size, "S", "M", "L")})

	assert.Len(t, combinations, 3)
	assert.Equal(t, "(S | M | L)", combinations[0].VariantText)
	assert.Equal(t, "M", combinations[1].Values[0].Name)
}

func TestCombine_AttributeOrderFollowsSequence(t *testing.T) {
	color := makeAttribute("Color", 0, "Red")
	size := makeAttribute("Size", 1, "S")

	// Selections given out of catalog order still expand in sequence order
	combinations := Combine([]Selection{
		selectionOf(size, "S"),
		selectionOf(color, "Red"),
	})

	assert.Len(t, combinations, 1)
	assert.Equal(t, "Red", combinations[0].Values[0].Name)
	assert.Equal(t, "S", combinations[0].Values[1].Name)
	assert.Equal(t, "(Red) (S)", combinations[0].VariantText)
}

func TestCombine_DuplicateValuesDropped(t *testing.T) {
	color := makeAttribute("Color", 0, "Red", "Blue")
	sel := selectionOf(color, "Red", "Blue")
	sel.Values = append(sel.Values, sel.Values[0])

	combinations := Combine([]Selection{sel})

	assert.Len(t, combinations, 2)
	assert.Equal(t, "(Red | Blue)", combinations[0].VariantText)
}

func TestCombine_ProductLaw(t *testing.T) {
	a := makeAttribute("A", 0, "a1", "a2", "a3")
	b := makeAttribute("B", 1, "b1", "b2")
	c := makeAttribute("C", 2, "c1", "c2", "c3", "c4")

	combinations := Combine([]Selection{
		selectionOf(a, "a1", "a2", "a3"),
		selectionOf(b, "b1", "b2"),
		selectionOf(c, "c1", "c2", "c3", "c4"),
	})

	assert.Len(t, combinations, 3*2*4)

	seen := make(map[string]bool)
	for _, combo := range combinations {
		key := combo.Values[0].Name + "/" + combo.Values[1].Name + "/" + combo.Values[2].Name
		assert.False(t, seen[key], "combination %s appeared twice", key)
		seen[key] = true
	}
}

func TestCombination_PriceExtra(t *testing.T) {
	surcharge := 2.5
	color := makeAttribute("Color", 0, "Red")
	color.Values[0].PriceExtra = &surcharge
	size := makeAttribute("Size", 1, "S")

	combinations := Combine([]Selection{
		selectionOf(color, "Red"),
		selectionOf(size, "S"),
	})

	assert.Len(t, combinations, 1)
	assert.Equal(t, 2.5, combinations[0].PriceExtra())
}

func TestParseVariantText_RoundTrip(t *testing.T) {
	color := makeAttribute("Color", 0, "Red", "Blue")
	size := makeAttribute("Size", 1, "S", "M", "L")
	catalog := []models.AttributeDefinition{color, size}

	selections := []Selection{
		selectionOf(color, "Red", "Blue"),
		selectionOf(size, "S", "M", "L"),
	}
	text := VariantText(selections)
	assert.Equal(t, "(Red | Blue) (S | M | L)", text)

	parsed, err := ParseVariantText(catalog, text)
	assert.NoError(t, err)
	assert.Len(t, parsed, 2)
	assert.Equal(t, "Color", parsed[0].Attribute.Name)
	assert.Equal(t, []string{"Red", "Blue"}, valueNames(parsed[0]))
	assert.Equal(t, "Size", parsed[1].Attribute.Name)
	assert.Equal(t, []string{"S", "M", "L"}, valueNames(parsed[1]))
}

func TestParseVariantText_UnknownValue(t *testing.T) {
	color := makeAttribute("Color", 0, "Red", "Blue")
	catalog := []models.AttributeDefinition{color}

	_, err := ParseVariantText(catalog, "(Red | Purple)")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Purple")
}

func TestParseVariantText_EmptyText(t *testing.T) {
	color := makeAttribute("Color", 0, "Red")
	catalog := []models.AttributeDefinition{color}

	parsed, err := ParseVariantText(catalog, "")
	assert.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestParseVariantText_AmbiguousGroupsClaimInOrder(t *testing.T) {
	// Both attributes carry the value "One"; the first group claims the
	// first attribute, forcing the second group onto the second.
	first := makeAttribute("First", 0, "One", "Two")
	second := makeAttribute("Second", 1, "One", "Three")
	catalog := []models.AttributeDefinition{first, second}

	parsed, err := ParseVariantText(catalog, "(One) (One | Three)")
	assert.NoError(t, err)
	assert.Len(t, parsed, 2)
	assert.Equal(t, "First", parsed[0].Attribute.Name)
	assert.Equal(t, "Second", parsed[1].Attribute.Name)
}

func valueNames(sel Selection) []string {
	names := make([]string, 0, len(sel.Values))
	for _, v := range sel.Values {
		names = append(names, v.Name)
	}
	return names
}
