package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"PT30M", 30, true},
		{"PT1H30M", 90, true},
		{"pt2h", 120, true},
		{"P1DT2H", 1560, true},
		{"PT90S", 2, true},
		{"PT0M", 0, false},
		{"P", 0, false},
		{"45 min", 45, true},
		{"45 minutes", 45, true},
		{"1h", 60, true},
		{"1h 30 min", 90, true},
		{"1 hour and 15 minutes", 75, true},
		{"1.5 hours", 90, true},
		{"2 Std. 10 Min.", 130, true},
		{"20 Minuten", 20, true},
		{"10-15 min", 0, false},
		{"overnight", 0, false},
		{"15 min plus resting", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDuration(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalizeDuration(t *testing.T) {
	assert.Equal(t, "45 min", NormalizeDuration("PT45M"))
	assert.Equal(t, "1h", NormalizeDuration("60 minutes"))
	assert.Equal(t, "1h 30 min", NormalizeDuration("PT1H30M"))
	assert.Equal(t, "1h 30 min", NormalizeDuration("1h 30 min"))
	assert.Equal(t, "overnight", NormalizeDuration(" overnight "))
	assert.Equal(t, "", NormalizeDuration("PT0S"))
}

func TestParseIngredientLine(t *testing.T) {
	tests := []struct {
		in   string
		want Ingredient
	}{
		{"400g Spaghetti", Ingredient{Quantity: "400", Unit: "g", Name: "Spaghetti"}},
		{"4 egg yolks", Ingredient{Quantity: "4", Name: "egg yolks"}},
		{"1 1/2 cups flour", Ingredient{Quantity: "1 1/2", Unit: "cups", Name: "flour"}},
		{"200-250g Butter", Ingredient{Quantity: "200-250", Unit: "g", Name: "Butter"}},
		{"2 EL Öl", Ingredient{Quantity: "2", Unit: "EL", Name: "Öl"}},
		{"½ tsp salt", Ingredient{Quantity: "½", Unit: "tsp", Name: "salt"}},
		{"1,5 kg Kartoffeln", Ingredient{Quantity: "1,5", Unit: "kg", Name: "Kartoffeln"}},
		{"2 cups", Ingredient{Quantity: "2", Name: "cups"}},
		{"• 3 cloves garlic, minced", Ingredient{Quantity: "3", Unit: "cloves", Name: "garlic, minced"}},
		{"1. 200 g flour", Ingredient{Quantity: "200", Unit: "g", Name: "flour"}},
		{"2) 3 eggs", Ingredient{Quantity: "3", Name: "eggs"}},
		{"1.5 kg Kartoffeln", Ingredient{Quantity: "1.5", Unit: "kg", Name: "Kartoffeln"}},
		{"Salt and pepper", Ingredient{Name: "Salt and pepper"}},
		{"12", Ingredient{Name: "12"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseIngredientLine(tt.in)
			assert.Equal(t, tt.want.Quantity, got.Quantity)
			assert.Equal(t, tt.want.Unit, got.Unit)
			assert.Equal(t, tt.want.Name, got.Name)
		})
	}
}

func TestNormalizeDifficulty(t *testing.T) {
	assert.Equal(t, DifficultyEasy, NormalizeDifficulty("Simple"))
	assert.Equal(t, DifficultyHard, NormalizeDifficulty("schwer"))
	assert.Equal(t, DifficultyMedium, NormalizeDifficulty(""))
	assert.Equal(t, DifficultyMedium, NormalizeDifficulty("whatever"))
}
