package recipe

import (
	"regexp"
	"strings"
)

// SectionPrefix 食材分組標題前綴
const SectionPrefix = "## "

var (
	quantityPattern = regexp.MustCompile(`^(\d+\s+\d+/\d+|\d+[½¼¾⅓⅔⅛]|\d+(?:[.,]\d+)?(?:/\d+)?(?:\s*[-–]\s*\d+(?:[.,]\d+)?)?|[½¼¾⅓⅔⅛])`)
	bulletPattern   = regexp.MustCompile(`^(?:[-*•·]\s+|\d+[.)]\s+)`)
	unitToken       = regexp.MustCompile(`^([A-Za-zÄÖÜäöüß]+)\.?(?:\s+|$)`)
)

// 常見計量單位（小寫）
var knownUnits = map[string]bool{
	"g": true, "gr": true, "gram": true, "grams": true, "gramm": true,
	"kg": true, "mg": true,
	"ml": true, "cl": true, "dl": true, "l": true,
	"liter": true, "liters": true, "litre": true, "litres": true,
	"tsp": true, "tbsp": true, "tl": true, "el": true,
	"teaspoon": true, "teaspoons": true, "tablespoon": true, "tablespoons": true,
	"cup": true, "cups": true, "tasse": true, "tassen": true,
	"oz": true, "ounce": true, "ounces": true,
	"lb": true, "lbs": true, "pound": true, "pounds": true,
	"qt": true, "quart": true, "quarts": true, "pt": true, "pint": true, "pints": true,
	"pinch": true, "pinches": true, "prise": true, "prisen": true, "msp": true,
	"dash": true, "dashes": true, "spritzer": true,
	"clove": true, "cloves": true, "zehe": true, "zehen": true,
	"can": true, "cans": true, "dose": true, "dosen": true,
	"pkg": true, "package": true, "packages": true, "packet": true, "packets": true,
	"päckchen": true, "pck": true, "pk": true,
	"bunch": true, "bunches": true, "bund": true,
	"slice": true, "slices": true, "scheibe": true, "scheiben": true,
	"piece": true, "pieces": true, "stück": true, "stk": true,
	"handful": true, "handvoll": true,
	"sprig": true, "sprigs": true, "zweig": true, "zweige": true,
	"stick": true, "sticks": true, "becher": true,
}

// IsSectionHeader 判斷是否為 "## " 分組標題
func IsSectionHeader(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), strings.TrimSpace(SectionPrefix))
}

// sectionName 取出分組標題名稱
func sectionName(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "#")
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ":"))
}

// ParseIngredientLine 把一行食材拆成數量、單位與名稱
// 無法辨識數量時整行視為名稱
func ParseIngredientLine(line string) Ingredient {
	text := strings.TrimSpace(bulletPattern.ReplaceAllString(strings.TrimSpace(line), ""))
	ing := Ingredient{Name: text, Text: text}

	qty := quantityPattern.FindString(text)
	if qty == "" {
		return ing
	}
	rest := strings.TrimSpace(text[len(qty):])
	if rest == "" {
		return ing
	}
	// "2x" 之類的倍數寫法
	if strings.HasPrefix(rest, "x ") {
		rest = strings.TrimSpace(rest[1:])
	}

	unit := ""
	if m := unitToken.FindStringSubmatch(rest); m != nil && knownUnits[strings.ToLower(m[1])] {
		remaining := strings.TrimSpace(rest[len(m[0]):])
		if remaining != "" {
			unit = m[1]
			rest = remaining
		}
	}

	ing.Quantity = strings.TrimSpace(qty)
	ing.Unit = unit
	ing.Name = rest
	return ing
}
