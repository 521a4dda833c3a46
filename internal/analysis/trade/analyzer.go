// Package trade guesses which kind of store a home-repair question needs, so
// the front end can offer a nearby places lookup.
package trade

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/asistente-hogar/backend/internal/service/places"
)

// keywordBuckets maps a places category to word stems (accent-free,
// lower-case). A stem matches any word starting with it; stems containing a
// space match as a phrase.
var keywordBuckets = map[string][]string{
	places.CategoryFerreteria: {
		"canill", "cuerito", "grifo", "cano", "perdida", "gotea", "goteo", "pierde agua",
		"tornillo", "tarugo", "clavo", "bisagra", "cerradura", "llave de paso", "sifon",
		"destornillador", "taladro", "mecha", "flexible", "teflon", "sellador", "silicona",
		"inodoro", "mochila", "deposito", "picaporte", "herramienta",
	},
	places.CategoryPintureria: {
		"pintur", "pintar", "latex", "esmalte", "barniz", "rodillo", "pincel", "enduido",
		"humedad", "mancha", "hongo", "moho", "impermeabiliz", "membrana", "descascar", "lija",
	},
	places.CategoryCorralon: {
		"cemento", "cal ", "arena", "ladrillo", "revoque", "contrapiso", "hormigon", "ceramic",
		"porcelanato", "pastina", "adhesivo", "durlock", "yeso", "viga", "grieta", "rajadura",
		"fisura", "azulejo", "baldosa",
	},
	places.CategoryElectricidad: {
		"enchufe", "toma corriente", "tomacorriente", "cable", "lampar", "foco", "luz", "luces",
		"termica", "disyuntor", "interruptor", "llave de luz", "zapatilla", "ficha", "tablero",
		"corto", "portalampara", "led",
	},
}

// categoryOrder breaks score ties so the output is stable.
var categoryOrder = []string{
	places.CategoryFerreteria,
	places.CategoryPintureria,
	places.CategoryCorralon,
	places.CategoryElectricidad,
}

// Detect returns the categories whose keywords appear in text, best match first.
func Detect(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	padded := " " + normalized + " "
	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	scores := make(map[string]int)
	for category, stems := range keywordBuckets {
		for _, stem := range stems {
			if strings.Contains(stem, " ") {
				if strings.Contains(padded, " "+stem) {
					scores[category] += 2
				}
				continue
			}
			for _, w := range words {
				if strings.HasPrefix(w, stem) {
					scores[category]++
					break
				}
			}
		}
	}

	matched := make([]string, 0, len(scores))
	for _, category := range categoryOrder {
		if scores[category] > 0 {
			matched = append(matched, category)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return scores[matched[i]] > scores[matched[j]]
	})
	return matched
}

// Normalize lower-cases text, strips diacritics and collapses whitespace.
func Normalize(text string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, strings.ToLower(text))
	if err != nil {
		folded = strings.ToLower(text)
	}
	return strings.Join(strings.Fields(folded), " ")
}
