package places

// Category keys accepted by the places lookup.
const (
	CategoryFerreteria   = "ferreteria"
	CategoryPintureria   = "pintureria"
	CategoryCorralon     = "corralon"
	CategoryElectricidad = "electricidad"
)

// categoryFilters maps each category to Overpass tag filters. Every filter is
// queried for both nodes and ways.
var categoryFilters = map[string][]string{
	CategoryFerreteria: {
		`["shop"="hardware"]`,
		`["shop"="doityourself"]`,
	},
	CategoryPintureria: {
		`["shop"="paint"]`,
	},
	CategoryCorralon: {
		`["shop"="trade"]["trade"~"building_materials|construction",i]`,
		`["shop"="builder_supply"]`,
		`["shop"="building_materials"]`,
	},
	CategoryElectricidad: {
		`["shop"="electrical"]`,
	},
}

// AllCategories lists the supported categories in display order.
func AllCategories() []string {
	return []string{CategoryFerreteria, CategoryPintureria, CategoryCorralon, CategoryElectricidad}
}

// IsCategory reports whether key names a supported category.
func IsCategory(key string) bool {
	_, ok := categoryFilters[key]
	return ok
}

// labelFor derives the human-readable category from an element's shop tag.
func labelFor(tags map[string]string) string {
	switch tags["shop"] {
	case "hardware", "doityourself":
		return "ferretería"
	case "paint":
		return "pinturería"
	case "electrical":
		return "electricidad"
	case "trade", "builder_supply", "building_materials":
		return "corralón"
	default:
		return "comercio"
	}
}
