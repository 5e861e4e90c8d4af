package table

// Icon names are resolved at config validation time against this enumerated
// registry instead of a string-keyed runtime lookup, so a typo surfaces as a
// validation warning rather than a silently missing glyph.
var iconRegistry = map[string]string{
	"eye":      "icon-eye",
	"edit":     "icon-pencil",
	"trash":    "icon-trash",
	"check":    "icon-check",
	"x":        "icon-x",
	"download": "icon-download",
	"upload":   "icon-upload",
	"refresh":  "icon-refresh",
	"plus":     "icon-plus",
	"search":   "icon-search",
	"filter":   "icon-filter",
	"mail":     "icon-mail",
	"bell":     "icon-bell",
	"map-pin":  "icon-map-pin",
	"truck":    "icon-truck",
	"wallet":   "icon-wallet",
	"ban":      "icon-ban",
}

// KnownIcon reports whether name is registered.
func KnownIcon(name string) bool {
	_, ok := iconRegistry[name]
	return ok
}

// IconClass returns the CSS class for a registered icon name, or an empty
// string for unknown names.
func IconClass(name string) string {
	return iconRegistry[name]
}
