// Package locale holds the translation tables for every label the engine can
// hand to a presentation layer. Classification code never calls into this
// package; it works on canonical keys only.
package locale

import "strings"

const (
	German  = "de"
	English = "en"

	// Default is used whenever a label is missing in the requested locale
	Default = German
)

// Supported lists the locale codes with complete tables, in display order
var Supported = []string{German, English}

// Label keys shared outside the holiday and shift tables
const (
	KeyRepentanceDay = "repentanceDay"
	KeyVacation      = "vacation"
	KeyHoliday       = "holiday"
)

var tables = map[string]map[string]string{
	German: {
		// holidays
		"newYear":          "Neujahr",
		"epiphany":         "Heilige Drei Könige",
		"labourDay":        "Tag der Arbeit",
		"assumption":       "Mariä Himmelfahrt",
		"unityDay":         "Tag der Deutschen Einheit",
		"allSaints":        "Allerheiligen",
		"christmasEve":     "Heiligabend",
		"christmasDay1":    "1. Weihnachtstag",
		"christmasDay2":    "2. Weihnachtstag",
		"newYearsEve":      "Silvester",
		"goodFriday":       "Karfreitag",
		"easterSunday":     "Ostersonntag",
		"easterMonday":     "Ostermontag",
		"ascension":        "Christi Himmelfahrt",
		"whitSunday":       "Pfingstsonntag",
		"whitMonday":       "Pfingstmontag",
		"corpusChristi":    "Fronleichnam",
		KeyRepentanceDay:   "Buß- und Bettag",
		KeyVacation:        "Urlaub",
		KeyHoliday:         "Feiertag",
		// shifts
		"shift.EARLY":    "Früh",
		"shift.LATE":     "Spät",
		"shift.NIGHT":    "Nacht",
		"shift.FREE":     "Frei",
		"shift.SATURDAY": "Samstag",
		"shift.SUNDAY":   "Sonntag",
		// vacation types
		"vacationType.1": "Tarifurlaub",
		"vacationType.2": "Gleitzeit",
		"vacationType.3": "Dienstreise",
		"vacationType.4": "Schulung",
		"vacationType.5": "Tarifliche Freistellung",
		"vacationType.6": "Unbezahlter Urlaub",
		"vacationType.7": "Krank",
	},
	English: {
		"newYear":          "New Year's Day",
		"epiphany":         "Epiphany",
		"labourDay":        "Labour Day",
		"assumption":       "Assumption Day",
		"unityDay":         "German Unity Day",
		"allSaints":        "All Saints' Day",
		"christmasEve":     "Christmas Eve",
		"christmasDay1":    "Christmas Day",
		"christmasDay2":    "Boxing Day",
		"newYearsEve":      "New Year's Eve",
		"goodFriday":       "Good Friday",
		"easterSunday":     "Easter Sunday",
		"easterMonday":     "Easter Monday",
		"ascension":        "Ascension Day",
		"whitSunday":       "Whit Sunday",
		"whitMonday":       "Whit Monday",
		"corpusChristi":    "Corpus Christi",
		KeyRepentanceDay:   "Day of Repentance and Prayer",
		KeyVacation:        "Vacation",
		KeyHoliday:         "Holiday",
		"shift.EARLY":      "Early",
		"shift.LATE":       "Late",
		"shift.NIGHT":      "Night",
		"shift.FREE":       "Free",
		"shift.SATURDAY":   "Saturday",
		"shift.SUNDAY":     "Sunday",
		"vacationType.1":   "Tariff leave",
		"vacationType.2":   "Flex-time",
		"vacationType.3":   "Business trip",
		"vacationType.4":   "Training",
		"vacationType.5":   "Tariff exemption",
		"vacationType.6":   "Unpaid leave",
		"vacationType.7":   "Sick",
	},
}

// IsSupported reports whether code has its own table
func IsSupported(code string) bool {
	_, ok := tables[Normalize(code)]
	return ok
}

// Normalize lower-cases a locale code and strips a region suffix ("de-DE" -> "de")
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}

// Label returns the display string for key in the given locale.
// Falls back to the default locale, then to the key itself.
func Label(key, code string) string {
	if table, ok := tables[Normalize(code)]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	if s, ok := tables[Default][key]; ok {
		return s
	}
	return key
}

// Names returns key translated into every supported locale
func Names(key string) map[string]string {
	names := make(map[string]string, len(Supported))
	for _, code := range Supported {
		names[code] = Label(key, code)
	}
	return names
}
