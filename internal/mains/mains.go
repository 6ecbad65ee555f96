// Package mains resolves the local electrical mains frequency so measured
// hum can be compared against what the recording room should radiate.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// fallbackHz is used whenever the timezone cannot be resolved to a country.
// Most of the world runs 50Hz mains.
const fallbackHz = 50

// Local returns the mains frequency in Hz (50 or 60) for the machine's
// configured timezone.
func Local() int {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return fallbackHz
	}
	return ForTimezone(timezone)
}

// ForTimezone returns the mains frequency for a given IANA timezone.
func ForTimezone(timezone string) int {
	// UTC/GMT carry no country association
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return fallbackHz
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return fallbackHz
	}

	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return fallbackHz
	}

	// Japan is split 50/60Hz by region; the Tokyo side is 50Hz and most
	// populous, so resolve the whole country to 50.
	if country == "Japan" {
		return fallbackHz
	}

	if sixtyHertz[country] {
		return 60
	}
	return fallbackHz
}

// sixtyHertz lists countries on 60Hz mains; everywhere else is 50Hz.
// Source: https://en.wikipedia.org/wiki/Mains_electricity_by_country
var sixtyHertz = map[string]bool{
	// North America
	"United States": true,
	"Canada":        true,
	"Mexico":        true,

	// Central America
	"Belize":      true,
	"Costa Rica":  true,
	"El Salvador": true,
	"Guatemala":   true,
	"Honduras":    true,
	"Nicaragua":   true,
	"Panama":      true,

	// Caribbean
	"Bahamas":             true,
	"Barbados":            true,
	"Cayman Islands":      true,
	"Cuba":                true,
	"Dominican Republic":  true,
	"Haiti":               true,
	"Jamaica":             true,
	"Puerto Rico":         true,
	"Trinidad and Tobago": true,
	"U.S. Virgin Islands": true,

	// South America (most of the continent is 50Hz)
	"Brazil":    true, // both grids exist, 60Hz predominant
	"Colombia":  true,
	"Ecuador":   true,
	"Guyana":    true,
	"Peru":      true,
	"Suriname":  true,
	"Venezuela": true,

	// Asia
	"South Korea":  true,
	"Taiwan":       true,
	"Philippines":  true,
	"Saudi Arabia": true,

	// Pacific
	"Guam":             true,
	"American Samoa":   true,
	"Marshall Islands": true,
	"Micronesia":       true,
	"Palau":            true,
}
