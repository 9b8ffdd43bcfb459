package forecast

import "strings"

// Descriptions is a set of known condition descriptions keyed by their normalized form
type Descriptions map[string]string

// NewDescriptions builds a set from canonical spellings
func NewDescriptions(canonical ...string) Descriptions {
	d := make(Descriptions, len(canonical))
	for _, c := range canonical {
		d[normalize(c)] = c
	}
	return d
}

// Canonical returns the canonical spelling of desc and whether it is known
func (d Descriptions) Canonical(desc string) (string, bool) {
	c, ok := d[normalize(desc)]
	return c, ok
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// AllDescriptions are the condition descriptions OpenWeatherMap reports
var AllDescriptions = NewDescriptions(
	// thunderstorm
	"thunderstorm with light rain",
	"thunderstorm with rain",
	"thunderstorm with heavy rain",
	"light thunderstorm",
	"thunderstorm",
	"heavy thunderstorm",
	"ragged thunderstorm",
	"thunderstorm with light drizzle",
	"thunderstorm with drizzle",
	"thunderstorm with heavy drizzle",
	// drizzle
	"light intensity drizzle",
	"drizzle",
	"heavy intensity drizzle",
	"light intensity drizzle rain",
	"drizzle rain",
	"heavy intensity drizzle rain",
	"shower rain and drizzle",
	"heavy shower rain and drizzle",
	"shower drizzle",
	// rain
	"light rain",
	"moderate rain",
	"heavy intensity rain",
	"very heavy rain",
	"extreme rain",
	"freezing rain",
	"light intensity shower rain",
	"shower rain",
	"heavy intensity shower rain",
	"ragged shower rain",
	// snow
	"light snow",
	"snow",
	"heavy snow",
	"sleet",
	"light shower sleet",
	"shower sleet",
	"light rain and snow",
	"rain and snow",
	"light shower snow",
	"shower snow",
	"heavy shower snow",
	// atmosphere
	"mist",
	"smoke",
	"haze",
	"sand/dust whirls",
	"fog",
	"sand",
	"dust",
	"volcanic ash",
	"squalls",
	"tornado",
	// clear and clouds
	"clear sky",
	"few clouds",
	"scattered clouds",
	"broken clouds",
	"overcast clouds",
)
