package parser

import "strings"

// examplePhrasings are shown when nothing in the input could be parsed.
//
//nolint:gochecknoglobals // Fixed suggestion list.
var examplePhrasings = []string{
	"I drove 10 km to work",
	"I took the bus 5 km",
	"I walked 3 km this morning",
	"I used 12 kWh of electricity",
	"I ate 200 g of beef",
	"I recycled 2 kg of plastic",
}

// keywordHints narrows the suggestions when the input mentions a topic.
// Checked in order; every matching topic contributes its examples.
//
//nolint:gochecknoglobals // Fixed keyword table.
var keywordHints = []struct {
	keywords []string
	examples []string
}{
	{
		keywords: []string{"drove", "drive", "car", "driving"},
		examples: []string{"I drove 10 km to work", "I drove 25 miles", "I drove my electric car 15 km"},
	},
	{
		keywords: []string{"bus", "train", "subway", "metro", "tram"},
		examples: []string{"I took the bus 5 km", "I took the train 40 km"},
	},
	{
		keywords: []string{"walk", "bike", "cycl", "jog", "hike"},
		examples: []string{"I walked 3 km this morning", "I cycled 8 km"},
	},
	{
		keywords: []string{"flew", "flight", "fly", "plane"},
		examples: []string{"I flew 800 km", "I flew 500 miles"},
	},
	{
		keywords: []string{"electric", "power", "kwh", "energy", "gas", "heating"},
		examples: []string{"I used 12 kWh of electricity", "I used 5 therms of natural gas"},
	},
	{
		keywords: []string{"ate", "eat", "meal", "lunch", "dinner", "breakfast", "food"},
		examples: []string{"I ate 200 g of beef", "I had a chicken sandwich"},
	},
	{
		keywords: []string{"recycl", "compost", "trash", "garbage", "waste"},
		examples: []string{"I recycled 2 kg of plastic", "I composted 1 kg of food scraps"},
	},
}

// Suggest returns example phrasings for text the matcher could not parse.
// Topics detected by keyword narrow the list; with no topic detected the
// full example set is returned.
func Suggest(text string) []string {
	lower := strings.ToLower(text)

	var out []string
	seen := make(map[string]bool)
	for _, hint := range keywordHints {
		if !containsAny(lower, hint.keywords) {
			continue
		}
		for _, ex := range hint.examples {
			if !seen[ex] {
				seen[ex] = true
				out = append(out, ex)
			}
		}
	}

	if len(out) == 0 {
		return append([]string(nil), examplePhrasings...)
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
