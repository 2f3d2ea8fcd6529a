package scoring

import "github.com/devskill-org/stargazing/celestial"

// AnnotateSky attaches the astronomical night, moon-up and moon phase of each
// slot in place
func AnnotateSky(records []ObservingScoreRecord, a *celestial.Almanac) {
	for i := range records {
		sky := a.At(records[i].Time)
		records[i].Sky = &sky
	}
}
