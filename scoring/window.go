package scoring

import (
	"math"
	"time"
)

// Night is the local hour range used by the best-window search
const (
	NightStartHour = 20
	NightEndHour   = 6
)

// BestWindow is the best two-hour night window. Found is false when no
// pair of adjacent night slots exists.
type BestWindow struct {
	Found        bool      `json:"found"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	AverageScore int       `json:"average_score"`
}

// IsNight reports whether t falls in the night hours of loc
func IsNight(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	h := t.In(loc).Hour()
	return h >= NightStartHour || h <= NightEndHour
}

// FindBestTwoHours scans adjacent slots that are both at night and keeps the
// first highest average. Ties keep the earlier window.
func FindBestTwoHours(records []ObservingScoreRecord, loc *time.Location) BestWindow {
	var best BestWindow
	for i := 0; i+1 < len(records); i++ {
		a, b := records[i], records[i+1]
		if !IsNight(a.Time, loc) || !IsNight(b.Time, loc) {
			continue
		}

		avg := int(math.Round(float64(a.Score+b.Score) / 2))
		if !best.Found || avg > best.AverageScore {
			best = BestWindow{
				Found:        true,
				From:         a.Time,
				To:           b.Time,
				AverageScore: avg,
			}
		}
	}
	return best
}
