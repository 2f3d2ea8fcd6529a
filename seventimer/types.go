package seventimer

import (
	"time"

	"github.com/devskill-org/stargazing/forecast"
)

// InitLayout is the layout of the model run in the "init" field
const InitLayout = "2006010215"

// Response is the ASTRO product payload
type Response struct {
	Product    string      `json:"product"`
	Init       string      `json:"init"`
	DataSeries []DataPoint `json:"dataseries"`
}

// DataPoint is one three-hourly step
type DataPoint struct {
	Timepoint    int    `json:"timepoint"`
	CloudCover   int    `json:"cloudcover"`
	Seeing       int    `json:"seeing"`
	Transparency int    `json:"transparency"`
	LiftedIndex  int    `json:"lifted_index"`
	RH2m         int    `json:"rh2m"`
	Temp2m       int    `json:"temp2m"`
	PrecType     string `json:"prec_type"`
	Wind10m      Wind   `json:"wind10m"`
}

// Wind carries a compass direction and a speed class (1-8)
type Wind struct {
	Direction string `json:"direction"`
	Speed     int    `json:"speed"`
}

// windClassSpeed holds a representative speed in m/s for each wind class.
// Class 8 is open-ended and uses its lower bound.
var windClassSpeed = [...]float64{
	1: 0.15,
	2: 1.85,
	3: 5.7,
	4: 9.4,
	5: 14.0,
	6: 20.85,
	7: 28.55,
	8: 32.6,
}

// WindSpeedMS converts a wind class to m/s. Unknown classes yield 0.
func WindSpeedMS(class int) float64 {
	if class < 1 || class >= len(windClassSpeed) {
		return 0
	}
	return windClassSpeed[class]
}

// InitTime parses the model run time
func (r *Response) InitTime() (time.Time, error) {
	return time.ParseInLocation(InitLayout, r.Init, time.UTC)
}

// Samples maps the data series onto astro samples
func (r *Response) Samples() []forecast.AstroSample {
	out := make([]forecast.AstroSample, 0, len(r.DataSeries))
	for _, d := range r.DataSeries {
		out = append(out, forecast.AstroSample{
			TimepointHours: d.Timepoint,
			CloudCover:     d.CloudCover,
			Seeing:         d.Seeing,
			Transparency:   d.Transparency,
			LiftedIndex:    d.LiftedIndex,
			Humidity2m:     d.RH2m,
			Temperature2m:  d.Temp2m,
			Precipitation:  d.PrecType,
			WindDirection:  d.Wind10m.Direction,
			WindSpeed:      WindSpeedMS(d.Wind10m.Speed),
		})
	}
	return out
}
