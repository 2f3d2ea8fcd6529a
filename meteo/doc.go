// Package meteo is a client for the MET Norway Location Forecast API.
//
// Only the compact and complete JSON endpoints are supported. The complete
// endpoint carries cloud layers, fog, dew point and sea level pressure, which
// Samples maps onto forecast.RawWeatherSample:
//
//	client := meteo.NewClient("stargazing/1.0 (you@example.com)")
//	fc, err := client.GetComplete(ctx, meteo.QueryParams{
//		Location: meteo.Location{Latitude: 56.9496, Longitude: 24.1052},
//	})
//	if err != nil {
//		return err
//	}
//	records := forecast.Normalize(fc.Samples(), forecast.SourceMetNorway, time.Now())
//
// MET Norway requires an identifying User-Agent; requests without one are rejected with 403.
// See https://api.met.no/weatherapi/locationforecast/2.0/documentation
package meteo
