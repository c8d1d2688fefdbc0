package domain

import (
	"context"
	"log/slog"
)

// ResolveCoordinates fills in missing coordinates for a location by forward
// geocoding its query (or its name when no query is set). If geocoder is nil
// or geocoding fails, the location is returned unchanged.
func ResolveCoordinates(ctx context.Context, loc Location, geocoder Geocoder, logger *slog.Logger) Location {
	if geocoder == nil || loc.HasCoordinates() {
		return loc
	}

	query := loc.Query
	if query == "" {
		query = loc.Name
	}
	if query == "" {
		return loc
	}

	result, err := geocoder.ForwardGeocode(ctx, query)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"location", loc.ID,
			"query", query,
			"error", err,
		)
		return loc
	}
	if result.Lat == 0 && result.Lon == 0 {
		logger.Warn("forward geocoding returned no match", "location", loc.ID, "query", query)
		return loc
	}

	loc.Latitude = result.Lat
	loc.Longitude = result.Lon
	logger.Info("location geocoded",
		"location", loc.ID,
		"place", result.FormattedAddress,
		"confidence", result.Confidence,
	)
	return loc
}
