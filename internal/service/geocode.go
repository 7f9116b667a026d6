package service

import (
	"context"
	"fmt"

	"github.com/geosick/geosick/internal/cache"
	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/schema"
)

var geocodeContract = schema.Object(map[string]*schema.Schema{
	"lat":               schema.Number("The precise latitude of the found location."),
	"lng":               schema.Number("The precise longitude of the found location."),
	"foundLocationName": schema.String("The full, official name of the location found, e.g., 'Eiffel Tower, Paris, France'."),
}, "lat", "lng", "foundLocationName")

// Geocode resolves a free-text place description to a coordinate.
// Used standalone and as the repair step for any result that arrives
// without coordinates. Resolutions are stable, so they cache for 24h.
func (s *Service) Geocode(ctx context.Context, locationQuery string) (*model.GeocodeResult, error) {
	key := cache.Key("geocode", normalizeQuery(locationQuery))
	var result model.GeocodeResult
	if s.cached(key, &result) {
		return &result, nil
	}

	prompt := fmt.Sprintf("Find the precise geographic coordinates (latitude and longitude) and the full, official name for the following location: %q. Prioritize accuracy. Respond only with the JSON object.", locationQuery)

	_, err := s.generateStructured(ctx, genai.ContentRequest{Prompt: prompt}, geocodeContract, &result)
	if err != nil {
		return nil, capErr("geocoding", err)
	}

	s.store(key, &result, geocodeTTL)
	return &result, nil
}
