package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/geosick/geosick/internal/cache"
	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/schema"
)

var facilitiesContract = schema.Array("A list of nearby medical facilities.",
	schema.Object(map[string]*schema.Schema{
		"name": schema.String("The official name of the facility."),
		"type": schema.StringEnum("The type of facility. Must be one of: 'Hospital', 'Clinic', or 'Pharmacy'.",
			string(model.FacilityHospital), string(model.FacilityClinic), string(model.FacilityPharmacy)),
		"lat": schema.Number("The precise latitude of the facility."),
		"lng": schema.Number("The precise longitude of the facility."),
	}, "name", "type", "lat", "lng"))

// FindFacilities locates medical facilities near a coordinate through
// a maps-grounded retrieval followed by a structuring call. Entries
// whose coordinates could not be determined arrive as (0,0) and are
// dropped: a placeholder is "missing", not a point off the coast of
// West Africa. Survivors are annotated with their distance from the
// query point and sorted nearest-first.
func (s *Service) FindFacilities(ctx context.Context, coord model.Coordinate) ([]model.Facility, error) {
	key := cache.Key("facilities", coord4(coord.Lat), coord4(coord.Lng))
	var facilities []model.Facility
	if s.cached(key, &facilities) {
		return facilities, nil
	}

	grounding, err := s.generate(ctx, genai.ContentRequest{
		Prompt:    fmt.Sprintf("Find the specific hospitals, clinics, and pharmacies nearest to latitude %v, longitude %v. Return their names and accurate addresses or locations.", coord.Lat, coord.Lng),
		Grounding: genai.GroundingMaps,
		Focus:     &coord,
	})
	if err != nil {
		return nil, capErr("facility lookup", err)
	}

	structuringPrompt := fmt.Sprintf(`Extract the medical facilities from the text below into a JSON array.
For each facility, provide:
- name: The name of the facility.
- type: One of 'Hospital', 'Clinic', 'Pharmacy'. Infer from name if needed.
- lat: The latitude.
- lng: The longitude.

CRITICAL: You MUST extract the exact latitude and longitude for each facility from the source text.
If the source text does not have coordinates, use your internal knowledge to provide the REAL coordinates for that specific named facility.
Do not return 0,0.

Text: %s`, grounding.Text)

	var extracted []model.Facility
	if _, err := s.generateStructured(ctx, genai.ContentRequest{Prompt: structuringPrompt}, facilitiesContract, &extracted); err != nil {
		return nil, capErr("facility lookup", err)
	}

	facilities = facilities[:0]
	for _, f := range extracted {
		if f.Lat == 0 && f.Lng == 0 {
			s.log.Debug().Str("facility", f.Name).Msg("dropping facility with placeholder coordinates")
			continue
		}
		f.DistanceKm = haversineKm(coord.Lat, coord.Lng, f.Lat, f.Lng)
		facilities = append(facilities, f)
	}
	sort.Slice(facilities, func(i, j int) bool {
		return facilities[i].DistanceKm < facilities[j].DistanceKm
	})

	if len(facilities) > 0 {
		s.store(key, facilities, facilitiesTTL)
	}
	return facilities, nil
}

// haversineKm is the great-circle distance between two points.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
