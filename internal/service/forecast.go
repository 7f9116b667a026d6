package service

import (
	"context"
	"fmt"

	"github.com/geosick/geosick/internal/cache"
	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/schema"
)

var forecastContract = schema.Object(map[string]*schema.Schema{
	"locationName": schema.String("The name of the location for the forecast (e.g., 'San Francisco, CA')."),
	"summary":      schema.String("A brief, 1-2 sentence summary of the day's health outlook."),
	"riskFactors": schema.Array("",
		schema.Object(map[string]*schema.Schema{
			"name": schema.String("Name of the risk factor (e.g., 'Air Quality Index', 'UV Index')."),
			"level": schema.StringEnum("Risk level.",
				string(model.RiskLow), string(model.RiskModerate), string(model.RiskHigh), string(model.RiskVeryHigh)),
			"description": schema.String("A brief explanation of the risk."),
		}, "name", "level", "description")),
	"recommendations": schema.Array("A list of actionable health recommendations for the day.",
		schema.String("")),
}, "locationName", "summary", "riskFactors", "recommendations")

// HealthForecast produces a daily health outlook for a coordinate.
// Keys bucket at ~1km: the forecast is area-level, not point-level.
func (s *Service) HealthForecast(ctx context.Context, coord model.Coordinate, language string) (*model.HealthForecast, error) {
	key := cache.Key("forecast", coord2(coord.Lat), coord2(coord.Lng), language)
	var forecast model.HealthForecast
	if s.cached(key, &forecast) {
		return &forecast, nil
	}

	prompt := fmt.Sprintf("Generate a daily health forecast for the location at latitude %v, longitude %v. Identify the location name. Include a summary, at least 3 key risk factors (like Air Quality, UV Index, Pollen, Mosquito Activity) with a risk level ('Low', 'Moderate', 'High', 'Very High'), and provide simple, actionable recommendations. The entire response, including all text values inside the JSON, must be in the %s language.", coord.Lat, coord.Lng, language)

	_, err := s.generateStructured(ctx, genai.ContentRequest{Prompt: prompt}, forecastContract, &forecast)
	if err != nil {
		return nil, capErr("health forecast", err)
	}

	s.store(key, &forecast, forecastTTL)
	return &forecast, nil
}
