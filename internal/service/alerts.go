package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/geosick/geosick/internal/cache"
	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/schema"
)

var alertsContract = schema.Array("A list of recent, real-world global health alerts.",
	schema.Object(map[string]*schema.Schema{
		"title":           schema.String("A concise, headline-style title for the alert (e.g., 'Dengue Fever Cases Rise in Brazil')."),
		"location":        schema.String("The most specific city, region, or area affected (e.g., 'Khovd Province, Mongolia', 'Miami-Dade County, Florida')."),
		"country":         schema.String("The primary country or broad region affected (e.g., 'Mongolia', 'Europe')."),
		"locationDetails": schema.String("More specific location details if available, like a list of cities or states. If the event is widespread, list the most affected areas. Keep it brief."),
		"category": schema.StringEnum("The category of the alert.",
			string(model.CategoryDisease), string(model.CategoryAir), string(model.CategoryHeat),
			string(model.CategoryEnvironmental), string(model.CategoryOther)),
		"detailedInfo":   schema.String("A detailed paragraph (3-4 sentences) explaining the situation, what is happening, and the context."),
		"threatAnalysis": schema.String("A paragraph (2-3 sentences) analyzing the specific threat to the local population and providing brief, actionable advice."),
		"lat":            schema.Number("The precise latitude of the event's location. Provide this only if it can be accurately determined."),
		"lng":            schema.Number("The precise longitude of the event's location. Provide this only if it can be accurately determined."),
	}, "title", "location", "country", "category", "detailedInfo", "threatAnalysis"))

// alertItem is the structuring call's shape before composition adds
// identity, citations and repaired coordinates.
type alertItem struct {
	Title           string              `json:"title"`
	Location        string              `json:"location"`
	Country         string              `json:"country"`
	LocationDetails string              `json:"locationDetails"`
	Category        model.AlertCategory `json:"category"`
	DetailedInfo    string              `json:"detailedInfo"`
	ThreatAnalysis  string              `json:"threatAnalysis"`
	Lat             *float64            `json:"lat"`
	Lng             *float64            `json:"lng"`
}

// missingCoords reports whether the item needs a geocoding repair.
// A (0,0) pair from the structuring step counts as missing.
func (a alertItem) missingCoords() bool {
	if a.Lat == nil || a.Lng == nil {
		return true
	}
	return *a.Lat == 0 && *a.Lng == 0
}

// GlobalAlerts surveys recent worldwide public-health events through a
// search-grounded retrieval. forceRefresh bypasses the cache read; a
// successful result still overwrites the cache.
func (s *Service) GlobalAlerts(ctx context.Context, forceRefresh bool) ([]model.Alert, error) {
	key := cache.Key("alerts", string(model.ScopeGlobal))
	if !forceRefresh {
		var alerts []model.Alert
		if s.cached(key, &alerts) {
			return alerts, nil
		}
	}

	groundingPrompt := "Act as a global health surveillance system. Use Google Search to find 8 of the most recent and significant real-world public health alerts from around the world from the last 7 days. These can include disease outbreaks, severe air quality warnings, extreme weather events with health implications (like heatwaves), or major environmental health hazards. Extract the key information for each alert."

	return s.fetchAlerts(ctx, key, groundingPrompt, model.ScopeGlobal)
}

// LocalAlerts retrieves public-health events for the area around a
// coordinate. An empty grounding result is a valid answer: no alerts.
func (s *Service) LocalAlerts(ctx context.Context, lat, lng float64, forceRefresh bool) ([]model.Alert, error) {
	key := cache.Key("alerts", string(model.ScopeLocal), coord2(lat), coord2(lng))
	if !forceRefresh {
		var alerts []model.Alert
		if s.cached(key, &alerts) {
			return alerts, nil
		}
	}

	groundingPrompt := fmt.Sprintf("Act as a local health surveillance system. Use Google Search to find up to 4 of the most recent and significant public health alerts specifically relevant to the city or region at latitude %v, longitude %v from the last 7 days. Focus on localized events like specific air quality warnings, local disease clusters, or environmental issues for this area. Extract key information for each alert.", lat, lng)

	return s.fetchAlerts(ctx, key, groundingPrompt, model.ScopeLocal)
}

func (s *Service) fetchAlerts(ctx context.Context, key, groundingPrompt string, scope model.AlertScope) ([]model.Alert, error) {
	grounding, err := s.generate(ctx, genai.ContentRequest{
		Prompt:    groundingPrompt,
		Grounding: genai.GroundingSearch,
	})
	if err != nil {
		return nil, capErr("health alerts", err)
	}

	if grounding.Text == "" {
		empty := []model.Alert{}
		s.store(key, empty, alertsTTL)
		return empty, nil
	}

	structuringPrompt := fmt.Sprintf("Based on the following information, format it into a valid JSON array that adheres to the provided schema. If there is no information, return an empty array. Ensure every field is filled accurately. Text: %s", grounding.Text)

	var items []alertItem
	if _, err := s.generateStructured(ctx, genai.ContentRequest{Prompt: structuringPrompt}, alertsContract, &items); err != nil {
		return nil, capErr("health alerts", err)
	}

	if len(items) == 0 {
		empty := []model.Alert{}
		s.store(key, empty, alertsTTL)
		return empty, nil
	}

	// Repair items the model could not place, concurrently across all
	// items. Each failure stays with its item: it keeps the textual
	// location and no coordinates. Original order is preserved.
	s.pool.ForEach(ctx, len(items), func(ctx context.Context, i int) {
		if !items[i].missingCoords() {
			return
		}
		resolved, err := s.Geocode(ctx, items[i].Location)
		if err != nil {
			s.log.Warn().Err(err).Str("location", items[i].Location).Msg("alert geocoding failed")
			items[i].Lat, items[i].Lng = nil, nil
			return
		}
		items[i].Lat, items[i].Lng = &resolved.Lat, &resolved.Lng
	})

	fetchedAt := time.Now().UTC()
	alerts := make([]model.Alert, len(items))
	for i, item := range items {
		alerts[i] = model.Alert{
			ID:              uuid.NewString(),
			FetchedAt:       fetchedAt,
			Title:           item.Title,
			Location:        item.Location,
			Country:         item.Country,
			LocationDetails: item.LocationDetails,
			Category:        item.Category,
			DetailedInfo:    item.DetailedInfo,
			ThreatAnalysis:  item.ThreatAnalysis,
			Lat:             item.Lat,
			Lng:             item.Lng,
			// The grounding metadata is shared: every alert in the
			// batch cites the same retrieval.
			Sources: grounding.Citations,
			Scope:   scope,
		}
	}

	s.store(key, alerts, alertsTTL)
	return alerts, nil
}
