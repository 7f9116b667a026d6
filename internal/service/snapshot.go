package service

import (
	"context"
	"fmt"

	"github.com/geosick/geosick/internal/cache"
	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/schema"
)

// SnapshotDisclaimer is the mandatory wording on every city snapshot.
const SnapshotDisclaimer = "This is an AI-generated summary of publicly available information and is not real-time, verified medical data. Consult official public health sources for accurate statistics."

var snapshotContract = schema.Object(map[string]*schema.Schema{
	"cityName":       schema.String(""),
	"country":        schema.String(""),
	"lastUpdated":    schema.String("A brief statement about the time frame of the data, e.g., 'Data based on reports from the last 30 days'."),
	"overallSummary": schema.String("A 2-3 sentence summary of the current public health situation in the city."),
	"diseases": schema.Array("A list of 3-4 of the most discussed or prevalent diseases in the city based on recent public data.",
		schema.Object(map[string]*schema.Schema{
			"name":                 schema.String("Name of the disease (e.g., 'Influenza', 'Dengue Fever')."),
			"summary":              schema.String("A brief summary of the situation regarding this specific disease."),
			"reportedCases":        schema.String("An estimated or reported number of cases. Must be a descriptive string, not a number (e.g., 'Approximately 5,000 cases reported', 'Hundreds of cases weekly', 'Data not specified'). Do not invent numbers if not found."),
			"affectedDemographics": schema.String("A text description of the most affected demographics (e.g., 'Primarily affecting children under 5', 'Higher incidence in elderly populations', 'No specific demographic reported')."),
			"trend": schema.StringEnum("The recent trend of reported cases.",
				string(model.TrendIncreasing), string(model.TrendStable), string(model.TrendDecreasing), string(model.TrendUnknown)),
		}, "name", "summary", "reportedCases", "affectedDemographics", "trend")),
	"dataDisclaimer": schema.String("A mandatory disclaimer about the nature of the data."),
}, "cityName", "country", "lastUpdated", "overallSummary", "diseases", "dataDisclaimer")

// CitySnapshot builds a grounded public-health snapshot for one city:
// the 3-4 most discussed diseases with trends and descriptive case
// estimates. The structuring instruction preserves "unknown or
// approximate" phrasing rather than inventing precise figures.
func (s *Service) CitySnapshot(ctx context.Context, cityName, country, language string) (*model.CitySnapshot, error) {
	key := cache.Key("snapshot", normalizeQuery(cityName), normalizeQuery(country), language)
	var snapshot model.CitySnapshot
	if s.cached(key, &snapshot) {
		return &snapshot, nil
	}

	groundingPrompt := fmt.Sprintf("Act as a public health intelligence analyst. Your task is to use Google Search to gather the most recent, publicly available information (from news, health ministries, WHO reports from the last 30-60 days) on infectious and prevalent diseases for the city of %s, %s. Your goal is to create a concise public health snapshot. Collect information on the 3-4 most discussed diseases, including a summary, trend, estimated cases, and affected demographics. Also find a brief overall summary. The response must be in %s.", cityName, country, language)

	grounding, err := s.generate(ctx, genai.ContentRequest{
		Prompt:    groundingPrompt,
		Grounding: genai.GroundingSearch,
	})
	if err != nil {
		return nil, capErr("city health snapshot", err)
	}

	structuringPrompt := fmt.Sprintf(`Based on the following public health information for %s, %s, format it into a single, valid JSON object that conforms to the provided schema. The entire response, including all text values inside the JSON, MUST be in the %s language.

Information:
%s

Instructions:
1. Identify the 3-4 most discussed or significant diseases.
2. For each disease, provide a brief summary, the recent trend ('Increasing', 'Stable', 'Decreasing', or 'Unknown'), an *estimation* of reported cases (as a descriptive string, e.g., 'Hundreds of cases', not a precise number), and describe the most affected demographics.
3. Write a brief overall summary of the city's current health situation.
4. For the 'lastUpdated' field, use "Data based on reports from the last 30-60 days".
5. For the 'dataDisclaimer' field, you MUST use this exact text: %q`, cityName, country, language, grounding.Text, SnapshotDisclaimer)

	if _, err := s.generateStructured(ctx, genai.ContentRequest{Prompt: structuringPrompt}, snapshotContract, &snapshot); err != nil {
		return nil, capErr("city health snapshot", err)
	}

	snapshot.Sources = grounding.Citations

	s.store(key, &snapshot, snapshotTTL)
	return &snapshot, nil
}
