package service

import (
	"context"
	"fmt"

	"github.com/geosick/geosick/internal/cache"
	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/schema"
)

func hazardsContract() *schema.Schema {
	return schema.Array("A list of identified potential health hazards based on the location's geography and climate.",
		schema.Object(map[string]*schema.Schema{
			"hazard":      schema.String("The specific hazard identified, e.g., 'Stagnant Water Pool'."),
			"description": schema.String("A brief description of why this hazard is relevant to the location."),
		}, "hazard", "description"))
}

func diseasesContract() *schema.Schema {
	return schema.Array("A list of potential diseases associated with the identified hazards.",
		schema.Object(map[string]*schema.Schema{
			"name":  schema.String("Name of the potential disease, e.g., 'Malaria'."),
			"cause": schema.String("How the identified hazards can cause this disease."),
			"precautions": schema.Array("A list of practical preventive measures against this disease.",
				schema.String("")),
		}, "name", "cause", "precautions"))
}

var locationAnalysisContract = schema.Object(map[string]*schema.Schema{
	"locationName": schema.String("The short name of the identified location (e.g., 'Central Park, New York, USA')."),
	"hazards":      hazardsContract(),
	"diseases":     diseasesContract(),
	"summary":      schema.String("A concise overall summary of the environmental health assessment, written in an urgent but informative tone."),
}, "locationName", "hazards", "diseases", "summary")

// AnalyzeLocation produces an environmental health assessment for a
// coordinate, alongside an optional generated illustration. The
// analysis call is mandatory; the image call runs concurrently and its
// failure only degrades the report to "no image".
func (s *Service) AnalyzeLocation(ctx context.Context, lat, lng float64, language, knownName string) (*model.LocationReport, error) {
	key := cache.Key("location", coord4(lat), coord4(lng), language, normalizeQuery(knownName))
	var report model.LocationReport
	if s.cached(key, &report) {
		return &report, nil
	}

	languageInstruction := fmt.Sprintf("Your response must be a single JSON object conforming to the provided schema. All text content within the JSON must be in %s. Your analysis must be distinct and tailored, avoiding repetition for nearby coordinates.", language)

	var prompt string
	if knownName != "" {
		prompt = fmt.Sprintf(`Act as a specialized environmental scientist. Your task is to provide a highly specific and unique analysis for the *exact* location known as %q at coordinates: latitude %v, longitude %v. Do not provide a generic regional summary; focus on the distinct micro-environment of this point.
Your goal is to identify potential environmental health risks based on its specific geography and climate, not to provide medical advice.
1. Use the exact name %q for the 'locationName' field.
2. Based on its *specific* environment (e.g., proximity to water, elevation, urban density), list potential health hazards.
3. For each hazard, list associated, potential diseases or health conditions.
4. For each disease, list general, non-prescriptive public health precautions.
5. Write a brief, neutral summary of this specific location's environmental profile.
%s`, knownName, lat, lng, knownName, languageInstruction)
	} else {
		prompt = fmt.Sprintf(`Act as a specialized environmental scientist. Your task is to provide a highly specific and unique analysis for the *exact* coordinates: latitude %v, longitude %v. Do not provide a generic regional summary; focus on the distinct micro-environment of this point.
Your goal is to identify potential environmental health risks based on its specific geography and climate, not to provide medical advice.
1. Identify the common name for this specific location (e.g., 'Central Park, New York, USA').
2. Based on its *specific* environment (e.g., proximity to water, elevation, urban density), list potential health hazards.
3. For each hazard, list associated, potential diseases or health conditions.
4. For each disease, list general, non-prescriptive public health precautions.
5. Write a brief, neutral summary of this specific location's environmental profile.
%s`, lat, lng, languageInstruction)
	}

	// Kick off the optional illustration concurrently with the
	// mandatory analysis. Both settle before the report is composed.
	type imageOutcome struct {
		resp *genai.ImageResponse
		err  error
	}
	imageCh := make(chan imageOutcome, 1)
	go func() {
		resp, err := genai.WithRetry(ctx, func() (*genai.ImageResponse, error) {
			return s.client.GenerateImage(ctx, genai.ImageRequest{
				Model:       s.imageModel,
				Prompt:      fmt.Sprintf("Generate a highly realistic and detailed satellite-style photograph of the specific location at latitude %v, longitude %v. The image should accurately reflect the plausible geography, biome (e.g., forest, desert, coastal, urban), and population density for this exact point on Earth. Capture the unique environmental characteristics. Do not include any text, borders, or UI elements. The style should be photorealistic.", lat, lng),
				AspectRatio: "16:9",
				MIMEType:    "image/jpeg",
			})
		}, s.maxAttempts, s.initialDelay)
		imageCh <- imageOutcome{resp: resp, err: err}
	}()

	var analysis model.LocationAnalysis
	_, analysisErr := s.generateStructured(ctx, genai.ContentRequest{Prompt: prompt}, locationAnalysisContract, &analysis)
	image := <-imageCh

	if analysisErr != nil {
		return nil, capErr("location analysis", analysisErr)
	}

	report = model.LocationReport{Analysis: analysis}
	if image.err != nil {
		s.log.Warn().Err(image.err).Msg("location illustration failed, continuing without image")
	} else {
		report.Image = image.resp.Data
		report.ImageMIME = image.resp.MIMEType
	}

	s.store(key, &report, locationTTL)
	return &report, nil
}
