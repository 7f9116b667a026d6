package service

import (
	"context"
	"fmt"

	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/schema"
)

var imageAnalysisContract = schema.Object(map[string]*schema.Schema{
	"hazards":  hazardsContract(),
	"diseases": diseasesContract(),
	"summary":  schema.String("A concise overall summary of the environmental health assessment, written in an urgent but informative tone."),
}, "hazards", "diseases", "summary")

// AnalyzeImage assesses a photo of a geographical area for visible
// health hazards and the diseases they can cause.
func (s *Service) AnalyzeImage(ctx context.Context, imageData []byte, mimeType, language string) (*model.Analysis, error) {
	prompt := fmt.Sprintf(`You are an expert environmental health and public safety analyst named GeoSick. Analyze the provided image of a geographical area.
1. **Identify Potential Health Hazards:** Pinpoint any visible issues such as stagnant water, garbage piles, pollution, pests, or poor sanitation. Be specific.
2. **Predict Associated Diseases:** Based on the identified hazards, list potential diseases (e.g., Malaria from stagnant water, Cholera from contaminated water sources, respiratory issues from air pollution).
3. **Provide a Detailed Report:** Synthesize your findings into a clear, structured report.
4. **Suggest Actionable Precautions:** For each potential disease, provide a list of practical and effective preventive measures for individuals and the community.
Your response must be in JSON format conforming to the provided schema. All text values within the JSON must be in %s.`, language)

	var analysis model.Analysis
	_, err := s.generateStructured(ctx, genai.ContentRequest{
		Prompt:     prompt,
		Attachment: &genai.Attachment{MIMEType: mimeType, Data: imageData},
	}, imageAnalysisContract, &analysis)
	if err != nil {
		return nil, capErr("image analysis", err)
	}
	return &analysis, nil
}

var prescriptionContract = schema.Object(map[string]*schema.Schema{
	"summary": schema.String("A concise summary of the prescription's purpose in simple, easy-to-understand language. Start with 'This prescription is for...'."),
	"medicines": schema.Array("A list of all prescribed medicines found in the image.",
		schema.Object(map[string]*schema.Schema{
			"name":   schema.String("The name of the medicine."),
			"dosage": schema.String("The dosage and frequency instructions (e.g., '500mg, twice a day for 7 days')."),
		}, "name", "dosage")),
	"precautions": schema.Array("A list of important precautions or advice mentioned in the prescription (e.g., 'Take with food', 'Avoid driving').",
		schema.String("")),
}, "summary", "medicines", "precautions")

// AnalyzePrescription transcribes a photographed prescription into a
// structured summary of medicines, dosages and precautions.
func (s *Service) AnalyzePrescription(ctx context.Context, imageData []byte, mimeType, language string) (*model.Prescription, error) {
	prompt := fmt.Sprintf(`You are an expert medical transcriptionist. Analyze the provided image of a doctor's prescription, which may be handwritten or typed.
1. **Interpret the content:** Carefully read all text on the prescription.
2. **Extract Key Information:** Identify all prescribed medicines and their exact dosages/instructions.
3. **Identify Precautions:** Note any special warnings, advice, or precautions mentioned.
4. **Summarize:** Provide a brief, simple summary of the prescription's purpose.
If any part of the prescription is illegible, state that clearly in the relevant field (e.g., 'Dosage illegible'). Do not guess.
Your response must be in JSON format conforming to the provided schema. All text values within the JSON must be in %s.`, language)

	var prescription model.Prescription
	_, err := s.generateStructured(ctx, genai.ContentRequest{
		Prompt:     prompt,
		Attachment: &genai.Attachment{MIMEType: mimeType, Data: imageData},
	}, prescriptionContract, &prescription)
	if err != nil {
		return nil, capErr("prescription analysis", err)
	}
	return &prescription, nil
}
