package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/schema"
)

var reflectionContract = schema.Object(map[string]*schema.Schema{
	"summary": schema.String("A gentle, supportive summary of the user's responses, framed as a reflection. Avoid diagnostic language."),
	"potentialConcerns": schema.Array("",
		schema.Object(map[string]*schema.Schema{
			"name":        schema.String("The general area of concern (e.g., 'Low Mood', 'Anxious Feelings')."),
			"explanation": schema.String("A brief, non-judgmental explanation based on the user's answers."),
		}, "name", "explanation")),
	"copingStrategies": schema.Array("",
		schema.Object(map[string]*schema.Schema{
			"title":       schema.String("Title of the coping strategy (e.g., 'Mindful Breathing')."),
			"description": schema.String("A short, actionable description of the strategy."),
		}, "title", "description")),
	"recommendation": schema.String("A concluding sentence that gently suggests speaking to a friend, family member, or professional if feelings persist, emphasizing this is not a diagnosis."),
}, "summary", "potentialConcerns", "copingStrategies", "recommendation")

// Reflect produces a supportive, non-diagnostic reflection on a set of
// wellbeing check-in answers, keyed by question.
func (s *Service) Reflect(ctx context.Context, answers map[string]string, language string) (*model.Reflection, error) {
	encoded, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return nil, capErr("mental health reflection", err)
	}

	prompt := fmt.Sprintf(`Act as a compassionate, non-clinical wellness assistant. A user has answered the following questions about their feelings over the last two weeks. The format is "Question": "Answer".
%s
Based *only* on these answers, provide a supportive reflection.
1. Write a gentle summary.
2. Identify 1-2 potential areas for reflection (e.g., low mood, stress). Do NOT use diagnostic terms like "depression" or "anxiety disorder".
3. Suggest 2-3 general, positive coping strategies (e.g., mindfulness, connecting with nature, talking to a friend).
4. Conclude with a recommendation to speak with a professional for a real diagnosis if these feelings are persistent.
Your response must be in JSON format conforming to the provided schema. All text values within the JSON must be in %s.`, encoded, language)

	var reflection model.Reflection
	if _, err := s.generateStructured(ctx, genai.ContentRequest{Prompt: prompt}, reflectionContract, &reflection); err != nil {
		return nil, capErr("mental health reflection", err)
	}
	return &reflection, nil
}

var symptomContract = schema.Object(map[string]*schema.Schema{
	"summary":              schema.String("A brief summary of the user's described symptoms."),
	"triageRecommendation": schema.String("A cautious triage recommendation based on severity. Must be one of: 'Monitor symptoms at home', 'Consider consulting a doctor within a few days', or 'Prompt medical attention is recommended'."),
	"potentialConditions": schema.Array("",
		schema.Object(map[string]*schema.Schema{
			"name":        schema.String("Name of a potential, common condition that could be related."),
			"description": schema.String("A brief, neutral description of the condition and why it might be considered."),
		}, "name", "description")),
	"nextSteps": schema.Array("A list of general, safe next steps (e.g., 'Rest and stay hydrated', 'Keep a log of your symptoms').",
		schema.String("")),
	"disclaimer": schema.String("A clear disclaimer stating this is an AI analysis and not a substitute for professional medical advice."),
}, "summary", "triageRecommendation", "potentialConditions", "nextSteps", "disclaimer")

// AnalyzeSymptoms triages a free-text symptom description with
// deliberate caution; it never diagnoses.
func (s *Service) AnalyzeSymptoms(ctx context.Context, symptoms, language string) (*model.SymptomReport, error) {
	prompt := fmt.Sprintf(`Act as a cautious AI medical informational assistant. A user has described their symptoms: %q.
Analyze this description with extreme caution. Your entire response MUST be in the %s language.
1. Summarize the key symptoms mentioned.
2. Provide a triage recommendation based on potential severity ('Monitor symptoms at home', 'Consider consulting a doctor within a few days', 'Prompt medical attention is recommended'). Err on the side of caution. For example, mention of chest pain or difficulty breathing should always be 'Prompt medical attention'.
3. List 2-3 common, potential conditions that a doctor might consider. Do not present these as a diagnosis.
4. Suggest general, safe next steps.
5. Provide a strong disclaimer that this is not a medical diagnosis and a doctor must be consulted.
Your response must be in JSON format conforming to the provided schema. All text values within the JSON must be in %s.`, symptoms, language, language)

	var report model.SymptomReport
	if _, err := s.generateStructured(ctx, genai.ContentRequest{Prompt: prompt}, symptomContract, &report); err != nil {
		return nil, capErr("symptom analysis", err)
	}
	return &report, nil
}
