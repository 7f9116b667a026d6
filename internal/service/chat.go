package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/schema"
)

func botCommandContract(pages []model.Page) *schema.Schema {
	pageNames := make([]string, len(pages))
	for i, p := range pages {
		pageNames[i] = string(p)
	}
	return schema.Object(map[string]*schema.Schema{
		"action": schema.StringEnum("The action to perform. 'navigate' to change pages, 'speak' for a standard text response.",
			string(model.ActionNavigate), string(model.ActionSpeak)),
		"page": schema.StringEnum("The target page for navigation. Only used when action is 'navigate'.",
			pageNames...),
		"responseText": schema.String("The text response to speak to the user. This is used for both 'speak' actions and as a confirmation for 'navigate' actions."),
	}, "action", "responseText")
}

// RouteCommand turns a free-text request into exactly one routing
// decision: navigate to one of the supplied pages, or speak a reply.
// A page outside the supplied enumeration is a schema violation.
func (s *Service) RouteCommand(ctx context.Context, prompt, language string, availablePages []model.Page) (*model.BotCommand, error) {
	if len(availablePages) == 0 {
		return nil, capErr("bot command", fmt.Errorf("no navigation destinations supplied"))
	}

	pageNames := make([]string, len(availablePages))
	for i, p := range availablePages {
		pageNames[i] = string(p)
	}

	systemPrompt := fmt.Sprintf(`You are a voice assistant for a health app called GeoSick. Your primary goal is to help the user navigate the app or answer their health-related questions.

Current Language for response: %s.

Analyze the user's request: %q

Based on the request, decide on one of two actions:
1. 'navigate': If the user expresses intent to go to a specific section of the app.
2. 'speak': If the user is asking a general question, making a statement, or if the intent is unclear.

The available pages for navigation are: %s.
You must map user requests to these exact page names. Here are some examples:
- "scan my area", "analyze a photo" -> 'image-analysis'
- "read my doctor's note", "check this prescription" -> 'prescription-analysis'
- "how am I feeling", "mental health check" -> 'mental-health'
- "what's wrong with me", "I feel sick", "check my symptoms" -> 'symptom-checker'
- "show my past activity", "what have I done" -> 'activity-history'
- "my account", "show my profile" -> 'profile'
- "who made this", "tell me about this app" -> 'about'
- "how can I contact you" -> 'contact'
- "explore the world", "show me the globe" -> 'explore'
- "go home", "take me to the dashboard" -> 'welcome'
- "show me the latest news", "what are the alerts" -> 'live-alerts'

Your response MUST be a single, valid JSON object conforming to the provided schema.
- If the action is 'navigate', 'responseText' should be a brief confirmation message (e.g., "Okay, navigating to the symptom checker.") in the requested language.
- If the action is 'speak', 'responseText' should be a helpful, conversational answer to their question in the requested language. If it's a health question, provide general information and always advise consulting a healthcare professional. DO NOT give a medical diagnosis.

Respond in %s.`, language, prompt, strings.Join(pageNames, ", "), language)

	var command model.BotCommand
	_, err := s.generateStructured(ctx, genai.ContentRequest{Prompt: systemPrompt}, botCommandContract(availablePages), &command)
	if err != nil {
		return nil, capErr("bot command", err)
	}

	// The schema enum already restricts a present page value; a
	// navigate decision without any page is equally unusable.
	if command.Action == model.ActionNavigate {
		valid := false
		for _, p := range availablePages {
			if command.Page == p {
				valid = true
				break
			}
		}
		if !valid {
			return nil, capErr("bot command", fmt.Errorf("navigation target %q is not an available page", command.Page))
		}
	}

	return &command, nil
}
