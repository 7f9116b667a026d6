package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
)

// alertScript routes the three kinds of upstream call the alert flow
// makes: the search-grounded survey, the structuring call, and the
// per-item geocoding repairs.
func alertScript(groundingText string, citations []model.Citation, structuredJSON string, geocode func(query string) (*genai.ContentResponse, error)) func(genai.ContentRequest) (*genai.ContentResponse, error) {
	return func(req genai.ContentRequest) (*genai.ContentResponse, error) {
		switch {
		case req.Grounding == genai.GroundingSearch:
			return &genai.ContentResponse{Text: groundingText, Citations: citations}, nil
		case strings.Contains(req.Prompt, "format it into a valid JSON array"):
			return &genai.ContentResponse{Text: structuredJSON}, nil
		case strings.Contains(req.Prompt, "precise geographic coordinates"):
			return geocode(req.Prompt)
		default:
			return nil, errors.New("unexpected request: " + req.Prompt)
		}
	}
}

const threeAlertsJSON = `[
	{"title": "Dengue Cases Rise", "location": "Rio de Janeiro", "country": "Brazil",
	 "locationDetails": "", "category": "disease",
	 "detailedInfo": "Cases have risen sharply.", "threatAnalysis": "Use repellent.",
	 "lat": -22.9068, "lng": -43.1729},
	{"title": "Heatwave Warning", "location": "Phoenix, Arizona", "country": "USA",
	 "locationDetails": "", "category": "heat",
	 "detailedInfo": "Temperatures above 45C expected.", "threatAnalysis": "Stay hydrated."},
	{"title": "Air Quality Advisory", "location": "New Delhi", "country": "India",
	 "locationDetails": "", "category": "air",
	 "detailedInfo": "Severe smog persists.", "threatAnalysis": "Wear a mask outdoors.",
	 "lat": 0, "lng": 0}
]`

func TestGlobalAlerts_ComposesRepairsAndCaches(t *testing.T) {
	citations := []model.Citation{
		{URI: "https://who.int/report", Title: "WHO situation report"},
		{URI: "https://example.org/news", Title: "Outbreak coverage"},
	}
	client := &mockClient{}
	client.generate = alertScript("Several significant events were found this week.", citations, threeAlertsJSON,
		func(prompt string) (*genai.ContentResponse, error) {
			switch {
			case strings.Contains(prompt, "Phoenix"):
				return &genai.ContentResponse{Text: `{"lat": 33.4484, "lng": -112.074, "foundLocationName": "Phoenix, Arizona, USA"}`}, nil
			case strings.Contains(prompt, "New Delhi"):
				return &genai.ContentResponse{Text: `{"lat": 28.6139, "lng": 77.209, "foundLocationName": "New Delhi, India"}`}, nil
			default:
				return nil, errors.New("unexpected geocode: " + prompt)
			}
		})
	svc := newTestService(client)
	ctx := context.Background()

	alerts, err := svc.GlobalAlerts(ctx, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}

	// Item with model-supplied coordinates is untouched.
	if alerts[0].Lat == nil || *alerts[0].Lat != -22.9068 {
		t.Errorf("expected original coordinates on alert 0, got %+v", alerts[0].Lat)
	}
	// Item with no coordinates is repaired by geocoding its location.
	if alerts[1].Lat == nil || *alerts[1].Lat != 33.4484 {
		t.Errorf("expected repaired coordinates on alert 1, got %+v", alerts[1].Lat)
	}
	// A (0,0) placeholder counts as missing and is repaired too.
	if alerts[2].Lng == nil || *alerts[2].Lng != 77.209 {
		t.Errorf("expected repaired coordinates on alert 2, got %+v", alerts[2].Lng)
	}

	seen := map[string]bool{}
	for i, a := range alerts {
		if a.ID == "" || seen[a.ID] {
			t.Errorf("alert %d has a missing or duplicate id", i)
		}
		seen[a.ID] = true
		if a.Scope != model.ScopeGlobal {
			t.Errorf("alert %d has scope %q", i, a.Scope)
		}
		if len(a.Sources) != 2 || a.Sources[0].URI != citations[0].URI {
			t.Errorf("alert %d must carry the shared batch citations, got %+v", i, a.Sources)
		}
		if a.FetchedAt != alerts[0].FetchedAt {
			t.Errorf("alert %d must share the batch timestamp", i)
		}
	}

	// A second call is served from the cache.
	calls := client.contentCallCount()
	if _, err := svc.GlobalAlerts(ctx, false); err != nil {
		t.Fatalf("cached call failed: %v", err)
	}
	if client.contentCallCount() != calls {
		t.Error("expected the repeat call to be served from cache")
	}

	// forceRefresh bypasses the cache read.
	if _, err := svc.GlobalAlerts(ctx, true); err != nil {
		t.Fatalf("refresh call failed: %v", err)
	}
	if client.contentCallCount() == calls {
		t.Error("expected forceRefresh to reach upstream")
	}
}

func TestGlobalAlerts_GeocodeFailureIsolated(t *testing.T) {
	client := &mockClient{}
	client.generate = alertScript("Events found.", nil, threeAlertsJSON,
		func(prompt string) (*genai.ContentResponse, error) {
			if strings.Contains(prompt, "Phoenix") {
				return nil, errors.New("geocode backend down")
			}
			return &genai.ContentResponse{Text: `{"lat": 28.6139, "lng": 77.209, "foundLocationName": "New Delhi, India"}`}, nil
		})
	svc := newTestService(client)

	alerts, err := svc.GlobalAlerts(context.Background(), false)
	if err != nil {
		t.Fatalf("one failed repair must not fail the batch: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	if alerts[1].Lat != nil || alerts[1].Lng != nil {
		t.Errorf("unrepairable alert must keep nil coordinates, got %+v/%+v", alerts[1].Lat, alerts[1].Lng)
	}
	if alerts[1].Location != "Phoenix, Arizona" {
		t.Errorf("unrepairable alert must keep its textual location, got %q", alerts[1].Location)
	}
	if alerts[2].Lat == nil {
		t.Error("other repairs must still succeed")
	}
}

func TestLocalAlerts_EmptyGroundingIsEmptyResult(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			if req.Grounding != genai.GroundingSearch {
				t.Errorf("unexpected non-grounded call: %q", req.Prompt)
			}
			return &genai.ContentResponse{Text: ""}, nil
		},
	}
	svc := newTestService(client)
	ctx := context.Background()

	alerts, err := svc.LocalAlerts(ctx, 51.5, -0.12, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alerts == nil || len(alerts) != 0 {
		t.Fatalf("expected an empty slice, got %#v", alerts)
	}

	// The empty answer is itself cached.
	if _, err := svc.LocalAlerts(ctx, 51.5, -0.12, false); err != nil {
		t.Fatalf("cached call failed: %v", err)
	}
	if n := client.contentCallCount(); n != 1 {
		t.Errorf("expected the empty result to be cached, got %d upstream calls", n)
	}
}

func TestGlobalAlerts_StructuringFailureIsFatal(t *testing.T) {
	client := &mockClient{}
	client.generate = alertScript("Events found.", nil, `{"not": "an array"}`, nil)
	svc := newTestService(client)

	if _, err := svc.GlobalAlerts(context.Background(), false); err == nil {
		t.Fatal("expected a structuring failure to surface")
	}
	var capability *CapabilityError
	alerts, err := svc.GlobalAlerts(context.Background(), false)
	if err == nil || !errors.As(err, &capability) {
		t.Fatalf("expected a capability error, got %v (%v)", err, alerts)
	}
}
