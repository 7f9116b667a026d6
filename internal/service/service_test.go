package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/geosick/geosick/internal/cache"
	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
)

// mockClient scripts provider behavior per request. Tests route on the
// request's grounding mode and prompt content, the same signals the
// real provider sees.
type mockClient struct {
	mu           sync.Mutex
	contentCalls []genai.ContentRequest
	imageCalls   []genai.ImageRequest

	generate func(req genai.ContentRequest) (*genai.ContentResponse, error)
	image    func(req genai.ImageRequest) (*genai.ImageResponse, error)
}

func (m *mockClient) Name() string { return "mock" }

func (m *mockClient) GenerateContent(ctx context.Context, req genai.ContentRequest) (*genai.ContentResponse, error) {
	m.mu.Lock()
	m.contentCalls = append(m.contentCalls, req)
	m.mu.Unlock()
	if m.generate == nil {
		return nil, errors.New("no content script")
	}
	return m.generate(req)
}

func (m *mockClient) GenerateImage(ctx context.Context, req genai.ImageRequest) (*genai.ImageResponse, error) {
	m.mu.Lock()
	m.imageCalls = append(m.imageCalls, req)
	m.mu.Unlock()
	if m.image == nil {
		return nil, errors.New("no image script")
	}
	return m.image(req)
}

func (m *mockClient) IsAvailable(ctx context.Context) bool { return true }

func (m *mockClient) contentCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contentCalls)
}

func newTestService(client genai.Client) *Service {
	cfg := model.DefaultConfig()
	cfg.GenAI.InitialDelay = time.Millisecond
	return New(client, cache.NewMemoryCache(time.Minute, time.Minute), cfg, zerolog.Nop())
}

const validLocationJSON = `{
	"locationName": "Central Park, New York, USA",
	"hazards": [{"hazard": "Stagnant water", "description": "Ponds with limited circulation"}],
	"diseases": [{"name": "West Nile Virus", "cause": "Mosquitoes breeding in stagnant water", "precautions": ["Use repellent"]}],
	"summary": "Localized vector risk near standing water."
}`

func TestAnalyzeLocation_CacheKeyedByRoundedCoordinates(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			return &genai.ContentResponse{Text: validLocationJSON}, nil
		},
		image: func(req genai.ImageRequest) (*genai.ImageResponse, error) {
			return &genai.ImageResponse{Data: []byte("img"), MIMEType: "image/jpeg"}, nil
		},
	}
	svc := newTestService(client)
	ctx := context.Background()

	if _, err := svc.AnalyzeLocation(ctx, 12.3456, 98.7654, "en-US", ""); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := svc.AnalyzeLocation(ctx, 12.3456, 98.7654, "en-US", ""); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if n := client.contentCallCount(); n != 1 {
		t.Errorf("identical request must be served from cache, got %d upstream calls", n)
	}

	// A different rounding bucket is a distinct request.
	if _, err := svc.AnalyzeLocation(ctx, 12.3457, 98.7654, "en-US", ""); err != nil {
		t.Fatalf("third call failed: %v", err)
	}
	if n := client.contentCallCount(); n != 2 {
		t.Errorf("different coordinate bucket must miss the cache, got %d upstream calls", n)
	}
}

func TestAnalyzeLocation_KnownNameNormalizedInKey(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			return &genai.ContentResponse{Text: validLocationJSON}, nil
		},
		image: func(req genai.ImageRequest) (*genai.ImageResponse, error) {
			return &genai.ImageResponse{Data: []byte("img"), MIMEType: "image/jpeg"}, nil
		},
	}
	svc := newTestService(client)
	ctx := context.Background()

	if _, err := svc.AnalyzeLocation(ctx, 40.7829, -73.9654, "en-US", "Central Park"); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	// Same logical name, different casing and whitespace.
	if _, err := svc.AnalyzeLocation(ctx, 40.7829, -73.9654, "en-US", "  central park "); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if n := client.contentCallCount(); n != 1 {
		t.Errorf("known-name variants of the same request must share a cache entry, got %d upstream calls", n)
	}
}

func TestAnalyzeLocation_ImageFailureDegrades(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			return &genai.ContentResponse{Text: validLocationJSON}, nil
		},
		image: func(req genai.ImageRequest) (*genai.ImageResponse, error) {
			return nil, errors.New("image backend down")
		},
	}
	svc := newTestService(client)

	report, err := svc.AnalyzeLocation(context.Background(), 1, 2, "en-US", "")
	if err != nil {
		t.Fatalf("analysis must survive an image failure: %v", err)
	}
	if report.Image != nil {
		t.Error("expected no image in the degraded report")
	}
	if report.Analysis.LocationName != "Central Park, New York, USA" {
		t.Errorf("unexpected analysis: %+v", report.Analysis)
	}
}

func TestAnalyzeLocation_ImageSuccessAttached(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			return &genai.ContentResponse{Text: validLocationJSON}, nil
		},
		image: func(req genai.ImageRequest) (*genai.ImageResponse, error) {
			if req.AspectRatio != "16:9" {
				t.Errorf("unexpected aspect ratio %q", req.AspectRatio)
			}
			return &genai.ImageResponse{Data: []byte("jpeg-bytes"), MIMEType: "image/jpeg"}, nil
		},
	}
	svc := newTestService(client)

	report, err := svc.AnalyzeLocation(context.Background(), 1, 2, "en-US", "Lake Shore")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(report.Image) != "jpeg-bytes" || report.ImageMIME != "image/jpeg" {
		t.Errorf("expected attached image, got %q (%s)", report.Image, report.ImageMIME)
	}
}

func TestAnalyzeLocation_MalformedAnalysisIsFatalAndUncached(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			// Missing required "summary".
			return &genai.ContentResponse{Text: `{"locationName": "X", "hazards": [], "diseases": []}`}, nil
		},
		image: func(req genai.ImageRequest) (*genai.ImageResponse, error) {
			return &genai.ImageResponse{Data: []byte("img")}, nil
		},
	}
	svc := newTestService(client)
	ctx := context.Background()

	if _, err := svc.AnalyzeLocation(ctx, 1, 2, "en-US", ""); err == nil {
		t.Fatal("expected a schema violation error")
	}

	// The failure must not have populated the cache.
	if _, err := svc.AnalyzeLocation(ctx, 1, 2, "en-US", ""); err == nil {
		t.Fatal("expected the repeat call to fail again")
	}
	if n := client.contentCallCount(); n != 2 {
		t.Errorf("failed calls must not be cached, got %d upstream calls", n)
	}
}

func TestAnalyzeImage_Success(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			if req.Attachment == nil || req.Attachment.MIMEType != "image/jpeg" {
				t.Error("expected the photo attachment on the request")
			}
			return &genai.ContentResponse{Text: `{
				"hazards": [{"hazard": "Garbage piles", "description": "Uncollected waste"}],
				"diseases": [{"name": "Leptospirosis", "cause": "Rodents attracted to waste", "precautions": ["Avoid contact"]}],
				"summary": "Sanitation-related risks present."
			}`}, nil
		},
	}
	svc := newTestService(client)

	analysis, err := svc.AnalyzeImage(context.Background(), []byte("photo"), "image/jpeg", "en-US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(analysis.Hazards) != 1 || analysis.Hazards[0].Hazard != "Garbage piles" {
		t.Errorf("unexpected hazards: %+v", analysis.Hazards)
	}
	if analysis.Summary == "" {
		t.Error("expected a summary")
	}
}

func TestAnalyzeImage_SchemaRejection(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			return &genai.ContentResponse{Text: `{"hazards": [], "diseases": []}`}, nil
		},
	}
	svc := newTestService(client)

	_, err := svc.AnalyzeImage(context.Background(), []byte("photo"), "image/jpeg", "en-US")
	if err == nil {
		t.Fatal("expected error for missing summary")
	}
	var capability *CapabilityError
	if !errors.As(err, &capability) || capability.Capability != "image analysis" {
		t.Errorf("expected an image analysis capability error, got %v", err)
	}
}

func TestAnalyzePrescription_Success(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			return &genai.ContentResponse{Text: `{
				"summary": "This prescription is for a bacterial infection.",
				"medicines": [{"name": "Amoxicillin", "dosage": "500mg, twice a day for 7 days"}],
				"precautions": ["Take with food"]
			}`}, nil
		},
	}
	svc := newTestService(client)

	prescription, err := svc.AnalyzePrescription(context.Background(), []byte("scan"), "image/png", "en-US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prescription.Medicines) != 1 || prescription.Medicines[0].Name != "Amoxicillin" {
		t.Errorf("unexpected medicines: %+v", prescription.Medicines)
	}
}

func TestRouteCommand(t *testing.T) {
	pages := []model.Page{"welcome", "symptom-checker", "live-alerts"}

	t.Run("navigate to known page", func(t *testing.T) {
		client := &mockClient{
			generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
				return &genai.ContentResponse{Text: `{"action": "navigate", "page": "symptom-checker", "responseText": "Okay, navigating."}`}, nil
			},
		}
		svc := newTestService(client)

		cmd, err := svc.RouteCommand(context.Background(), "check my symptoms", "en-US", pages)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Action != model.ActionNavigate || cmd.Page != "symptom-checker" {
			t.Errorf("unexpected command: %+v", cmd)
		}
	})

	t.Run("page outside enumeration rejected", func(t *testing.T) {
		client := &mockClient{
			generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
				return &genai.ContentResponse{Text: `{"action": "navigate", "page": "admin-dashboard", "responseText": "Sure."}`}, nil
			},
		}
		svc := newTestService(client)

		if _, err := svc.RouteCommand(context.Background(), "open admin", "en-US", pages); err == nil {
			t.Fatal("expected rejection of a page outside the supplied enumeration")
		}
	})

	t.Run("navigate without page rejected", func(t *testing.T) {
		client := &mockClient{
			generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
				return &genai.ContentResponse{Text: `{"action": "navigate", "responseText": "Going."}`}, nil
			},
		}
		svc := newTestService(client)

		if _, err := svc.RouteCommand(context.Background(), "go", "en-US", pages); err == nil {
			t.Fatal("expected rejection of navigate without a page")
		}
	})

	t.Run("speak", func(t *testing.T) {
		client := &mockClient{
			generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
				return &genai.ContentResponse{Text: `{"action": "speak", "responseText": "Drink water and rest."}`}, nil
			},
		}
		svc := newTestService(client)

		cmd, err := svc.RouteCommand(context.Background(), "what helps a cold?", "en-US", pages)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Action != model.ActionSpeak || cmd.ResponseText == "" {
			t.Errorf("unexpected command: %+v", cmd)
		}
	})
}

func TestGeocode_CachedAcrossCalls(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			return &genai.ContentResponse{Text: `{"lat": 48.8584, "lng": 2.2945, "foundLocationName": "Eiffel Tower, Paris, France"}`}, nil
		},
	}
	svc := newTestService(client)
	ctx := context.Background()

	first, err := svc.Geocode(ctx, "Eiffel Tower")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Lat != 48.8584 || first.FoundLocationName != "Eiffel Tower, Paris, France" {
		t.Errorf("unexpected result: %+v", first)
	}

	// Same logical query, different surface form: normalized key.
	second, err := svc.Geocode(ctx, "  eiffel tower ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Lng != first.Lng {
		t.Errorf("expected cached result, got %+v", second)
	}
	if n := client.contentCallCount(); n != 1 {
		t.Errorf("expected a single upstream call, got %d", n)
	}
}

func TestHealthForecast_AreaLevelKey(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			return &genai.ContentResponse{Text: `{
				"locationName": "San Francisco, CA",
				"summary": "Mild day with moderate pollen.",
				"riskFactors": [{"name": "Pollen", "level": "Moderate", "description": "Grass pollen season"}],
				"recommendations": ["Keep windows closed in the morning"]
			}`}, nil
		},
	}
	svc := newTestService(client)
	ctx := context.Background()

	if _, err := svc.HealthForecast(ctx, model.Coordinate{Lat: 37.7749, Lng: -122.4194}, "en-US"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Within the same 2-decimal bucket: cache hit.
	if _, err := svc.HealthForecast(ctx, model.Coordinate{Lat: 37.7741, Lng: -122.4191}, "en-US"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := client.contentCallCount(); n != 1 {
		t.Errorf("expected area-level caching, got %d upstream calls", n)
	}

	// A different 2-decimal bucket is a distinct forecast area.
	if _, err := svc.HealthForecast(ctx, model.Coordinate{Lat: 37.7751, Lng: -122.4191}, "en-US"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := client.contentCallCount(); n != 2 {
		t.Errorf("expected a fresh call for a different area bucket, got %d upstream calls", n)
	}
}

func TestReflect_Success(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			if !strings.Contains(req.Prompt, `"How are you sleeping?"`) {
				t.Error("expected the answers embedded in the prompt")
			}
			return &genai.ContentResponse{Text: `{
				"summary": "You have been feeling tired.",
				"potentialConcerns": [{"name": "Low Energy", "explanation": "Sleep-related"}],
				"copingStrategies": [{"title": "Wind-down routine", "description": "Screens off an hour before bed"}],
				"recommendation": "Consider talking to someone you trust if this persists."
			}`}, nil
		},
	}
	svc := newTestService(client)

	reflection, err := svc.Reflect(context.Background(), map[string]string{"How are you sleeping?": "Badly"}, "en-US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reflection.CopingStrategies) != 1 {
		t.Errorf("unexpected reflection: %+v", reflection)
	}
}

func TestAnalyzeSymptoms_Success(t *testing.T) {
	client := &mockClient{
		generate: func(req genai.ContentRequest) (*genai.ContentResponse, error) {
			return &genai.ContentResponse{Text: `{
				"summary": "Persistent cough and mild fever.",
				"triageRecommendation": "Consider consulting a doctor within a few days",
				"potentialConditions": [{"name": "Common cold", "description": "Viral upper respiratory infection"}],
				"nextSteps": ["Rest and stay hydrated"],
				"disclaimer": "This is not a medical diagnosis."
			}`}, nil
		},
	}
	svc := newTestService(client)

	report, err := svc.AnalyzeSymptoms(context.Background(), "cough and fever for three days", "en-US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TriageRecommendation == "" || report.Disclaimer == "" {
		t.Errorf("unexpected report: %+v", report)
	}
}
