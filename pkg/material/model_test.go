package material

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/carbon-analyzer/pkg/processing"
	"github.com/menta2k/carbon-analyzer/pkg/types"
)

type fakeVisionClient struct {
	result *types.MaterialScores
	err    error
	calls  int
	model  string

	description string
	prompt      string
}

func (f *fakeVisionClient) SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	f.calls++
	f.model = model
	f.prompt = prompt
	if imgB64 == "" {
		return "", errors.New("empty image payload")
	}
	return f.description, f.err
}

func (f *fakeVisionClient) AnalyzeMaterials(ctx context.Context, model, prompt, imgB64 string) (*types.MaterialScores, error) {
	f.calls++
	f.model = model
	if imgB64 == "" {
		return nil, errors.New("empty image payload")
	}
	return f.result, f.err
}

func grayImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{120, 120, 120, 255})
		}
	}
	return img
}

func TestModelClassify(t *testing.T) {
	fake := &fakeVisionClient{result: &types.MaterialScores{
		Materials: []types.MaterialScore{
			{Type: "glass", Confidence: 0.99},
			{Type: "Aluminum ", Confidence: 0.7},
			{Type: "aluminum", Confidence: 0.6},
			{Type: "cardboard", Confidence: 0.5},
			{Type: "plastic_pet", Confidence: 0.8},
			{Type: "paper", Confidence: 0.65},
			{Type: "unobtainium", Confidence: 0.9},
		},
	}}
	m := NewModel(fake)

	detections := m.Classify(context.Background(), grayImage(40, 20))

	if fake.calls != 1 {
		t.Fatalf("Expected one model call, got %d", fake.calls)
	}
	if fake.model != DefaultModelConfig().Model {
		t.Errorf("Expected default model, got %q", fake.model)
	}
	if len(detections) != MaxResults {
		t.Fatalf("Expected %d detections, got %d", MaxResults, len(detections))
	}

	want := []struct {
		tag        string
		confidence float64
	}{
		{"glass", MaxConfidence},
		{"plastic_pet", 0.8},
		{"aluminum", 0.7},
	}
	for i, w := range want {
		if detections[i].MaterialType != w.tag || detections[i].Confidence != w.confidence {
			t.Errorf("Detection %d: expected %s %.2f, got %s %.2f",
				i, w.tag, w.confidence, detections[i].MaterialType, detections[i].Confidence)
		}
		if detections[i].BoundingBox != (types.BoundingBox{W: 40, H: 20}) {
			t.Errorf("Detection %d: unexpected box %+v", i, detections[i].BoundingBox)
		}
	}
}

func TestModelThresholdIsStrict(t *testing.T) {
	fake := &fakeVisionClient{result: &types.MaterialScores{
		Materials: []types.MaterialScore{{Type: "cardboard", Confidence: 0.5}},
	}}

	detections := NewModel(fake).Classify(context.Background(), grayImage(10, 10))
	if len(detections) != 0 {
		t.Errorf("Expected no detections at the threshold, got %+v", detections)
	}
}

func TestModelFallbacks(t *testing.T) {
	cases := map[string]*fakeVisionClient{
		"transport error":   {err: errors.New("connection refused")},
		"fallback response": {result: &types.MaterialScores{Description: "Model returned non-JSON response", Fallback: true}},
		"nil response":      {},
	}

	for name, fake := range cases {
		detections := NewModel(fake).Classify(context.Background(), grayImage(30, 15))
		assertFallback(t, name, detections, 30, 15)
	}
}

func TestModelRejectsEmptyImage(t *testing.T) {
	fake := &fakeVisionClient{}
	m := NewModel(fake)

	assertFallback(t, "nil image", m.Classify(context.Background(), nil), 0, 0)
	assertFallback(t, "zero-size image", m.Classify(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0))), 0, 0)

	if fake.calls != 0 {
		t.Errorf("Expected no model calls for empty images, got %d", fake.calls)
	}
}

func assertFallback(t *testing.T, name string, detections []types.MaterialDetection, w, h int) {
	t.Helper()
	if len(detections) != 2 {
		t.Fatalf("%s: expected fallback guess, got %+v", name, detections)
	}
	if detections[0].MaterialType != "plastic" || detections[0].Confidence != 0.4 {
		t.Errorf("%s: unexpected first guess %+v", name, detections[0])
	}
	if detections[1].MaterialType != "cardboard" || detections[1].Confidence != 0.3 {
		t.Errorf("%s: unexpected second guess %+v", name, detections[1])
	}
	if !detections[0].Fallback || !detections[1].Fallback {
		t.Errorf("%s: fallback guess not marked", name)
	}
	if detections[0].BoundingBox != (types.BoundingBox{W: w, H: h}) {
		t.Errorf("%s: unexpected box %+v", name, detections[0].BoundingBox)
	}
}

func TestModelDescribe(t *testing.T) {
	fake := &fakeVisionClient{description: "  A clear PET bottle with a blue cap.\n"}
	m := NewModel(fake)

	got, err := m.Describe(context.Background(), grayImage(30, 20))
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if got != "A clear PET bottle with a blue cap." {
		t.Errorf("Unexpected description %q", got)
	}
	if fake.prompt != DescribePrompt {
		t.Error("Expected the describe prompt")
	}
	if fake.model != DefaultModelConfig().Model {
		t.Errorf("Expected default model, got %s", fake.model)
	}
}

func TestModelDescribeErrors(t *testing.T) {
	fake := &fakeVisionClient{err: errors.New("connection refused")}
	m := NewModel(fake)

	if _, err := m.Describe(context.Background(), grayImage(10, 10)); err == nil {
		t.Error("Expected transport error to be returned")
	}
	if _, err := m.Describe(context.Background(), nil); !errors.Is(err, processing.ErrInvalidImage) {
		t.Errorf("Expected ErrInvalidImage for nil image, got %v", err)
	}
}
