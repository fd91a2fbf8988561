package client

import "testing"

func TestParseMaterialScores(t *testing.T) {
	raw := "```json\n{\n  \"materials\": [\n    {\"type\": \"glass\", \"confidence\": 0.8}, // bottle\n    {\"type\": \"aluminum\", \"confidence\": 0.6},\n  ],\n  \"description\": \"a bottle\"\n}\n```"

	result := ParseMaterialScores(raw)
	if result.Fallback {
		t.Fatalf("Expected parsed result, got fallback: %s", result.Description)
	}
	if len(result.Materials) != 2 {
		t.Fatalf("Expected 2 materials, got %d", len(result.Materials))
	}
	if result.Materials[0].Type != "glass" || result.Materials[0].Confidence != 0.8 {
		t.Errorf("Unexpected first material: %+v", result.Materials[0])
	}
	if result.Description != "a bottle" {
		t.Errorf("Unexpected description: %q", result.Description)
	}
}

func TestParseMaterialScoresFallbacks(t *testing.T) {
	cases := []string{
		"I see a can of soda.",
		"{\"materials\": [ {\"type\": }",
		"",
	}
	for _, raw := range cases {
		if result := ParseMaterialScores(raw); !result.Fallback {
			t.Errorf("Expected fallback for %q, got %+v", raw, result)
		}
	}
}

func TestSanitizeModelJSONKeepsOutermostObject(t *testing.T) {
	got := SanitizeModelJSON("Here you go: {\"a\": {\"b\": 1}} thanks")
	if got != "{\"a\": {\"b\": 1}}" {
		t.Errorf("Unexpected sanitized JSON: %q", got)
	}
}
