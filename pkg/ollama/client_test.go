package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ollama/ollama/api"
)

func newChatServer(t *testing.T, content string, check func(api.ChatRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}

		var req api.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if check != nil {
			check(req)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.ChatResponse{
			Model:   req.Model,
			Message: api.Message{Role: "assistant", Content: content},
			Done:    true,
		})
	}))
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost", "://bad"} {
		if _, err := NewClient(u); err == nil {
			t.Errorf("Expected error for %q", u)
		}
	}
}

func TestAnalyzeMaterials(t *testing.T) {
	img := []byte("fake image bytes")
	server := newChatServer(t, "```json\n{\"materials\":[{\"type\":\"glass\",\"confidence\":0.9}]}\n```", func(req api.ChatRequest) {
		if req.Model != "openbmb/minicpm-v4.5" {
			t.Errorf("Expected model openbmb/minicpm-v4.5, got %s", req.Model)
		}
		if req.Stream == nil || *req.Stream {
			t.Error("Expected a non-streaming request")
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Images) != 1 {
			t.Fatalf("Expected one message with one image, got %+v", req.Messages)
		}
		if string(req.Messages[0].Images[0]) != string(img) {
			t.Error("Image bytes were not forwarded")
		}
		if req.Options["num_ctx"] != float64(4096) {
			t.Errorf("Expected MiniCPM options, got %v", req.Options)
		}
	})
	defer server.Close()

	c, err := NewClient(server.URL + "/api/chat")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	scores, err := c.AnalyzeMaterials(context.Background(), "openbmb/minicpm-v4.5", "classify", base64.StdEncoding.EncodeToString(img))
	if err != nil {
		t.Fatalf("AnalyzeMaterials failed: %v", err)
	}
	if scores.Fallback {
		t.Fatal("Expected parsed scores, got fallback")
	}
	if len(scores.Materials) != 1 || scores.Materials[0].Type != "glass" {
		t.Errorf("Unexpected materials %+v", scores.Materials)
	}
}

func TestAnalyzeMaterialsEmptyResponse(t *testing.T) {
	server := newChatServer(t, "", nil)
	defer server.Close()

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := c.AnalyzeMaterials(context.Background(), "llava", "classify", ""); err == nil {
		t.Error("Expected error for empty response")
	}
}

func TestSimpleQueryRejectsBadBase64(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := c.SimpleQuery(context.Background(), "llava", "hi", "%%%"); err == nil {
		t.Error("Expected base64 error")
	}
}
