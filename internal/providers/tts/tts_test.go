package tts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"revoice/internal/dubbing"
	"revoice/internal/providers"
)

func TestSynthesizeRequestShape(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte("riff-wav-audio"))
	}))
	defer server.Close()

	client := NewClient(providers.Config{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o-mini-tts"})
	audio, err := client.Synthesize(context.Background(), dubbing.SpeechRequest{
		Text:           "Bonjour le monde",
		Voice:          "coral",
		Instructions:   "Speak at a natural, conversational pace.",
		ResponseFormat: "wav",
		Speed:          1.1,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if string(audio) != "riff-wav-audio" {
		t.Fatalf("audio = %q", audio)
	}
	if captured["model"] != "gpt-4o-mini-tts" {
		t.Fatalf("model = %v", captured["model"])
	}
	if captured["voice"] != "coral" || captured["input"] != "Bonjour le monde" {
		t.Fatalf("request = %v", captured)
	}
	if captured["speed"] != 1.1 {
		t.Fatalf("speed = %v", captured["speed"])
	}
	if _, ok := captured["stream"]; ok {
		t.Fatal("blocking request carries stream flag")
	}
}

func TestSynthesizeStreamDeliversChunks(t *testing.T) {
	payload := make([]byte, 80*1024)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &req)
		if req["stream"] != true {
			t.Errorf("stream flag = %v", req["stream"])
		}
		w.Write(payload)
	}))
	defer server.Close()

	client := NewClient(providers.Config{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o-mini-tts"})
	chunks, errs := client.SynthesizeStream(context.Background(), dubbing.SpeechRequest{
		Text: "text", Voice: "coral", ResponseFormat: "wav", Speed: 1.0,
	})

	var received []byte
	for chunk := range chunks {
		received = append(received, chunk...)
	}
	select {
	case err := <-errs:
		t.Fatalf("stream error: %v", err)
	default:
	}
	if len(received) != len(payload) {
		t.Fatalf("received %d bytes, want %d", len(received), len(payload))
	}
	for i := range received {
		if received[i] != payload[i] {
			t.Fatalf("byte %d differs", i)
		}
	}
}

func TestSynthesizeStreamReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad voice", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(providers.Config{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o-mini-tts"})
	chunks, errs := client.SynthesizeStream(context.Background(), dubbing.SpeechRequest{
		Text: "text", Voice: "nope", ResponseFormat: "wav",
	})

	for range chunks {
		t.Fatal("received chunk from failed stream")
	}
	if err := <-errs; err == nil {
		t.Fatal("expected stream error")
	}
}
