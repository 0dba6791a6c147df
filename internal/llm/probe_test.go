package llm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClient is a Client double that counts calls
type fakeClient struct {
	mu        sync.Mutex
	models    []string
	listErr   error
	listCalls atomic.Int32
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) Generate(context.Context, GenerateRequest) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeClient) Chat(context.Context, ChatRequest) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeClient) ListModels(context.Context) ([]string, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.models, f.listErr
}

func TestProber_CachesModels(t *testing.T) {
	client := &fakeClient{models: []string{"llama3.2:latest", "llava:13b"}}
	prober := NewProber(client, time.Second, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := prober.HasModel(ctx, "llava")
		if err != nil || !ok {
			t.Fatalf("HasModel(llava) = %v, %v", ok, err)
		}
	}
	if n := client.listCalls.Load(); n != 1 {
		t.Errorf("Expected one probe, got %d", n)
	}

	prober.Invalidate()
	_, _ = prober.Models(ctx)
	if n := client.listCalls.Load(); n != 2 {
		t.Errorf("Expected a fresh probe after Invalidate, got %d calls", n)
	}
}

func TestProber_CachesFailures(t *testing.T) {
	client := &fakeClient{listErr: ErrUnavailable}
	prober := NewProber(client, time.Second, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if prober.Available(ctx) {
			t.Fatal("Expected unavailable")
		}
	}
	if n := client.listCalls.Load(); n != 1 {
		t.Errorf("Expected failure to be cached, got %d probes", n)
	}

	ok, err := prober.HasModel(ctx, "llava")
	if ok || !errors.Is(err, ErrUnavailable) {
		t.Errorf("HasModel = %v, %v", ok, err)
	}
}

func TestProber_ZeroTTLDoesNotCache(t *testing.T) {
	client := &fakeClient{models: []string{"llava"}}
	prober := NewProber(client, time.Second, 0, nil)

	_ = prober.Available(context.Background())
	_ = prober.Available(context.Background())
	if n := client.listCalls.Load(); n != 2 {
		t.Errorf("Expected 2 probes without caching, got %d", n)
	}
}

func TestProber_NilClient(t *testing.T) {
	prober := NewProber(nil, time.Second, time.Minute, nil)
	if prober.Available(context.Background()) {
		t.Error("nil client must be unavailable")
	}
}

func TestProber_CancelledCallerNotCached(t *testing.T) {
	client := &fakeClient{listErr: context.Canceled}
	prober := NewProber(client, time.Second, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = prober.Models(ctx)

	client.mu.Lock()
	client.listErr = nil
	client.models = []string{"llava"}
	client.mu.Unlock()

	if !prober.Available(context.Background()) {
		t.Error("Cancelled probe should not have been cached")
	}
}

func TestMatchModel(t *testing.T) {
	listed := []string{"llama3.2:latest", "llava:13b", "mistral"}

	tests := []struct {
		name string
		want bool
	}{
		{"llama3.2", true},
		{"llama3.2:latest", true},
		{"llava", true},
		{"llava:13b", true},
		{"llava:7b", false},
		{"llava:latest", false},
		{"mistral", true},
		{"mistral:latest", false},
		{"llama3", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := MatchModel(listed, tt.name); got != tt.want {
			t.Errorf("MatchModel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
