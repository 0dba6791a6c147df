package llm

import (
	"net/http"
	"net/url"
	"testing"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient(Config{Provider: "Ollama"})
	if err != nil {
		t.Fatalf("NewClient(ollama): %v", err)
	}
	if client.Name() != "ollama" {
		t.Errorf("Unexpected provider %s", client.Name())
	}

	client, err = NewClient(Config{Provider: "openai", BaseURL: "http://localhost:1234/v1"})
	if err != nil {
		t.Fatalf("NewClient(openai): %v", err)
	}
	if client.Name() != "openai" {
		t.Errorf("Unexpected provider %s", client.Name())
	}

	client, err = NewClient(Config{})
	if err != nil || client != nil {
		t.Errorf("Empty provider should disable inference, got %v, %v", client, err)
	}

	if _, err := NewClient(Config{Provider: "anthropic"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNewProxyFunc(t *testing.T) {
	proxy := newProxyFunc("http://proxy.local:3128", "", "models.internal")

	req := &http.Request{URL: &url.URL{Scheme: "http", Host: "inference.example:11434"}}
	got, err := proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if got == nil || got.Host != "proxy.local:3128" {
		t.Errorf("Expected proxy.local:3128, got %v", got)
	}

	req = &http.Request{URL: &url.URL{Scheme: "http", Host: "models.internal:11434"}}
	got, err = proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if got != nil {
		t.Errorf("no_proxy host should bypass the proxy, got %v", got)
	}

	// loopback never goes through a proxy
	req = &http.Request{URL: &url.URL{Scheme: "http", Host: "localhost:11434"}}
	if got, _ := proxy(req); got != nil {
		t.Errorf("localhost should bypass the proxy, got %v", got)
	}
}
