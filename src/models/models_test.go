package models

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestScriptedModelReplaysScript(t *testing.T) {
	m := NewScriptedModel("first", "second")
	ctx := context.Background()

	for i, want := range []string{"first", "second"} {
		got, err := m.Generate(ctx, "prompt")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got != want {
			t.Errorf("call %d = %q, want %q", i, got, want)
		}
	}
}

func TestScriptedModelEchoesAfterScript(t *testing.T) {
	m := NewScriptedModel()
	got, err := m.Generate(context.Background(), "line one\n\nlast line\n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "last line") {
		t.Errorf("Generate = %q, expected echo of last line", got)
	}
}

func TestScriptedModelFallback(t *testing.T) {
	m := NewScriptedModel("only")
	m.Fallback = "out of lines"

	if _, err := m.Generate(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	got, err := m.Generate(context.Background(), "b")
	if err != nil {
		t.Fatal(err)
	}
	if got != "out of lines" {
		t.Errorf("Generate = %q, want fallback", got)
	}
}

type countingModel struct {
	calls int32
	reply string
	err   error
}

func (m *countingModel) Generate(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.reply, m.err
}

func TestCachedModelGenerate(t *testing.T) {
	mock := &countingModel{reply: "answer"}
	cached := NewCachedModel(mock, 10, time.Minute, "")
	ctx := context.Background()

	// First call hits the model.
	got, err := cached.Generate(ctx, "hello")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if got != "answer" {
		t.Errorf("Generate = %q", got)
	}
	if count := atomic.LoadInt32(&mock.calls); count != 1 {
		t.Errorf("expected 1 call, got %d", count)
	}

	// Second call is served from cache.
	if _, err := cached.Generate(ctx, "hello"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if count := atomic.LoadInt32(&mock.calls); count != 1 {
		t.Errorf("expected 1 call (cached), got %d", count)
	}

	// Different prompt hits the model again.
	if _, err := cached.Generate(ctx, "world"); err != nil {
		t.Fatalf("third call: %v", err)
	}
	if count := atomic.LoadInt32(&mock.calls); count != 2 {
		t.Errorf("expected 2 calls, got %d", count)
	}
}

func TestCachedModelDoesNotCacheErrors(t *testing.T) {
	mock := &countingModel{err: errors.New("provider down")}
	cached := NewCachedModel(mock, 10, time.Minute, "")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := cached.Generate(ctx, "hello"); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if count := atomic.LoadInt32(&mock.calls); count != 2 {
		t.Errorf("expected 2 calls, got %d", count)
	}
}

func TestCachedModelFilePersistence(t *testing.T) {
	path := t.TempDir() + "/llm_cache.json"
	ctx := context.Background()

	mock := &countingModel{reply: "persisted"}
	first := NewCachedModel(mock, 10, time.Hour, path)
	if _, err := first.Generate(ctx, "hello"); err != nil {
		t.Fatal(err)
	}

	// A fresh instance restores the entry from disk and never calls the
	// underlying model.
	second := NewCachedModel(&countingModel{reply: "fresh"}, 10, time.Hour, path)
	got, err := second.Generate(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if got != "persisted" {
		t.Errorf("Generate = %q, expected restored value", got)
	}
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider(context.Background(), "clippy", "v1")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestNewProviderScripted(t *testing.T) {
	m, err := NewProvider(context.Background(), "scripted", "")
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("nil model")
	}
}
