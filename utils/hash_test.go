package utils

import (
	"strings"
	"testing"
)

func TestHashContent(t *testing.T) {
	got := HashContent([]byte("https://example.com"))
	if got != "100680ad546ce6a577f42f52df33b4cfdca756859e664b8d7de329b150d09ce9" {
		t.Errorf("HashContent() = %v", got)
	}
	if HashContent([]byte("a")) == HashContent([]byte("b")) {
		t.Error("Different content produced same hash")
	}
}

func TestETag(t *testing.T) {
	tag := ETag([]byte(`{"pages":[]}`))
	if !strings.HasPrefix(tag, `"`) || !strings.HasSuffix(tag, `"`) {
		t.Errorf("ETag() = %s, want quoted value", tag)
	}
	if len(tag) != 34 {
		t.Errorf("ETag() length = %d, want 34", len(tag))
	}
	if tag != ETag([]byte(`{"pages":[]}`)) {
		t.Error("ETag() not deterministic")
	}
}
