package traceid

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFromContext_MissingAndBound(t *testing.T) {
	if got := FromContext(context.Background()); got != Missing {
		t.Fatalf("unbound ctx -> %q, want %q", got, Missing)
	}

	ctx := WithTraceID(context.Background(), "abc123def456")
	if got := FromContext(ctx); got != "abc123def456" {
		t.Fatalf("bound ctx -> %q", got)
	}

	// blank ids are ignored
	if got := FromContext(WithTraceID(context.Background(), "   ")); got != Missing {
		t.Fatalf("blank id should not bind, got %q", got)
	}
}

func TestFromContext_IsolatedPerRequest(t *testing.T) {
	a := WithTraceID(context.Background(), "req-a")
	b := WithTraceID(context.Background(), "req-b")
	if FromContext(a) != "req-a" || FromContext(b) != "req-b" {
		t.Fatalf("contexts leaked: a=%q b=%q", FromContext(a), FromContext(b))
	}
}

func TestFromGin_KeyThenRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	if got := FromGin(nil); got != Missing {
		t.Fatalf("nil gin ctx -> %q", got)
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("GET", "/", nil)
	c.Request = req
	if got := FromGin(c); got != Missing {
		t.Fatalf("no binding -> %q", got)
	}

	c.Request = req.WithContext(WithTraceID(req.Context(), "from-ctx"))
	if got := FromGin(c); got != "from-ctx" {
		t.Fatalf("request ctx -> %q", got)
	}

	c.Set(Key, "from-key")
	if got := FromGin(c); got != "from-key" {
		t.Fatalf("gin key should win, got %q", got)
	}

	c.Set(Key, 42) // wrong type falls through
	if got := FromGin(c); got != "from-ctx" {
		t.Fatalf("wrong-type key should fall back, got %q", got)
	}
}

func TestNew_Shape(t *testing.T) {
	id := New()
	if len(id) != 32 {
		t.Fatalf("len=%d (%q)", len(id), id)
	}
	for _, r := range id {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			t.Fatalf("non-hex rune %q in %q", r, id)
		}
	}
	if New() == id {
		t.Fatalf("expected unique ids")
	}
}
