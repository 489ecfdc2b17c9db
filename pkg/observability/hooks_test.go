package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	l := NoopLayoutHooks{}
	l.OnSnap(1, 0, 1)
	l.OnDetach(1, 3)
	l.OnRestore(1)
	l.OnOverflow(20)
	l.OnRelayout(10, time.Millisecond)

	s := NoopStoreHooks{}
	s.OnGet(ctx, "file", true)
	s.OnPut(ctx, "file", 1024)
	s.OnDelete(ctx, "file")

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/api/charts")
	h.OnResponse(ctx, "GET", "/api/charts", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	// nil is ignored
	SetLayoutHooks(nil)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks(nil) should keep existing hooks")
	}

	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
}

func TestLogLayoutHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogLayoutHooks(logger)

	h.OnSnap(4, 1, 3)
	h.OnOverflow(35)

	out := buf.String()
	if !strings.Contains(out, "snap") || !strings.Contains(out, "target=1") {
		t.Errorf("snap not logged: %q", out)
	}
	if !strings.Contains(out, "shift=35") {
		t.Errorf("overflow not logged: %q", out)
	}
}

func TestLogHTTPHooks(t *testing.T) {
	var buf bytes.Buffer
	SetHTTPHooks(&LogHTTPHooks{Logger: log.New(&buf)})
	defer Reset()

	HTTP().OnResponse(context.Background(), "GET", "/api/charts", 200, time.Millisecond)
	if out := buf.String(); !strings.Contains(out, "status=200") || !strings.Contains(out, "path=/api/charts") {
		t.Errorf("request not logged: %q", out)
	}
}

type testLayoutHooks struct{ NoopLayoutHooks }
type testStoreHooks struct{ NoopStoreHooks }
