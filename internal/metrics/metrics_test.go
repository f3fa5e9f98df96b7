package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	r := New()

	r.Operation("save", nil)
	r.Operation("save", nil)
	r.Operation("save", errors.New("boom"))
	r.PersistFailed()
	r.Recipes(5)

	if got := testutil.ToFloat64(r.operations.WithLabelValues("save", "ok")); got != 2 {
		t.Fatalf("expected 2 ok saves, got %v", got)
	}
	if got := testutil.ToFloat64(r.operations.WithLabelValues("save", "error")); got != 1 {
		t.Fatalf("expected 1 failed save, got %v", got)
	}
	if got := testutil.ToFloat64(r.persistFailure); got != 1 {
		t.Fatalf("expected 1 persist failure, got %v", got)
	}
	if got := testutil.ToFloat64(r.recipes); got != 5 {
		t.Fatalf("expected gauge 5, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Operation("delete", nil)
	r.Recipes(4)

	path := filepath.Join(t.TempDir(), "recipebook.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{
		`recipebook_operations_total{op="delete",outcome="ok"} 1`,
		"recipebook_recipes 4",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}
