package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func tagStage(name string, order *[]string) Stage {
	return Stage{Name: name, Middleware: func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, name)
			next.ServeHTTP(w, r)
		})
	}}
}

func TestPipeline_RunsInDeclaredOrder(t *testing.T) {
	var order []string
	mw, err := Pipeline(tagStage("headers", &order), tagStage(StageSessions, &order), tagStage(StageAuthenticate, &order))
	if err != nil {
		t.Fatalf("Pipeline() error = %v", err)
	}
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"headers", StageSessions, StageAuthenticate}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestPipeline_RefusesAuthBeforeSessions(t *testing.T) {
	var order []string
	if _, err := Pipeline(tagStage(StageAuthenticate, &order), tagStage(StageSessions, &order)); !errors.Is(err, ErrPipelineOrder) {
		t.Errorf("auth before sessions: error = %v, want ErrPipelineOrder", err)
	}
	if _, err := Pipeline(tagStage(StageAuthenticate, &order)); !errors.Is(err, ErrPipelineOrder) {
		t.Errorf("auth without sessions: error = %v, want ErrPipelineOrder", err)
	}
}

func TestPipeline_RejectsNilMiddleware(t *testing.T) {
	if _, err := Pipeline(Stage{Name: "broken"}); err == nil {
		t.Error("expected error for nil middleware")
	}
}
