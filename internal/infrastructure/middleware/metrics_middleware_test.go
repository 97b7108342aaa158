package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"classhub/internal/infrastructure/monitoring"

	"github.com/gin-gonic/gin"
)

// Test that forbidden responses increment the denial counter and
// successful ones do not.
func TestMetricsMiddleware_CountsAuthDenials(t *testing.T) {
	gin.SetMode(gin.TestMode)

	collector := monitoring.NewCollector()

	router := gin.New()
	router.Use(MetricsMiddleware(collector))
	router.GET("/allowed", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.DELETE("/channels/:id", func(c *gin.Context) {
		c.JSON(http.StatusForbidden, gin.H{"error": "NOT_AUTHORIZED"})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodDelete, "/channels/c1", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", w.Code)
		}
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/allowed", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	if got := denialCount(t, collector, "DELETE /channels/:id"); got != 2 {
		t.Fatalf("expected 2 recorded denials, got %v", got)
	}
}

func denialCount(t *testing.T, collector *monitoring.Collector, operation string) float64 {
	t.Helper()

	families, err := collector.Registry().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "classhub_authorization_denials_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "operation" && label.GetValue() == operation {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
