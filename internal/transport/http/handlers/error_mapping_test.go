package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRespondWithMappedError(t *testing.T) {
	sentinel := errors.New("conflict")
	cases := []ErrorCase{
		{Err: sentinel, Status: http.StatusConflict, Message: "already exists"},
	}

	t.Run("mapped sentinel", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		RespondWithMappedError(c, fmt.Errorf("save: %w", sentinel), cases,
			http.StatusInternalServerError, "internal error")

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "already exists") {
			t.Fatalf("unexpected body %s", w.Body.String())
		}
	})

	t.Run("unmapped error falls back", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		RespondWithMappedError(c, errors.New("disk full"), cases,
			http.StatusInternalServerError, "internal error")

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "disk full") {
			t.Fatal("infrastructure detail must not leak to the client")
		}
	})
}
