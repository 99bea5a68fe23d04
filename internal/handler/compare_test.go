package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"propertybw/internal/compare"
	"propertybw/internal/model"
)

func compareRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCompareHandler(compare.NewManager(4, time.Minute))

	r := gin.New()
	r.GET("/api/compare", h.Get)
	r.POST("/api/compare", h.Add)
	r.DELETE("/api/compare/:id", h.Remove)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body, device string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if device != "" {
		req.Header.Set(deviceIDHeader, device)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCompareHandler_AddBoundAndDuplicate(t *testing.T) {
	r := compareRouter()

	for i := 1; i <= 4; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/compare", fmt.Sprintf(`{"property_id": %d}`, i), "d1")
		if w.Code != http.StatusOK {
			t.Fatalf("add %d: status %d, body %s", i, w.Code, w.Body.String())
		}
	}

	w := doJSON(t, r, http.MethodPost, "/api/compare", `{"property_id": 5}`, "d1")
	if w.Code != http.StatusConflict {
		t.Errorf("fifth add: status %d, want 409", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/api/compare", `{"property_id": 2}`, "d1")
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate add: status %d, want 409", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/compare", "", "d1")
	var resp model.CompareResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.PropertyIDs) != 4 || resp.Limit != 4 {
		t.Errorf("set = %+v", resp)
	}
}

func TestCompareHandler_DevicesAreIsolated(t *testing.T) {
	r := compareRouter()

	doJSON(t, r, http.MethodPost, "/api/compare", `{"property_id": 7}`, "d1")

	w := doJSON(t, r, http.MethodGet, "/api/compare", "", "d2")
	var resp model.CompareResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.PropertyIDs) != 0 {
		t.Errorf("d2 sees d1's set: %v", resp.PropertyIDs)
	}
}

func TestCompareHandler_RemoveMissingSucceeds(t *testing.T) {
	r := compareRouter()

	w := doJSON(t, r, http.MethodDelete, "/api/compare/99", "", "d1")
	if w.Code != http.StatusOK {
		t.Errorf("remove missing: status %d, want 200", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/compare/not-a-number", "", "d1")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id: status %d, want 400", w.Code)
	}
}
