package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func captureLog(t *testing.T, fn func()) []map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stdout)
		log.SetFlags(flags)
	}()

	fn()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogKV_FlattensErrors(t *testing.T) {
	entries := captureLog(t, func() {
		Error("notification insert failed", map[string]interface{}{"error": errors.New("boom"), "shipment_id": "s1"})
	})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["level"] != "error" || entries[0]["error"] != "boom" || entries[0]["shipment_id"] != "s1" {
		t.Fatalf("unexpected entry: %v", entries[0])
	}
}

func TestJSONLogger_LogsServerErrorsAtErrorLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JSONLogger())
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	entries := captureLog(t, func() {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["level"] != "error" || entries[0]["route"] != "/fail" {
		t.Fatalf("unexpected entry: %v", entries[0])
	}
}
