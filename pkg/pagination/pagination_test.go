package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query       string
		page, limit int
	}{
		{"", 1, 20},
		{"?page=3&limit=10", 3, 10},
		{"?page=0&limit=0", 1, 20},
		{"?page=-2&limit=500", 1, 100},
		{"?page=abc&limit=xyz", 1, 20},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/items"+tt.query, nil)
		p := Parse(c)
		if p.Page != tt.page || p.Limit != tt.limit {
			t.Errorf("Parse(%q) = %+v, want page %d limit %d", tt.query, p, tt.page, tt.limit)
		}
		if p.Offset != (p.Page-1)*p.Limit {
			t.Errorf("Parse(%q) offset = %d", tt.query, p.Offset)
		}
	}
}

func TestTotalPages(t *testing.T) {
	p := New(1, 20)
	for total, want := range map[int64]int{0: 0, 1: 1, 20: 1, 21: 2, 100: 5} {
		if got := p.TotalPages(total); got != want {
			t.Errorf("TotalPages(%d) = %d, want %d", total, got, want)
		}
	}
}
