package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationFor(query string) *Pagination {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/admin/payments?"+query, nil)
	return NewPagination(c)
}

func TestNewPagination(t *testing.T) {
	p := paginationFor("")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPaginationLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = paginationFor("page=3&limit=20")
	assert.Equal(t, 40, p.Offset)

	p = paginationFor("page=-1&limit=1000")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPaginationLimit, p.Limit)

	p = paginationFor("limit=abc")
	assert.Equal(t, DefaultPaginationLimit, p.Limit)
}

func TestPaginationSetTotal(t *testing.T) {
	p := paginationFor("limit=10")
	p.SetTotal(21)
	assert.Equal(t, int64(21), p.Total)
	assert.Equal(t, 3, p.LastPage)

	p.SetTotal(0)
	assert.Equal(t, 0, p.LastPage)
}
