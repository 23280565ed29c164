package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/emergency_dispatch_system/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("sets deadline", func(t *testing.T) {
		// Подготовка
		router := gin.New()
		router.Use(RequestTimeout(time.Second))
		var hasDeadline bool
		router.GET("/x", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusNoContent)
		})

		// Действие
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		// Проверки
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, hasDeadline)
	})

	t.Run("zero disables", func(t *testing.T) {
		// Подготовка
		router := gin.New()
		router.Use(RequestTimeout(0))
		var hasDeadline bool
		router.GET("/x", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusNoContent)
		})

		// Действие
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		// Проверки
		assert.False(t, hasDeadline)
	})
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Подготовка
	router := gin.New()
	router.Use(RequestLogger(logger.Discard()))
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	// Действие
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	// Проверки
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
