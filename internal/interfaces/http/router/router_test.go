package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func text(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	invoices := NewDomainGroup("invoices", "/invoices")
	invoices.POST("/pdf", text("pdf"))

	health := NewDomainGroup("health", "/health")
	health.GET("", text("ok"))

	r.Register(invoices).RegisterRoot(health)
	r.Setup()

	w := serve(engine, http.MethodPost, "/api/v1/invoices/pdf")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pdf", w.Body.String())

	w = serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/health").Code)
	assert.Equal(t, []string{"GET /health", "POST /api/v1/invoices/pdf"}, r.Routes())
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("jobs", "/jobs")
	g.GET("/:id", text("get")).
		POST("", text("post")).
		PUT("/:id", text("put")).
		DELETE("/:id", text("delete")).
		Handle(http.MethodPatch, "/:id", text("patch"))

	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/api/v1/jobs/42", "get"},
		{http.MethodPost, "/api/v1/jobs", "post"},
		{http.MethodPut, "/api/v1/jobs/42", "put"},
		{http.MethodDelete, "/api/v1/jobs/42", "delete"},
		{http.MethodPatch, "/api/v1/jobs/42", "patch"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := serve(engine, tt.method, tt.target)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}

func TestDomainGroup_MiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("print", "/print")
	g.Use(func(c *gin.Context) {
		c.Header("X-Group", "print")
		c.Next()
	})

	jobs := g.Group("print-jobs", "/jobs")
	jobs.GET("", text("list"))
	jobs.GET("/:id/download", text("download"))

	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/print/jobs")
	assert.Equal(t, "list", w.Body.String())
	assert.Equal(t, "print", w.Header().Get("X-Group"), "parent middleware applies to subgroups")

	w = serve(engine, http.MethodGet, "/api/v1/print/jobs/abc/download")
	assert.Equal(t, "download", w.Body.String())

	assert.Equal(t, "print", g.Name())
	assert.Equal(t, "/print", g.Prefix())
}

func TestDomainGroup_Paths(t *testing.T) {
	g := NewDomainGroup("print", "/print")
	g.POST("/render", text(""))
	jobs := g.Group("print-jobs", "/jobs")
	jobs.GET("", text(""))
	jobs.GET("/:id", text(""))

	assert.Equal(t, []string{
		"POST /print/render",
		"GET /print/jobs",
		"GET /print/jobs/:id",
	}, g.Paths())
}
