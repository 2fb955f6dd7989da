package handler

import (
	"github.com/dms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// InvoiceRoutes creates the route group for invoice rendering
func InvoiceRoutes(h *InvoicePrintHandler, mw ...gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("invoices", "/invoices")
	group.Use(mw...)

	group.POST("/pdf", h.RenderInvoice)
	group.POST("/pdf/batch", h.RenderBatch)

	return group
}

// PrintJobRoutes creates the route group for stored print jobs
func PrintJobRoutes(h *InvoicePrintHandler, mw ...gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("print", "/print")
	group.Use(mw...)

	jobs := group.Group("print-jobs", "/jobs")
	jobs.GET("", h.ListJobs)
	jobs.GET("/:id", h.GetJob)
	jobs.GET("/:id/download", h.DownloadJob)

	return group
}
