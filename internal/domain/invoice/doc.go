// Package invoice holds the read-only invoice records the document renderer
// consumes, together with the quantity and summary arithmetic shared by the
// layout code and the API.
package invoice
