// Package printing contains the Printing bounded context.
// It tracks invoice documents exported to PDF and kept in document storage,
// so they can be listed and downloaded again later.
package printing
