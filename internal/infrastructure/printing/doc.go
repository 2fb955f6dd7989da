// Package printing lays out invoices as A4 PDF documents and stores the
// results.
//
// Layout is procedural: section renderers draw onto a Canvas while a Cursor
// tracks the page and the vertical write position, starting new pages when
// a section does not fit or the line-item table reaches its row quota.
// Page footers ("Page X of N") are drawn in a final pass once the page
// count is known. The gofpdf canvas is the production drawing surface.
//
// Example usage:
//
//	renderer, err := NewInvoiceRenderer(&InvoiceRendererConfig{
//	    Company: CompanyProfile{Name: "Acme Distributors"},
//	    Format:  DefaultFormatConfig(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := renderer.Render(ctx, inv, extra)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("%s: %d pages\n", result.FileName, result.PageCount)
package printing
