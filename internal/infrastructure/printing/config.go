package printing

import (
	"github.com/dms/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RendererConfigFrom maps the invoice section of the application config onto
// renderer settings. Assets and Observer are left for the caller to wire.
func RendererConfigFrom(cfg config.InvoiceConfig, logger *zap.Logger) *InvoiceRendererConfig {
	format := DefaultFormatConfig()
	if cfg.CurrencySymbol != "" {
		format.CurrencySymbol = cfg.CurrencySymbol
	}
	if cfg.Locale != "" {
		format.Locale = cfg.Locale
	}
	if cfg.DateLayout != "" {
		format.DateLayout = cfg.DateLayout
	}
	if cfg.DateTimeLayout != "" {
		format.DateTimeLayout = cfg.DateTimeLayout
	}

	return &InvoiceRendererConfig{
		Company: CompanyProfile{
			Name:         cfg.CompanyName,
			AddressLines: cfg.AddressLines,
			Contact:      cfg.Contact,
			Copyright:    cfg.Copyright,
		},
		Format:       format,
		LogoRef:      cfg.LogoURL,
		LogoOptional: cfg.LogoOptional,
		Fonts: FontConfig{
			RegularPath: cfg.FontRegular,
			BoldPath:    cfg.FontBold,
		},
		Compress:     cfg.Compress,
		CreationDate: cfg.CreationDate,
		Logger:       logger,
	}
}
