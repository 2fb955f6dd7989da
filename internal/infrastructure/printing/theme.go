package printing

var (
	colorPrimary     = Color{R: 31, G: 78, B: 121}
	colorBand        = Color{R: 240, G: 245, B: 250}
	colorHeaderFill  = Color{R: 220, G: 230, B: 241}
	colorSectionFill = Color{R: 234, G: 241, B: 221}
	colorRowShade    = Color{R: 248, G: 248, B: 248}
	colorText        = Color{R: 33, G: 33, B: 33}
	colorMuted       = Color{R: 110, G: 110, B: 110}
	colorBorder      = Color{R: 190, G: 190, B: 190}

	// lighter towards the body
	stripeColors = []Color{
		{R: 46, G: 109, B: 164},
		{R: 120, G: 164, B: 204},
		{R: 200, G: 220, B: 238},
	}
)

const (
	fontSizeBody     = 9.0
	fontSizeSmall    = 7.5
	fontSizeCompany  = 14.0
	fontSizeTitle    = 26.0
	fontSizeEmphasis = 11.0

	headerBandHeight = 110.0
	headerGap        = 18.0
	logoMaxWidth     = 70.0
	logoMaxHeight    = 60.0

	infoLineHeight    = 13.0
	infoGap           = 12.0
	maxInfoValueLines = 2

	tableHeaderHeight = 20.0
	tableRowHeight    = 18.0
	cellPadding       = 4.0

	summaryRowHeight = 18.0
	summaryWidthFrac = 0.40

	acknowledgementHeight = 90.0
	signatureLineWidth    = 180.0
)
