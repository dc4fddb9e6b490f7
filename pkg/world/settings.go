package world

import "golang.org/x/image/colornames"

// Settings are the global display toggles applied to every drawable.
type Settings struct {
	ShowGrid    bool
	ShowAxes    bool
	DynamicGrid bool
	GridSpacing float32

	// FilledPolygons lets polygons marked Filled render a solid interior.
	FilledPolygons bool
	// Triangulate fills the whole polygon instead of its first three points.
	Triangulate bool

	MinorGridColor Color
	MajorGridColor Color
	AxisColor      Color
}

// DefaultSettings returns the stock display toggles.
func DefaultSettings() Settings {
	return Settings{
		ShowGrid:       true,
		ShowAxes:       true,
		DynamicGrid:    true,
		GridSpacing:    10,
		FilledPolygons: true,
		MinorGridColor: FromStd(colornames.Gainsboro),
		MajorGridColor: FromStd(colornames.Darkgray),
		AxisColor:      FromStd(colornames.Lightslategray),
	}
}
