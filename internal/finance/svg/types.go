package svg

// PieOpts customises the expense pie renderer.
type PieOpts struct {
	Title       string
	Description string
	EmptyLabel  string
	TextColor   string
	Stroke      string
	ShowLegend  bool
}

// BarOpts customises the revenue bar renderer.
type BarOpts struct {
	Title       string
	Description string
	SeriesLabel string
	Color       string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
}

// PieSlice is one wedge in unit circle coordinates.
type PieSlice struct {
	Label      string
	Color      string
	Percentage float64
	Path       string
}

// Defaults for the finance charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 24.0
	DefaultTicks   = 6
)
