package status

// Presentation is the display hint attached to a band.
type Presentation struct {
	Color       string `json:"color"`
	Description string `json:"description"`
}

var presentations = map[Band]Presentation{
	Critical:   {Color: "red", Description: "Immediate action required"},
	Poor:       {Color: "red", Description: "Below acceptable limit"},
	Warning:    {Color: "amber", Description: "Plan maintenance"},
	Acceptable: {Color: "amber", Description: "Within limits, monitor trend"},
	Good:       {Color: "green", Description: "Within normal range"},
	Normal:     {Color: "green", Description: "Within normal range"},
	Excellent:  {Color: "blue", Description: "Better than expected"},
	Unknown:    {Color: "grey", Description: "N/A"},
}

// Present returns the display hint for b.
func Present(b Band) Presentation {
	if p, ok := presentations[b]; ok {
		return p
	}
	return presentations[Unknown]
}
