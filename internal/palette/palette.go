// Package palette holds the raw colour definitions behind the built-in themes.
package palette

// Palette lists the colours of one theme as #rrggbb strings.
type Palette struct {
	Background string
	Text       string
	Keyword    string
	String     string
	Comment    string
	Number     string
	Function   string
	Type       string
	Operator   string
	LineNumber string
	Header     string
}

var (
	PaletteLight = Palette{
		Background: "#ffffff",
		Text:       "#1a1a1a",
		Keyword:    "#0066cc",
		String:     "#008000",
		Comment:    "#808080",
		Number:     "#800080",
		Function:   "#cc6600",
		Type:       "#008080",
		Operator:   "#cc0000",
		LineNumber: "#666666",
		Header:     "#000000",
	}
	PaletteDark = Palette{
		Background: "#2d2d2d",
		Text:       "#f0f0f0",
		Keyword:    "#66b3ff",
		String:     "#66ff66",
		Comment:    "#b3b3b3",
		Number:     "#ff66ff",
		Function:   "#ffcc66",
		Type:       "#66ffcc",
		Operator:   "#ff6666",
		LineNumber: "#999999",
		Header:     "#ffffff",
	}
	PaletteSolarizedLight = Palette{
		Background: "#fdf6e3",
		Text:       "#657b83",
		Keyword:    "#859900",
		String:     "#2aa198",
		Comment:    "#93a1a1",
		Number:     "#d33682",
		Function:   "#268bd2",
		Type:       "#b58900",
		Operator:   "#cb4b16",
		LineNumber: "#93a1a1",
		Header:     "#073642",
	}
	PaletteSolarizedDark = Palette{
		Background: "#002b36",
		Text:       "#839496",
		Keyword:    "#859900",
		String:     "#2aa198",
		Comment:    "#586e75",
		Number:     "#d33682",
		Function:   "#268bd2",
		Type:       "#b58900",
		Operator:   "#cb4b16",
		LineNumber: "#586e75",
		Header:     "#eee8d5",
	}
	PaletteGithubLight = Palette{
		Background: "#ffffff",
		Text:       "#24292f",
		Keyword:    "#cf222e",
		String:     "#0a3069",
		Comment:    "#6e7781",
		Number:     "#0550ae",
		Function:   "#8250df",
		Type:       "#953800",
		Operator:   "#cf222e",
		LineNumber: "#8c959f",
		Header:     "#1f2328",
	}
	PaletteGithubDark = Palette{
		Background: "#0d1117",
		Text:       "#c9d1d9",
		Keyword:    "#ff7b72",
		String:     "#a5d6ff",
		Comment:    "#8b949e",
		Number:     "#79c0ff",
		Function:   "#d2a8ff",
		Type:       "#ffa657",
		Operator:   "#ff7b72",
		LineNumber: "#6e7681",
		Header:     "#f0f6fc",
	}
	PaletteNord = Palette{
		Background: "#2e3440",
		Text:       "#d8dee9",
		Keyword:    "#81a1c1",
		String:     "#a3be8c",
		Comment:    "#616e88",
		Number:     "#b48ead",
		Function:   "#88c0d0",
		Type:       "#8fbcbb",
		Operator:   "#81a1c1",
		LineNumber: "#4c566a",
		Header:     "#eceff4",
	}
	PaletteDracula = Palette{
		Background: "#282a36",
		Text:       "#f8f8f2",
		Keyword:    "#ff79c6",
		String:     "#f1fa8c",
		Comment:    "#6272a4",
		Number:     "#bd93f9",
		Function:   "#50fa7b",
		Type:       "#8be9fd",
		Operator:   "#ff79c6",
		LineNumber: "#6272a4",
		Header:     "#f8f8f2",
	}
	PaletteGruvbox = Palette{
		Background: "#282828",
		Text:       "#ebdbb2",
		Keyword:    "#fb4934",
		String:     "#b8bb26",
		Comment:    "#928374",
		Number:     "#d3869b",
		Function:   "#fabd2f",
		Type:       "#8ec07c",
		Operator:   "#fe8019",
		LineNumber: "#7c6f64",
		Header:     "#fbf1c7",
	}
)
