package render

import "github.com/gdamore/tcell/v2"

var (
	RgbBackground = RGB{26, 27, 38} // Tokyo Night background
	RgbText       = RGB{192, 202, 245}
	RgbStatusBar  = RGB{255, 255, 255}
	RgbStatusBg   = RGB{41, 46, 66}
	RgbComboHot   = RGB{255, 165, 0}
	RgbPowerOff   = RGB{120, 120, 120}
)

// sparkPalette runs from a fresh spark to a dying ember
var sparkPalette = [...]RGB{
	{255, 255, 200},
	{255, 220, 80},
	{255, 140, 0},
	{220, 60, 20},
}

// sparkGlyphs follow the same age progression as sparkPalette
var sparkGlyphs = [...]rune{'*', '+', '\'', '.'}

var defaultStyle = tcell.StyleDefault.Background(RgbBackground.Color()).Foreground(RgbText.Color())
