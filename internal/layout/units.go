package layout

import "math"

// DPI is the print resolution used for every mm to pixel conversion.
const DPI = 300

// MMPerInch is the number of millimeters in one inch.
const MMPerInch = 25.4

// MMToPixels converts millimeters to pixels at print resolution.
// 30mm = 30 / 25.4 * 300 = 354.33 -> 354px.
func MMToPixels(mm float64) int {
	return int(math.Round(mm / MMPerInch * DPI))
}

// PixelsToMM converts pixels at print resolution back to millimeters.
func PixelsToMM(px int) float64 {
	return float64(px) * MMPerInch / DPI
}
