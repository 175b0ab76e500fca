package dental

// ValidFDI reports whether n is a two-digit FDI tooth number: quadrant 1-4,
// position 1-8 (11..18, 21..28, 31..38, 41..48).
func ValidFDI(n int) bool {
	quadrant := n / 10
	position := n % 10
	return quadrant >= 1 && quadrant <= 4 && position >= 1 && position <= 8
}
