package calc

// floorDiv divides rounding toward negative infinity.
// Go's / truncates toward zero, which would round deficits the wrong way.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FactoryItemSpeed clamps the expected rate of an item node to what is
// actually available across its edge.
//
// speed is min(expected, available) and efficiency is speed/available,
// so an item node asking for exactly the supply runs at efficiency 1, one
// asking for less runs below 1, and one asking for more is capped at the
// supply with efficiency 1. No supply yields (0, 0).
func FactoryItemSpeed(expected, available int64) (speed int64, efficiency float64) {
	if available <= 0 {
		return 0, 0
	}
	speed = min(expected, available)
	if speed < 0 {
		speed = 0
	}
	return speed, float64(speed) / float64(available)
}
