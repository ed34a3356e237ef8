package value

// ValidIMO checks an IMO ship number: the first six digits weighted 7..2,
// summed, modulo 10 equal the seventh.
func ValidIMO(imo string) bool {
	if len(imo) != 7 {
		return false
	}
	sum := 0
	for i := 0; i < 6; i++ {
		d := int(imo[i]) - '0'
		if d < 0 || d > 9 {
			return false
		}
		sum += d * (7 - i)
	}
	check := int(imo[6]) - '0'
	return check >= 0 && check <= 9 && sum%10 == check
}
