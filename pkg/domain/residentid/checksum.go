package residentid

import "fmt"

// weights are the MOD 11-2 positional coefficients (2^(17-i) mod 11).
var weights = [checkIndex]int{7, 9, 10, 5, 8, 4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}

// checkAlphabet maps the weighted sum remainder to the check character.
const checkAlphabet = "10X98765432"

// CheckDigit computes the check character for a 17-digit prefix.
func CheckDigit(prefix string) (byte, error) {
	if len(prefix) != checkIndex {
		return 0, fmt.Errorf("check digit prefix must be %d digits, got %d", checkIndex, len(prefix))
	}
	var buf [checkIndex]byte
	for i := 0; i < checkIndex; i++ {
		if !isDigit(prefix[i]) {
			return 0, fmt.Errorf("check digit prefix has non-digit %q at position %d", prefix[i], i)
		}
		buf[i] = prefix[i]
	}
	return checksum(buf[:]), nil
}

// checksum expects at least 17 ASCII digits and ignores anything after them.
func checksum(b []byte) byte {
	sum := 0
	for i, w := range weights {
		sum += int(b[i]-'0') * w
	}
	return checkAlphabet[sum%11]
}
