package runtime

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/tapevm/pkg/domain"
)

// DecodeInput turns a raw input value into a cell value.
// A base-10 integer in 0..255 wins over the single-character reading, so "7" is 7, not 55.
// One leading '+' is allowed on integers; "+" alone is the character 43.
func DecodeInput(raw string) (byte, error) {
	if n, err := strconv.ParseUint(strings.TrimPrefix(raw, "+"), 10, 8); err == nil {
		return byte(n), nil
	}
	if utf8.RuneCountInString(raw) == 1 {
		r, _ := utf8.DecodeRuneInString(raw)
		if r != utf8.RuneError && r <= 0xFF {
			return byte(r), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrInputDecode, raw)
}
