package signal

import (
	"math/rand"
	"strings"
	"time"
)

var rng *rand.Rand

func init() {
	rng = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GenerateSessionCode creates a 10-digit numeric session code. The code is
// the only access control, so it avoids leading zeros to survive copy-paste
// through tools that trim them.
func GenerateSessionCode() string {
	var b strings.Builder
	b.WriteByte(byte('1' + rng.Intn(9)))
	for i := 0; i < 9; i++ {
		b.WriteByte(byte('0' + rng.Intn(10)))
	}
	return b.String()
}

// NormalizeSessionCode strips the whitespace and dashes people paste in.
func NormalizeSessionCode(code string) string {
	code = strings.TrimSpace(code)
	code = strings.ReplaceAll(code, "-", "")
	code = strings.ReplaceAll(code, " ", "")
	return code
}

// ValidateSessionCode checks that a code looks like something this system
// issued. Foreign ids still work end to end; this only gates UI input.
func ValidateSessionCode(code string) bool {
	if len(code) != 10 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
