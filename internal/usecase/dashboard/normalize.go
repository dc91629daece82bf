package dashboard

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

const fingerprintLength = 12

var quoteReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
)

// Normalize приводит описание к каноничному виду для сравнения.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	collapsed := strings.Join(strings.Fields(lowered), " ")
	return quoteReplacer.Replace(collapsed)
}

// Fingerprint возвращает короткий идентификатор нормализованного описания.
// Совпадения усечённого хэша не отслеживаются.
func Fingerprint(text string) string {
	sum := md5.Sum([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
