package tree

import (
	"crypto/md5" //nolint:gosec // identity digest, not a security boundary
	"encoding/hex"
	"strconv"
)

// GenerateID derives the stable identifier of the comment visited at the given
// pre-order ordinal of an article: the hex MD5 digest of "{articleKey}-{ordinal}".
func GenerateID(articleKey string, ordinal int) string {
	sum := md5.Sum([]byte(articleKey + "-" + strconv.Itoa(ordinal))) //nolint:gosec

	return hex.EncodeToString(sum[:])
}
