package service

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"
)

const (
	referenceAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referenceSuffixLength  = 8
	defaultReferencePrefix = "APP"
)

// NewReferenceNumber returns {prefix}-{YYYYMMDDHHMMSS}-{8 random [A-Z0-9]}.
func NewReferenceNumber(prefix string, now time.Time) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = defaultReferencePrefix
	}

	max := big.NewInt(int64(len(referenceAlphabet)))
	suffix := make([]byte, referenceSuffixLength)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}

	return prefix + "-" + now.UTC().Format("20060102150405") + "-" + string(suffix), nil
}
