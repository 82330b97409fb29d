package pkg

import (
	cryptoRand "crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	// CommunityIDRandLen 随机部分长度，36^7 约 7.8e10
	CommunityIDRandLen = 7
)

func RandBase36(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	limit := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(base36Alphabet[x.Int64()])
	}
	return b.String(), nil
}

// NewCommunityID 毫秒时间戳 + 随机后缀，如 1718000000000-k3j9x0a
func NewCommunityID(now time.Time) (string, error) {
	suffix, err := RandBase36(CommunityIDRandLen)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix, nil
}
