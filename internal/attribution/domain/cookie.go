package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CookieName is the attribution cookie set on referral clicks.
const CookieName = "cl_attr"

var ErrInvalidCookie = errors.New("INVALID_ATTRIBUTION_COOKIE")

// CookieCodec signs and verifies the attribution cookie value
// "<linkID>.<firstSeenAtUnix>.<hex hmac-sha256>".
type CookieCodec struct {
	secret []byte
}

func NewCookieCodec(secret string) *CookieCodec {
	return &CookieCodec{secret: []byte(secret)}
}

func (c *CookieCodec) Encode(linkID snowflake.ID, firstSeenAt time.Time) string {
	payload := fmt.Sprintf("%d.%d", linkID, firstSeenAt.Unix())
	return payload + "." + c.sign(payload)
}

// Decode verifies the signature and the attribution window against now.
func (c *CookieCodec) Decode(value string, now time.Time) (snowflake.ID, time.Time, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		return 0, time.Time{}, ErrInvalidCookie
	}

	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(c.sign(payload)), []byte(parts[2])) {
		return 0, time.Time{}, ErrInvalidCookie
	}

	rawID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, time.Time{}, ErrInvalidCookie
	}
	unix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, ErrInvalidCookie
	}

	firstSeenAt := time.Unix(unix, 0).UTC()
	if now.Sub(firstSeenAt) > AttributionWindow {
		return 0, time.Time{}, ErrInvalidCookie
	}

	return snowflake.ID(rawID), firstSeenAt, nil
}

func (c *CookieCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Fingerprint derives the fallback attribution subject from the requester's
// IP and user-agent observed at click time.
func Fingerprint(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent))
	return "fp:" + hex.EncodeToString(sum[:])
}
