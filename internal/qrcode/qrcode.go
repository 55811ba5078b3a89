// Package qrcode issues and reads the check-in tokens printed on invitations.
package qrcode

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"time"

	goqr "github.com/skip2/go-qrcode"

	"github.com/lshigami/orientation-event/internal/model"
)

// ImageSize is the PNG edge length in pixels.
const ImageSize = 500

var tokenPattern = regexp.MustCompile(`^EVENT_USER_(\d+)_\d+_[a-f0-9]+$`)

// NewToken builds EVENT_USER_{id}_{unix}_{16 hex chars}.
func NewToken(userID uint, now time.Time) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("qrcode: read random bytes: %w", err)
	}
	return fmt.Sprintf("EVENT_USER_%d_%d_%s", userID, now.Unix(), hex.EncodeToString(buf)), nil
}

// ParseToken returns the user id encoded in a token. ok is false for any
// string that does not match the token format.
func ParseToken(token string) (userID uint, ok bool) {
	m := tokenPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// EnsureCodes fills in the QR token and user code of u when missing and
// reports whether u needs saving. u must already have an id.
func EnsureCodes(u *model.User, now time.Time) (bool, error) {
	changed := false
	if u.QRCode == nil || *u.QRCode == "" {
		token, err := NewToken(u.ID, now)
		if err != nil {
			return false, err
		}
		u.QRCode = &token
		changed = true
	}
	if u.UserCode == nil || *u.UserCode == "" {
		code := model.DefaultUserCode(u.ID)
		u.UserCode = &code
		changed = true
	}
	return changed, nil
}

// PNG renders token as a high error-correction QR image.
func PNG(token string) ([]byte, error) {
	img, err := goqr.Encode(token, goqr.High, ImageSize)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encode: %w", err)
	}
	return img, nil
}
