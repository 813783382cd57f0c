// Package captcha issues simple math challenges for the certificate
// lookup form. The expected answer travels back to the server inside
// an HMAC-signed, expiring token, so no server-side session state is
// needed.
package captcha

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Challenge is a question for the user plus the token the answer must
// be verified against.
type Challenge struct {
	Question string `json:"question"`
	Token    string `json:"token"`
}

// Service generates and verifies challenges.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a service signing tokens with secret. Challenges
// expire after 10 minutes.
func NewService(secret []byte) *Service {
	return &Service{
		secret: secret,
		ttl:    10 * time.Minute,
		now:    time.Now,
	}
}

// New generates a math challenge.
func (s *Service) New() Challenge {
	var a, b, answer int
	var symbol string

	switch rand.Intn(3) {
	case 0:
		a, b = rand.Intn(20)+1, rand.Intn(20)+1
		symbol, answer = "+", a+b
	case 1:
		a = rand.Intn(21) + 10
		b = rand.Intn(a) + 1 // keep the result positive
		symbol, answer = "-", a-b
	default:
		a, b = rand.Intn(9)+2, rand.Intn(9)+2
		symbol, answer = "×", a*b
	}

	question := fmt.Sprintf("%d %s %d = ?", a, symbol, b)
	return Challenge{Question: question, Token: s.sign(answer, s.now().Add(s.ttl))}
}

// Verify checks a user answer against a challenge token. Expired or
// tampered tokens fail.
func (s *Service) Verify(answer, token string) bool {
	expStr, mac, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil || s.now().Unix() > exp {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return false
	}
	expected := s.sign(n, time.Unix(exp, 0))
	_, expectedMAC, _ := strings.Cut(expected, ".")
	return hmac.Equal([]byte(mac), []byte(expectedMAC))
}

func (s *Service) sign(answer int, expiry time.Time) string {
	exp := strconv.FormatInt(expiry.Unix(), 10)
	h := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(h, "%d|%s", answer, exp)
	return exp + "." + hex.EncodeToString(h.Sum(nil))
}
