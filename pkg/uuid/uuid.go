package uuid

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// UUID — 16 байт
type UUID [16]byte

// New возвращает новый UUID v4
func New() (UUID, error) {
	var u UUID
	if _, err := io.ReadFull(rand.Reader, u[:]); err != nil {
		return UUID{}, err
	}
	// версия (4)
	u[6] = (u[6] & 0x0f) | 0x40
	// вариант (RFC 4122)
	u[8] = (u[8] & 0x3f) | 0x80
	return u, nil
}

// MustNew возвращает новый UUID v4, паникует если системный
// источник случайности недоступен.
func MustNew() UUID {
	u, err := New()
	if err != nil {
		panic(fmt.Sprintf("uuid: %v", err))
	}
	return u
}

// String форматирует UUID в XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX
func (u UUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

// Parse парсит строку в UUID
func Parse(s string) (UUID, error) {
	var u UUID
	s = strings.ToLower(s)

	parts := strings.Split(s, "-")
	if len(parts) != 5 {
		return UUID{}, errors.New("invalid uuid format")
	}
	joined := strings.Join(parts, "")
	if len(joined) != 32 {
		return UUID{}, errors.New("invalid uuid length")
	}

	b, err := hex.DecodeString(joined)
	if err != nil {
		return UUID{}, err
	}
	copy(u[:], b)
	return u, nil
}

// MarshalJSON сериализует UUID в строку
func (u UUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON парсит UUID из JSON строки
func (u *UUID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
