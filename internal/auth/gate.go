// ABOUTME: Password gates that unlock editing for one browser session
// ABOUTME: Inline editor gate (id + password) and the separate admin console gate

package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Session flag names.
const (
	FlagEditor  = "lux_auth"
	FlagConsole = "console_auth"
)

// Default credentials. The gates only hide edit affordances from casual
// visitors; they are not an access control boundary.
const (
	DefaultEditorID        = "holylux"
	DefaultEditorPassword  = "7897*"
	DefaultConsolePassword = "7897*"
)

// User-visible rejection messages.
const (
	EditorRejectedMessage  = "인증 실패"
	ConsoleRejectedMessage = "접근이 거부되었습니다."
)

// Credentials is one id/password pair. When PasswordHash is set it is a
// bcrypt hash and Password is ignored. An empty ID matches any id.
type Credentials struct {
	ID           string
	Password     string
	PasswordHash string
}

// Match reports whether id and password satisfy the credentials.
func (c Credentials) Match(id, password string) bool {
	idOK := c.ID == "" || subtle.ConstantTimeCompare([]byte(c.ID), []byte(id)) == 1

	var pwOK bool
	if c.PasswordHash != "" {
		pwOK = bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	} else {
		pwOK = subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) == 1
	}
	return idOK && pwOK
}

// HashPassword returns a bcrypt hash suitable for Credentials.PasswordHash.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", fmt.Errorf("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Gate unlocks one named flag for a session after a successful challenge.
// Locked -> Unlocked is the only transition; a failed challenge never locks
// an unlocked session again.
type Gate struct {
	flags  *FlagStore
	flag   string
	creds  Credentials
	logger *slog.Logger
}

// NewEditorGate creates the inline editing gate.
func NewEditorGate(flags *FlagStore, creds Credentials) *Gate {
	return newGate(flags, FlagEditor, creds)
}

func newGate(flags *FlagStore, flag string, creds Credentials) *Gate {
	return &Gate{
		flags:  flags,
		flag:   flag,
		creds:  creds,
		logger: slog.Default().With("component", "gate", "flag", flag),
	}
}

// IsUnlocked reports whether the session has passed this gate.
func (g *Gate) IsUnlocked(sessionID string) bool {
	return g.flags.IsSet(sessionID, g.flag)
}

// Challenge checks id and password. On success the session is unlocked and
// true is returned. On failure the session's state is left unchanged.
func (g *Gate) Challenge(sessionID, id, password string) bool {
	if sessionID == "" {
		return false
	}
	if !g.creds.Match(id, password) {
		g.logger.Info("challenge failed", "session_id", sessionID)
		return false
	}

	g.flags.Set(sessionID, g.flag)
	g.logger.Info("session unlocked", "session_id", sessionID)
	return true
}

// ConsoleGate guards the admin console. It is password-only and uses its own
// flag, so passing the inline editor gate does not open the console.
type ConsoleGate struct {
	gate *Gate
}

// NewConsoleGate creates the console gate. Any ID in creds is ignored.
func NewConsoleGate(flags *FlagStore, creds Credentials) *ConsoleGate {
	creds.ID = ""
	return &ConsoleGate{gate: newGate(flags, FlagConsole, creds)}
}

// IsUnlocked reports whether the session has opened the console.
func (c *ConsoleGate) IsUnlocked(sessionID string) bool {
	return c.gate.IsUnlocked(sessionID)
}

// Challenge checks the console password.
func (c *ConsoleGate) Challenge(sessionID, password string) bool {
	return c.gate.Challenge(sessionID, "", password)
}
