package eastmoney

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
)

const sessionFile = "stockmon-eastmoney-session"

// Session is the authenticated state the gateway hands out after a login: the
// validate key required on every authenticated call, plus the cookies needed
// to replay the transport session. It is written to disk as plain JSON so the
// file stays inspectable.
type Session struct {
	ValidateKey string         `json:"validateKey"`
	Cookies     []*http.Cookie `json:"cookies"`
}

// DefaultSessionPath returns the session cache location.
func DefaultSessionPath() string {
	return filepath.Join(os.TempDir(), sessionFile)
}

// SessionStore persists sessions across invocations so a scheduled run can
// skip the captcha dance entirely.
type SessionStore struct {
	Path string
}

// Load returns the previously saved session, or nil when there is none. A
// missing or corrupt file is never an error, it only costs a fresh login.
func (s SessionStore) Load() *Session {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		log.Printf("ignoring corrupt session file %q: %v", s.Path, err)
		return nil
	}
	if sess.ValidateKey == "" {
		return nil
	}
	return &sess
}

// Save overwrites the session file. It is called even when the restored
// session turned out valid, to refresh the server-side idle timeout.
func (s SessionStore) Save(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0600)
}
