// Package eastmoney is a read-side client of the EastMoney trade gateway.
//
// The gateway is a session-based web portal: logging in requires solving a
// rotating image captcha and submitting the RSA-encrypted account password.
// Once authenticated, a validate key scraped from an authenticated page must
// accompany every API call. The Trader drives that whole lifecycle, reusing
// the session persisted by a previous run whenever it is still accepted.
package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/stockmon"
)

// captchaLength is the number of characters of a gateway captcha. OCR output
// of any other length is a misread, not a candidate worth submitting.
const captchaLength = 4

// Config groups the trader knobs. Start from DefaultConfig, the zero value is
// not usable.
type Config struct {
	// BaseURL of the trade gateway.
	BaseURL string
	// SessionPath is where the session is persisted between runs.
	SessionPath string
	// LoginAttempts bounds the retries when the gateway rejects the submitted
	// credentials or captcha.
	LoginAttempts int
	// SolverAttempts bounds the retries when OCR output is not a plausible
	// captcha. Misreads do not consume a login attempt.
	SolverAttempts int
	// LoginBackoff is the pause after a rejected login.
	LoginBackoff time.Duration
	// SolverBackoff is the pause before fetching a new challenge after a
	// misread.
	SolverBackoff time.Duration
	// Duration is the session lifetime requested at login, in seconds.
	Duration int
	// Timeout applies to every HTTP call.
	Timeout time.Duration
}

// DefaultConfig returns the gateway defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:        defaultBaseURL,
		SessionPath:    DefaultSessionPath(),
		LoginAttempts:  5,
		SolverAttempts: 20,
		LoginBackoff:   3 * time.Second,
		SolverBackoff:  time.Second,
		Duration:       1800,
		Timeout:        30 * time.Second,
	}
}

// Trader is an authenticated client of the trade gateway. It exclusively owns
// its session for the lifetime of one process invocation and persists it for
// the next one. A Trader is not safe for concurrent use.
type Trader struct {
	cfg    Config
	user   string
	secret string
	solver Solver
	store  SessionStore

	base        *url.URL
	client      *http.Client
	validateKey string
}

// New returns a trader for the given account. The secret is the plain
// password; it is encrypted freshly on every login attempt.
func New(cfg Config, user, secret string, solver Solver) (*Trader, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway base URL %q: %w", cfg.BaseURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Trader{
		cfg:    cfg,
		user:   user,
		secret: secret,
		solver: solver,
		store:  SessionStore{Path: cfg.SessionPath},
		base:   base,
		client: &http.Client{Jar: jar, Timeout: cfg.Timeout},
	}, nil
}

// ValidateKey returns the current session validate key, empty before a
// successful AutoLogin.
func (t *Trader) ValidateKey() string { return t.validateKey }

// AutoLogin makes the trader ready to issue authenticated calls. It first
// probes the session saved by a previous run with a plain holdings fetch;
// only when that probe fails does it go through the full captcha login. On
// the probe path no captcha or login endpoint is touched at all.
func (t *Trader) AutoLogin(ctx context.Context) error {
	if sess := t.store.Load(); sess != nil {
		t.restore(sess)
		if _, err := t.GetPosition(ctx); err == nil {
			log.Println("restored session still valid, skipping login")
			if err := t.store.Save(t.session()); err != nil {
				log.Printf("cannot refresh session file (ignored): %v", err)
			}
			return nil
		} else {
			log.Printf("restored session rejected, logging in again: %v", err)
			t.validateKey = ""
		}
	}
	return t.Login(ctx)
}

// Login performs a full captcha login, extracts the validate key and persists
// the fresh session, ignoring any previously saved one.
func (t *Trader) Login(ctx context.Context) error {
	if err := t.login(ctx); err != nil {
		return err
	}
	if err := t.fetchValidateKey(ctx); err != nil {
		return err
	}
	if err := t.store.Save(t.session()); err != nil {
		log.Printf("cannot save session file (ignored): %v", err)
	}
	return nil
}

// restore installs a previously persisted session into the trader.
func (t *Trader) restore(sess *Session) {
	t.validateKey = sess.ValidateKey
	t.client.Jar.SetCookies(t.base, sess.Cookies)
}

// session captures the current trader state for persistence.
func (t *Trader) session() *Session {
	return &Session{
		ValidateKey: t.validateKey,
		Cookies:     t.client.Jar.Cookies(t.base),
	}
}

// login runs the bounded login loop: solve a captcha, submit the encrypted
// credentials, inspect the status. Rejections consume one attempt each, then
// the loop gives up with ErrLoginExhausted.
func (t *Trader) login(ctx context.Context) error {
	for attempt := 1; attempt <= t.cfg.LoginAttempts; attempt++ {
		code, nonce, err := t.solveCaptcha(ctx)
		if err != nil {
			return err
		}

		// Padding is randomized, so the ciphertext differs on every attempt.
		password, err := EncryptPassword(t.secret)
		if err != nil {
			return err
		}

		form := url.Values{
			"duration":     {strconv.Itoa(t.cfg.Duration)},
			"password":     {password},
			"identifyCode": {code},
			"type":         {"Z"},
			"userId":       {t.user},
			"randNumber":   {nonce},
		}
		var res struct {
			Status  int    `json:"Status"`
			Message string `json:"Message"`
		}
		if err := t.postForm(ctx, pathAuthentication, form, &res); err != nil {
			return err
		}
		if res.Status == 0 {
			return nil
		}
		log.Printf("login attempt %d/%d rejected (status %d): %s", attempt, t.cfg.LoginAttempts, res.Status, res.Message)
		sleep(ctx, t.cfg.LoginBackoff)
	}
	return fmt.Errorf("%w (%d attempts)", ErrLoginExhausted, t.cfg.LoginAttempts)
}

// solveCaptcha fetches challenges until the solver produces text of the
// expected length, each time under a fresh nonce so the gateway does not
// serve a stale image. It returns the accepted text together with the nonce
// of the challenge it came from.
func (t *Trader) solveCaptcha(ctx context.Context) (code, nonce string, err error) {
	for attempt := 1; attempt <= t.cfg.SolverAttempts; attempt++ {
		nonce = captchaNonce()
		image, err := t.get(ctx, pathCaptcha+nonce)
		if err != nil {
			return "", "", fmt.Errorf("cannot fetch captcha: %w", err)
		}
		code, err = t.solver.Solve(image)
		if err != nil {
			return "", "", fmt.Errorf("captcha solver failed: %w", err)
		}
		if len(code) == captchaLength {
			return code, nonce, nil
		}
		log.Printf("captcha read as %q, want %d characters, fetching a new challenge", code, captchaLength)
		sleep(ctx, t.cfg.SolverBackoff)
	}
	return "", "", fmt.Errorf("no plausible captcha text after %d reads", t.cfg.SolverAttempts)
}

// captchaNonce returns a fresh random number in the format the gateway
// expects on the captcha endpoint.
func captchaNonce() string {
	return fmt.Sprintf("0.903%d", 100000+rand.IntN(800000))
}

// fetchValidateKey scrapes the validate key from a known authenticated page.
// A missing marker means the login truly did not succeed.
func (t *Trader) fetchValidateKey(ctx context.Context) error {
	const marker = `input id="em_validatekey" type="hidden" value="`
	const closing = `" />`

	page, err := t.get(ctx, pathValidateKey)
	if err != nil {
		return err
	}
	content := string(page)
	begin := strings.Index(content, marker)
	if begin < 0 {
		return ErrNoValidateKey
	}
	begin += len(marker)
	end := strings.Index(content[begin:], closing)
	if end < 0 {
		return ErrNoValidateKey
	}
	t.validateKey = content[begin : begin+end]
	return nil
}

// request issues an authenticated call and decodes the {Status, Data}
// envelope. A non-zero status is a TradeError; that is how an expired session
// surfaces, there is no dedicated liveness check. When out is non-nil, Data
// is decoded into it.
func (t *Trader) request(ctx context.Context, pathTemplate string, params url.Values, out any) error {
	path := fmt.Sprintf(pathTemplate, url.QueryEscape(t.validateKey))
	if len(params) > 0 {
		path += "&" + params.Encode()
	}
	body, err := t.get(ctx, path)
	if err != nil {
		return err
	}

	var envelope struct {
		Status  int             `json:"Status"`
		Message string          `json:"Message"`
		Data    json.RawMessage `json:"Data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("cannot decode gateway envelope: %w", err)
	}
	if envelope.Status != 0 {
		return &TradeError{Status: envelope.Status, Message: envelope.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("unexpected gateway payload shape: %w", err)
	}
	return nil
}

// GetPosition returns the current holdings. Rows with nothing actually held
// are dropped at the source.
func (t *Trader) GetPosition(ctx context.Context) ([]stockmon.Position, error) {
	var all []stockmon.Position
	if err := t.request(ctx, pathStockList, nil, &all); err != nil {
		return nil, err
	}
	held := make([]stockmon.Position, 0, len(all))
	for _, p := range all {
		if p.CurrentAmount > 0 {
			held = append(held, p)
		}
	}
	return held, nil
}

func (t *Trader) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return t.do(req)
}

func (t *Trader) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	body, err := t.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("cannot decode gateway response: %w", err)
	}
	return nil
}

func (t *Trader) do(req *http.Request) ([]byte, error) {
	for key, value := range defaultHeaders {
		req.Header.Set(key, value)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot %s %s: %s", req.Method, req.URL.Path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// sleep waits for the backoff duration or for the context to be done,
// whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
