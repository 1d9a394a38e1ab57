package eastmoney

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// fakeGateway mimics the trade gateway endpoints the trader talks to. The
// valid key is what GetStockList accepts; a login hands out loginKey.
type fakeGateway struct {
	mu          sync.Mutex
	captchaHits int
	authHits    int
	listHits    int

	lastNonce  string
	authStatus int    // returned by /Login/Authentication
	validKey   string // the only validatekey /Search/GetStockList accepts
	loginKey   string // the key served on the validate-key page
	noMarker   bool   // serve the validate-key page without the hidden input
	positions  string // Data payload of a successful stock list call
	assets     string // Data payload of the assets call
	orders     string // Data payload of the orders call
	deals      string // Data payload of the deals call
}

// envelope writes a successful {Status, Data} answer when the validate key
// matches, the session-expired rejection otherwise.
func (g *fakeGateway) envelope(w http.ResponseWriter, r *http.Request, data string) {
	if r.URL.Query().Get("validatekey") != g.validKey {
		fmt.Fprint(w, `{"Status":-1,"Message":"session expired","Data":null}`)
		return
	}
	fmt.Fprintf(w, `{"Status":0,"Message":"","Data":%s}`, data)
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch r.URL.Path {
	case "/Login/YZM":
		g.captchaHits++
		g.lastNonce = r.URL.Query().Get("randNum")
		w.Write([]byte("not really a png"))

	case "/Login/Authentication":
		g.authHits++
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if got := r.PostForm.Get("randNumber"); got != g.lastNonce {
			fmt.Fprintf(w, `{"Status":-1,"Message":"stale nonce %s"}`, got)
			return
		}
		if _, err := base64.StdEncoding.DecodeString(r.PostForm.Get("password")); err != nil {
			fmt.Fprint(w, `{"Status":-1,"Message":"password is not base64"}`)
			return
		}
		fmt.Fprintf(w, `{"Status":%d,"Message":"from test"}`, g.authStatus)

	case "/Trade/Buy":
		if g.noMarker {
			fmt.Fprint(w, `<html><body>maintenance</body></html>`)
			return
		}
		fmt.Fprintf(w, `<html><input id="em_validatekey" type="hidden" value="%s" /></html>`, g.loginKey)

	case "/Search/GetStockList":
		g.listHits++
		g.envelope(w, r, g.positions)

	case "/Com/GetAssets":
		g.envelope(w, r, g.assets)

	case "/Search/GetOrdersData":
		g.envelope(w, r, g.orders)

	case "/Search/GetDealData":
		g.envelope(w, r, g.deals)

	default:
		http.NotFound(w, r)
	}
}

func (g *fakeGateway) counts() (captcha, auth int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.captchaHits, g.authHits
}

// newTestTrader wires a trader to the fake gateway with zero backoffs and a
// throwaway session path.
func newTestTrader(t *testing.T, srv *httptest.Server, solver Solver) *Trader {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.SessionPath = filepath.Join(t.TempDir(), "session")
	cfg.LoginBackoff = 0
	cfg.SolverBackoff = 0
	trader, err := New(cfg, "123456", "hunter2", solver)
	if err != nil {
		t.Fatal(err)
	}
	return trader
}

const onePosition = `[{"Zqdm":"600000","Zqmc":"PF Bank","Zqsl":100,"Kysl":100,"Cbjg":5.5,"Zxjg":6.1}]`

func TestLoginRetriesMisreadCaptchas(t *testing.T) {
	gw := &fakeGateway{loginKey: "KEY123", validKey: "KEY123", positions: onePosition}
	srv := httptest.NewServer(gw)
	defer srv.Close()

	// Two misreads (wrong length), then a plausible answer.
	reads := []string{"abc", "abcde", "ab12"}
	var calls int
	solver := SolverFunc(func(image []byte) (string, error) {
		calls++
		return reads[calls-1], nil
	})

	trader := newTestTrader(t, srv, solver)
	if err := trader.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}

	captcha, auth := gw.counts()
	if captcha != 3 {
		t.Errorf("captcha fetched %d times, want 3 (one per read)", captcha)
	}
	if auth != 1 {
		t.Errorf("authentication called %d times, want 1: misreads must not consume login attempts", auth)
	}
	if trader.ValidateKey() != "KEY123" {
		t.Errorf("ValidateKey() = %q, want KEY123", trader.ValidateKey())
	}

	// The fresh session must be on disk for the next run.
	data, err := os.ReadFile(trader.cfg.SessionPath)
	if err != nil {
		t.Fatalf("session file not written: %v", err)
	}
	if !strings.Contains(string(data), "KEY123") {
		t.Errorf("session file %s does not carry the validate key", data)
	}
}

func TestAutoLoginReusesValidSession(t *testing.T) {
	gw := &fakeGateway{validKey: "CACHED", positions: onePosition}
	srv := httptest.NewServer(gw)
	defer srv.Close()

	solver := SolverFunc(func([]byte) (string, error) {
		t.Error("solver called even though the cached session is valid")
		return "", errors.New("unexpected")
	})
	trader := newTestTrader(t, srv, solver)

	store := SessionStore{Path: trader.cfg.SessionPath}
	if err := store.Save(&Session{ValidateKey: "CACHED"}); err != nil {
		t.Fatal(err)
	}

	if err := trader.AutoLogin(context.Background()); err != nil {
		t.Fatalf("AutoLogin: %v", err)
	}
	captcha, auth := gw.counts()
	if captcha != 0 || auth != 0 {
		t.Errorf("captcha=%d auth=%d, want 0/0 on the session reuse path", captcha, auth)
	}

	positions, err := trader.GetPosition(context.Background())
	if err != nil {
		t.Fatalf("GetPosition: %v", err)
	}
	if len(positions) != 1 || positions[0].StockCode != "600000" {
		t.Errorf("GetPosition() = %+v, want the one holding", positions)
	}
}

func TestAutoLoginFallsBackOnStaleSession(t *testing.T) {
	gw := &fakeGateway{validKey: "FRESH", loginKey: "FRESH", positions: onePosition}
	srv := httptest.NewServer(gw)
	defer srv.Close()

	solver := SolverFunc(func([]byte) (string, error) { return "ab12", nil })
	trader := newTestTrader(t, srv, solver)

	store := SessionStore{Path: trader.cfg.SessionPath}
	if err := store.Save(&Session{ValidateKey: "STALE"}); err != nil {
		t.Fatal(err)
	}

	if err := trader.AutoLogin(context.Background()); err != nil {
		t.Fatalf("AutoLogin: %v", err)
	}
	if trader.ValidateKey() != "FRESH" {
		t.Errorf("ValidateKey() = %q, want FRESH after relogin", trader.ValidateKey())
	}
	_, auth := gw.counts()
	if auth != 1 {
		t.Errorf("authentication called %d times, want 1", auth)
	}
}

func TestLoginGivesUpAfterBoundedAttempts(t *testing.T) {
	gw := &fakeGateway{authStatus: 8}
	srv := httptest.NewServer(gw)
	defer srv.Close()

	solver := SolverFunc(func([]byte) (string, error) { return "ab12", nil })
	trader := newTestTrader(t, srv, solver)
	trader.cfg.LoginAttempts = 3

	err := trader.Login(context.Background())
	if !errors.Is(err, ErrLoginExhausted) {
		t.Fatalf("Login: err = %v, want ErrLoginExhausted", err)
	}
	_, auth := gw.counts()
	if auth != 3 {
		t.Errorf("authentication called %d times, want 3", auth)
	}
}

func TestLoginFailsWithoutValidateKey(t *testing.T) {
	gw := &fakeGateway{noMarker: true}
	srv := httptest.NewServer(gw)
	defer srv.Close()

	solver := SolverFunc(func([]byte) (string, error) { return "ab12", nil })
	trader := newTestTrader(t, srv, solver)

	if err := trader.Login(context.Background()); !errors.Is(err, ErrNoValidateKey) {
		t.Fatalf("Login: err = %v, want ErrNoValidateKey", err)
	}
}

func TestGetPositionSurfacesTradeError(t *testing.T) {
	gw := &fakeGateway{validKey: "OTHER"}
	srv := httptest.NewServer(gw)
	defer srv.Close()

	trader := newTestTrader(t, srv, nil)
	trader.validateKey = "EXPIRED"

	_, err := trader.GetPosition(context.Background())
	var tradeErr *TradeError
	if !errors.As(err, &tradeErr) {
		t.Fatalf("GetPosition: err = %v, want a *TradeError", err)
	}
	if tradeErr.Status != -1 {
		t.Errorf("TradeError.Status = %d, want -1", tradeErr.Status)
	}
}

func TestGetPositionDropsEmptyRows(t *testing.T) {
	gw := &fakeGateway{
		validKey: "K",
		positions: `[
			{"Zqdm":"600000","Zqmc":"held","Zqsl":100,"Kysl":100,"Cbjg":5.5,"Zxjg":6.1},
			{"Zqdm":"000001","Zqmc":"sold today","Zqsl":0,"Kysl":0,"Cbjg":0,"Zxjg":12.0}
		]`,
	}
	srv := httptest.NewServer(gw)
	defer srv.Close()

	trader := newTestTrader(t, srv, nil)
	trader.validateKey = "K"

	positions, err := trader.GetPosition(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(positions) != 1 || positions[0].StockCode != "600000" {
		t.Errorf("GetPosition() = %+v, want only the held row", positions)
	}
}
