package gmail

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarv3 "google.golang.org/api/calendar/v3"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Services bundles the API clients that share one OAuth token.
type Services struct {
	Gmail    *gmailv1.Service
	Calendar *calendarv3.Service
}

// NewServices initializes OAuth-backed Gmail and Calendar clients using:
// - Client credentials at <configDir>/client_secret.json
// - Token cache at <configDir>/token.json
// Scopes: gmail.modify (read + mark read) and calendar.events.
// Interactive auth, when needed, happens on stderr/stdin.
func NewServices(ctx context.Context, configDir string, log zerolog.Logger) (*Services, error) {
	return NewServicesInteractive(ctx, configDir, nil, nil, log)
}

// NewServicesInteractive is NewServices with the auth URL sent on uiEvents and
// the pasted code or redirect URL read from userResponses.
func NewServicesInteractive(ctx context.Context, configDir string, uiEvents chan<- interface{}, userResponses <-chan string, log zerolog.Logger) (*Services, error) {
	log = log.With().Str("component", "gmail_auth").Logger()

	credPath := filepath.Join(configDir, "client_secret.json")
	b, err := os.ReadFile(credPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials at %s: %w", credPath, err)
	}

	cfg, err := google.ConfigFromJSON(b,
		gmailv1.GmailModifyScope,
		calendarv3.CalendarEventsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parse oauth config: %w", err)
	}

	tokFile := filepath.Join(configDir, "token.json")
	if tok, err := readToken(tokFile); err == nil {
		svcs, err := newServices(ctx, cfg, tok)
		if err == nil {
			// A cheap call proves the cached token still works.
			_, err = svcs.Gmail.Users.GetProfile("me").Context(ctx).Do()
		}
		if err == nil {
			log.Debug().Msg("using cached token")
			return svcs, nil
		}
		log.Info().Err(err).Msg("cached token rejected, re-authenticating")
		os.Remove(tokFile)
	}

	var tok *oauth2.Token
	if uiEvents != nil && userResponses != nil {
		tok, err = tokenFromWebInteractive(ctx, cfg, uiEvents, userResponses)
	} else {
		tok, err = tokenFromWebCLI(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}
	if err := saveToken(tokFile, tok); err != nil {
		return nil, err
	}
	log.Info().Msg("authenticated")
	return newServices(ctx, cfg, tok)
}

func newServices(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (*Services, error) {
	client := cfg.Client(ctx, tok)
	gm, err := gmailv1.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	cal, err := calendarv3.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Services{Gmail: gm, Calendar: cal}, nil
}

func readToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return err
	}
	f.Close()
	return os.Rename(tmp, path)
}

// loopback captures the OAuth redirect on a random localhost port.
type loopback struct {
	srv      *http.Server
	redirect string
	state    string
	codes    chan string
}

func startLoopback() (*loopback, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen on loopback: %w", err)
	}
	lb := &loopback{
		redirect: fmt.Sprintf("http://127.0.0.1:%d/", ln.Addr().(*net.TCPAddr).Port),
		state:    uuid.NewString(),
		codes:    make(chan string, 1),
	}
	mux := http.NewServeMux()
	lb.srv = &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           mux,
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != lb.state {
			http.Error(w, "State mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "Missing 'code' parameter", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authentication complete. You can close this window.")
		select {
		case lb.codes <- code:
		default:
		}
		go lb.close()
	})
	go func() { _ = lb.srv.Serve(ln) }()
	return lb, nil
}

func (lb *loopback) close() { _ = lb.srv.Shutdown(context.Background()) }

// authURL points the config at the loopback redirect and returns the consent URL.
func (lb *loopback) authURL(cfg *oauth2.Config) string {
	cfg.RedirectURL = lb.redirect
	return cfg.AuthCodeURL(lb.state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// codeFromInput accepts either a bare auth code or the full redirect URL.
func codeFromInput(input, state string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("empty authorization code")
	}
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return input, nil
	}
	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("parse redirect URL: %w", err)
	}
	q := u.Query()
	if s := q.Get("state"); s != "" && s != state {
		return "", errors.New("state in pasted URL does not match this login")
	}
	c := q.Get("code")
	if c == "" {
		return "", errors.New("no 'code' parameter found in pasted URL")
	}
	return c, nil
}

func exchange(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	tok, err := cfg.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	return tok, nil
}

// tokenFromWebInteractive sends the consent URL to the UI and waits for the
// loopback redirect, a pasted code, or cancellation.
func tokenFromWebInteractive(ctx context.Context, cfg *oauth2.Config, uiEvents chan<- interface{}, userResponses <-chan string) (*oauth2.Token, error) {
	lb, err := startLoopback()
	if err != nil {
		return nil, err
	}
	defer lb.close()

	uiEvents <- lb.authURL(cfg)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case code := <-lb.codes:
		return exchange(ctx, cfg, code)
	case input := <-userResponses:
		code, err := codeFromInput(input, lb.state)
		if err != nil {
			return nil, err
		}
		return exchange(ctx, cfg, code)
	}
}

// tokenFromWebCLI waits on the loopback for two minutes, then falls back to
// reading a pasted code or redirect URL from stdin.
func tokenFromWebCLI(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	lb, err := startLoopback()
	if err != nil {
		return nil, err
	}
	defer lb.close()

	authURL := lb.authURL(cfg)
	fmt.Fprintln(os.Stderr, "Open this URL in your browser to authorize mailbrief:")
	fmt.Fprintln(os.Stderr, authURL)
	fmt.Fprintf(os.Stderr, "Waiting for redirect on %s …\n", lb.redirect)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case code := <-lb.codes:
		fmt.Fprintln(os.Stderr, "Exchanging code for token…")
		return exchange(ctx, cfg, code)
	case <-time.After(120 * time.Second):
		fmt.Fprintln(os.Stderr, "Timeout waiting for redirect; falling back to manual paste.")
	}

	fmt.Fprintln(os.Stderr, "Paste the AUTH CODE itself or the FULL redirect URL here, then press Enter.")
	fmt.Fprint(os.Stderr, "> ")

	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read auth code: %w", err)
		}
		return nil, errors.New("empty authorization code")
	}
	code, err := codeFromInput(sc.Text(), lb.state)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(os.Stderr, "Exchanging code for token…")
	return exchange(ctx, cfg, code)
}
