// opsctl is a small operator CLI for the dramahub ops API: obtain an
// access token, fetch catalog stats, or stream the live ingest feed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func main() {
	global := flag.NewFlagSet("opsctl", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "ops API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 15 * time.Second}

	switch args[0] {
	case "login":
		handleLogin(ctx, client, *baseURL, *tokenPath, args[1:])
	case "stats":
		handleStats(ctx, client, *baseURL, *tokenPath)
	case "watch":
		handleWatch(*baseURL, *tokenPath, args[1:])
	case "logout":
		if err := clearToken(*tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("✅ logged out")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`usage: opsctl [-api URL] [-token PATH] <command>

commands:
  login -key KEY   exchange the ops key for an access token
  stats            show catalog size and episode count
  watch [-pretty]  stream ingest events over websocket
  logout           remove the stored token`)
}

func handleLogin(ctx context.Context, client *http.Client, baseURL, tokenPath string, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	key := fs.String("key", "", "ops access key")
	_ = fs.Parse(args)

	if *key == "" {
		log.Fatal("ops key is required")
	}

	payload := map[string]string{"key": *key}
	var resp tokenResponse
	if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/token", "", payload, &resp); err != nil {
		log.Fatalf("login failed: %v", err)
	}
	if err := saveToken(tokenPath, resp.Token); err != nil {
		log.Fatalf("save token: %v", err)
	}
	fmt.Println("✅ logged in")
}

func handleStats(ctx context.Context, client *http.Client, baseURL, tokenPath string) {
	token := mustToken(tokenPath)

	var resp map[string]any
	if err := doJSON(ctx, client, http.MethodGet, baseURL+"/ops/stats", token, nil, &resp); err != nil {
		log.Fatalf("stats failed: %v", err)
	}
	printJSON(resp)
}

func handleWatch(baseURL, tokenPath string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	pretty := fs.Bool("pretty", true, "pretty print JSON events")
	_ = fs.Parse(args)

	token := mustToken(tokenPath)
	wsURL, err := feedURL(baseURL)
	if err != nil {
		log.Fatalf("invalid base url: %v", err)
	}

	header := http.Header{"Authorization": {"Bearer " + token}}
	for {
		if err := watch(wsURL, header, *pretty); err != nil {
			log.Printf("[watch] disconnected: %v", err)
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

func watch(wsURL string, header http.Header, pretty bool) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	log.Printf("[watch] connected to %s", wsURL)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		if !pretty {
			fmt.Println(strings.TrimSpace(string(data)))
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			// not JSON? print raw
			fmt.Println(strings.TrimSpace(string(data)))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
}

func feedURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ops/ws"
	return u.String(), nil
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.dramahub-token.json"
	}
	return filepath.Join(home, ".dramahub", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func mustToken(path string) string {
	token, err := readToken(path)
	if err != nil {
		log.Fatalf("token not found, please login: %v", err)
	}
	if token == "" {
		log.Fatal("token empty, please login")
	}
	return token
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}
