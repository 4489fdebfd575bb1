package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPort      = "8081"
	defaultAPIKey    = "identity-service-secret-key"
	defaultLatencyMs = "100"
)

type CreateIdentityRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Verified bool   `json:"verified"`
}

type CreateIdentityResponse struct {
	IdentityID string `json:"identity_id,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
	Message    string `json:"message,omitempty"`
}

var (
	apiKey    = getEnv("API_KEY", defaultAPIKey)
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)

	mu         sync.Mutex
	identities = map[string]string{} // lower(email) -> identity_id
	flakyHits  = map[string]int{}    // lower(email) -> attempts seen
)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/identities", handleCreateIdentity)

	log.Printf("🪪  Mock Identity Service starting on port %s", port)
	log.Printf("📝 API Key: %s", apiKey)
	log.Printf("⏱️  Simulated latency: %dms", latencyMs)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "identity-service",
		"version": "1.0.0",
	})
}

// Magic email local-parts let e2e runs control the mock's behavior:
//
//	exists.*@     always email_exists
//	flaky3.*@     network_error on the first 3 attempts, then success
//	down.*@       always network_error
//	forbidden.*@  always unauthorized
func handleCreateIdentity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
		return
	}
	if got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "); got != apiKey {
		writeError(w, http.StatusForbidden, "unauthorized", "invalid API key")
		return
	}

	time.Sleep(time.Duration(latencyMs) * time.Millisecond)

	var req CreateIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "malformed request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	local, _, ok := strings.Cut(email, "@")
	if !ok {
		writeError(w, http.StatusBadRequest, "", "email is required")
		return
	}

	switch {
	case strings.HasPrefix(local, "exists"):
		writeError(w, http.StatusConflict, "email_exists", "an identity with this email already exists")
		return
	case strings.HasPrefix(local, "down"):
		writeError(w, http.StatusServiceUnavailable, "network_error", "identity store temporarily unavailable")
		return
	case strings.HasPrefix(local, "forbidden"):
		writeError(w, http.StatusForbidden, "unauthorized", "caller may not create identities")
		return
	case strings.HasPrefix(local, "flaky3"):
		mu.Lock()
		flakyHits[email]++
		hits := flakyHits[email]
		mu.Unlock()
		if hits <= 3 {
			writeError(w, http.StatusServiceUnavailable, "network_error", "identity store temporarily unavailable")
			return
		}
	}

	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters")
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if _, dup := identities[email]; dup {
		writeError(w, http.StatusConflict, "email_exists", "an identity with this email already exists")
		return
	}
	identityID := uuid.New().String()
	identities[email] = identityID

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateIdentityResponse{IdentityID: identityID})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(CreateIdentityResponse{ErrorCode: code, Message: message})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key, fallback string) int {
	v := getEnv(key, fallback)
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}
