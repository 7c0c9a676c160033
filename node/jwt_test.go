// Copyright 2026 The gantry Authors
// This file is part of the gantry library.
//
// The gantry library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gantry library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gantry library. If not, see <http://www.gnu.org/licenses/>.

package node

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestObtainJWTSecretGenerates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "jwt.hex")

	secret, err := ObtainJWTSecret(path)
	if err != nil {
		t.Fatalf("failed to generate secret: %v", err)
	}
	if secret == ([32]byte{}) {
		t.Fatalf("generated secret is all zeroes")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("secret file not written: %v", err)
	}
	if len(data) != 2+64 {
		t.Fatalf("secret file holds %d bytes, want 0x plus 64 hex chars", len(data))
	}
	// A second call loads the stored secret instead of minting a new one.
	again, err := ObtainJWTSecret(path)
	if err != nil {
		t.Fatalf("failed to reload secret: %v", err)
	}
	if again != secret {
		t.Fatalf("reloaded secret differs from the generated one")
	}
}

func TestObtainJWTSecretLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt.hex")
	if err := os.WriteFile(path, []byte("0x0101010101010101010101010101010101010101010101010101010101010101\n"), 0600); err != nil {
		t.Fatal(err)
	}
	secret, err := ObtainJWTSecret(path)
	if err != nil {
		t.Fatalf("failed to load secret: %v", err)
	}
	for _, b := range secret {
		if b != 1 {
			t.Fatalf("loaded secret = %x, want all 0x01", secret)
		}
	}
}

func TestObtainJWTSecretRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt.hex")
	if err := os.WriteFile(path, []byte("0xdeadbeef"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ObtainJWTSecret(path); err == nil {
		t.Fatalf("truncated secret accepted")
	}
}

func TestJWTHandler(t *testing.T) {
	var secret [32]byte
	for i := range secret {
		secret[i] = byte(i)
	}
	wrong := secret
	wrong[0] ^= 0xff

	sign := func(iat time.Time, key [32]byte) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iat": &jwt.NumericDate{Time: iat},
		})
		s, err := token.SignedString(key[:])
		if err != nil {
			t.Fatalf("failed to sign test token: %v", err)
		}
		return "Bearer " + s
	}
	noneAlg := func() string {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"iat": &jwt.NumericDate{Time: time.Now()},
		})
		s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("failed to sign unsigned test token: %v", err)
		}
		return "Bearer " + s
	}
	missingIat := func() string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{})
		s, err := token.SignedString(secret[:])
		if err != nil {
			t.Fatalf("failed to sign test token: %v", err)
		}
		return "Bearer " + s
	}

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid", sign(time.Now(), secret), http.StatusOK},
		{"drift within window", sign(time.Now().Add(-30*time.Second), secret), http.StatusOK},
		{"stale", sign(time.Now().Add(-2*time.Minute), secret), http.StatusUnauthorized},
		{"future", sign(time.Now().Add(2*time.Minute), secret), http.StatusUnauthorized},
		{"wrong secret", sign(time.Now(), wrong), http.StatusUnauthorized},
		{"unsigned algorithm", noneAlg(), http.StatusUnauthorized},
		{"missing issued-at", missingIat(), http.StatusUnauthorized},
	}

	handler := newJWTHandler(secret, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestNewJWTAuthHeader(t *testing.T) {
	var secret [32]byte
	secret[0] = 42

	header := make(http.Header)
	if err := NewJWTAuth(secret)(header); err != nil {
		t.Fatalf("failed to mint auth header: %v", err)
	}
	handler := newJWTHandler(secret, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header = header
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("minted token rejected with status %d", rec.Code)
	}
}
