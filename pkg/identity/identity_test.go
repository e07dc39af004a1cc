package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPResolverReturnsContact(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email":"u1@example.com","phone":"+15550100"}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "secret")

	email, err := r.PrimaryEmail(context.Background(), "t1", "u1")
	if err != nil {
		t.Fatalf("PrimaryEmail: %v", err)
	}
	if email != "u1@example.com" {
		t.Errorf("email = %q", email)
	}
	if gotPath != "/internal/tenants/t1/users/u1/contact" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth header = %q", gotAuth)
	}

	phone, err := r.PrimaryPhone(context.Background(), "t1", "u1")
	if err != nil {
		t.Fatalf("PrimaryPhone: %v", err)
	}
	if phone != "+15550100" {
		t.Errorf("phone = %q", phone)
	}
}

func TestHTTPResolverUnknownUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "")

	email, err := r.PrimaryEmail(context.Background(), "t1", "ghost")
	if err != nil {
		t.Fatalf("unknown user must not be an error: %v", err)
	}
	if email != "" {
		t.Errorf("email = %q, want empty", email)
	}
}

func TestHTTPResolverServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "")

	if _, err := r.PrimaryEmail(context.Background(), "t1", "u1"); err == nil {
		t.Fatal("5xx should surface as an error")
	}
}
