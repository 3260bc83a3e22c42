package viacep

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"13083-852", "13083852", false},
		{"13083852", "13083852", false},
		{"cep 13.083-852", "13083852", false},
		{"1308385", "", true},
		{"abc", "", true},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrBadCEP) {
				t.Errorf("Normalize(%q) err = %v, want ErrBadCEP", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("Normalize(%q) = %q, %v, want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/13083852/json/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"logradouro":"Rua Roxo Moreira","bairro":"Cidade Universitária","localidade":"Campinas","uf":"SP"}`))
	}))
	defer srv.Close()

	client := MustNew(Config{URL: srv.URL})
	addr, err := client.Lookup(context.Background(), "13083-852")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if addr.Street != "Rua Roxo Moreira" || addr.City != "Campinas" || addr.Region != "SP" {
		t.Fatalf("addr = %+v", addr)
	}
}

func TestLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"erro": true}`))
	}))
	defer srv.Close()

	client := MustNew(Config{URL: srv.URL})
	if _, err := client.Lookup(context.Background(), "99999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookupStringErro(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"erro": "true"}`))
	}))
	defer srv.Close()

	client := MustNew(Config{URL: srv.URL})
	if _, err := client.Lookup(context.Background(), "99999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
