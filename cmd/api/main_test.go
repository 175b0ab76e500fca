package main

import (
	"reflect"
	"testing"
)

func TestSplitOrigins(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single", "https://clinic.example.com", []string{"https://clinic.example.com"}},
		{"multiple with spaces", " https://a.example.com , https://b.example.com ", []string{"https://a.example.com", "https://b.example.com"}},
		{"trailing comma", "https://a.example.com,", []string{"https://a.example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitOrigins(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("splitOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
