package common

import "testing"

func TestBearerToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Bearer t1", want: "t1"},
		{in: "bearer  t2 ", want: "t2"},
		{in: "Basic abc", want: ""},
		{in: "Bearer", want: ""},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := BearerToken(tt.in); got != tt.want {
			t.Fatalf("BearerToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
