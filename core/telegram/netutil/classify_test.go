package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"dns", &net.DNSError{Err: "no such host"}, "dns"},
		{"dns_timeout", &net.DNSError{Err: "timeout", IsTimeout: true}, "timeout"},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, "dial"},
		{"api_500", &tele.Error{Code: 502}, "http_5xx"},
		{"api_400", &tele.Error{Code: 403}, "http_4xx"},
		{"suffix_code", fmt.Errorf("telegram: Bad Request (400)"), "http_4xx"},
		{"plain", errors.New("boom"), "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsNetwork(t *testing.T) {
	if !IsNetwork(&net.OpError{Op: "dial", Err: errors.New("refused")}) {
		t.Fatal("dial failure must count as network")
	}
	if IsNetwork(&tele.Error{Code: 400}) {
		t.Fatal("API rejection must not count as network")
	}
	if IsNetwork(errors.New("boom")) {
		t.Fatal("unknown error must not count as network")
	}
}

func TestSanitizeError(t *testing.T) {
	err := errors.New("Post \"https://api.telegram.org/bot123456:AAE-abc_def/sendMessage\": EOF")
	got := SanitizeError(err)
	if got != "Post \"https://api.telegram.org/bot<redacted>/sendMessage\": EOF" {
		t.Fatalf("sanitized = %q", got)
	}
}

func TestShouldRetry(t *testing.T) {
	if ShouldRetry(nil) {
		t.Fatal("nil error must not retry")
	}
	if !ShouldRetry(&net.OpError{Op: "dial", Err: errors.New("refused")}) {
		t.Fatal("dial failure should retry")
	}
	if ShouldRetry(errors.New("boom")) {
		t.Fatal("generic error must not retry")
	}
}
