package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/m3rciful/confbot/services/serviceerr"
)

func TestHandlerName(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"/start", "start"},
		{"/ask_speaker", "ask_speaker"},
		{"/Start@confbot", "start"},
		{"Задать вопрос спикеру", "text"},
		{"привет", "text"},
		{"/", "unknown"},
		{"  /generate_photo  ", "generate_photo"},
	}
	for _, tc := range cases {
		if got := handlerName(tc.text); got != tc.want {
			t.Errorf("handlerName(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDeriveErrorCode(t *testing.T) {
	if got := deriveErrorCode(nil); got != "" {
		t.Fatalf("nil error code = %q", got)
	}

	svcErr := serviceerr.Transport("assistant", errors.New("boom"))
	if got := deriveErrorCode(svcErr); got != "SERVICE_TRANSPORT" {
		t.Fatalf("service error code = %q", got)
	}

	if got := deriveErrorCode(fmt.Errorf("wrapped: %w", errors.New("x"))); got == "" {
		t.Fatal("expected a type-derived code for plain errors")
	}
}
