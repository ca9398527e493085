package validation

import (
	"errors"
	"strings"
	"testing"

	"boardd/pkg/boarderr"
)

func TestCreatePostRequestRules(t *testing.T) {
	cases := []struct {
		name string
		req  CreatePostRequest
		ok   bool
	}{
		{"valid", CreatePostRequest{ThreadID: "t1", UserID: "u1", Content: "hi"}, true},
		{"guest author allowed", CreatePostRequest{ThreadID: "t1", Content: "hi"}, true},
		{"blank content", CreatePostRequest{ThreadID: "t1", UserID: "u1"}, false},
		{"missing thread", CreatePostRequest{UserID: "u1", Content: "hi"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(&tc.req)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, boarderr.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateThreadRequestAllowsEmptyGenre(t *testing.T) {
	cases := []struct {
		name string
		req  CreateThreadRequest
		ok   bool
	}{
		{"with genre", CreateThreadRequest{ThreadName: "talk", GenreTag: "tech"}, true},
		{"empty genre", CreateThreadRequest{ThreadName: "talk"}, true},
		{"blank name", CreateThreadRequest{GenreTag: "tech"}, false},
		{"oversized genre", CreateThreadRequest{ThreadName: "talk", GenreTag: strings.Repeat("g", 101)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(&tc.req)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, boarderr.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestReactRequestRejectsKeyDelimiters(t *testing.T) {
	req := ReactRequest{ThreadID: "t:1", PostID: "p1", Kind: "like"}
	if err := Struct(&req); !errors.Is(err, boarderr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	req = ReactRequest{ThreadID: "t1", PostID: "p1", Kind: "thumbs-up"}
	if err := Struct(&req); !errors.Is(err, boarderr.ErrValidation) {
		t.Fatalf("non-alphanumeric kind accepted")
	}
}

func TestValidationErrorNamesFields(t *testing.T) {
	err := Struct(&CreateThreadRequest{GenreTag: strings.Repeat("g", 200)})
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "threadname") || !strings.Contains(msg, "genretag") {
		t.Fatalf("message does not name failing fields: %q", msg)
	}
}
