package protocol

import (
	"bytes"
	"reflect"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		frame *Frame
	}{
		{
			name: "no_headers_no_body",
			frame: &Frame{
				Command: CommandDisconnect,
				Headers: map[string]string{},
			},
		},
		{
			name: "connect",
			frame: &Frame{
				Command: CommandConnect,
				Headers: map[string]string{
					"accept-version": "1.2",
					"host":           "matchwire",
					"login":          "alice",
					"passcode":       "p",
				},
			},
		},
		{
			name: "body_with_colons_and_newlines",
			frame: &Frame{
				Command: CommandSend,
				Headers: map[string]string{"destination": "/teamX_teamY"},
				Body:    "user: bob\ntime: 10\ndescription:\na goal: a very nice one\n",
			},
		},
		{
			name: "header_value_with_colon",
			frame: &Frame{
				Command: CommandError,
				Headers: map[string]string{"message": "malformed frame: missing header"},
				Body:    "details",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wire := tc.frame.Serialize()
			if wire[len(wire)-1] != Terminator {
				t.Fatalf("Serialize() missing terminator, got trailing byte %#x", wire[len(wire)-1])
			}
			got := Parse(wire)
			if !reflect.DeepEqual(got, tc.frame) {
				t.Errorf("Parse(Serialize()) = %+v, want %+v", got, tc.frame)
			}
		})
	}
}

func TestParseSentinel(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"terminator_only", []byte{Terminator}},
		{"leading_newline", []byte("\nSUBSCRIBE\n\n")},
		{"bare_cr", []byte("\r\n")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := Parse(tc.data)
			if f.Command != CommandNone {
				t.Errorf("Parse(%q).Command = %v, want CommandNone", tc.data, f.Command)
			}
		})
	}
}

func TestParseHeaders(t *testing.T) {
	t.Run("split_on_first_colon", func(t *testing.T) {
		f := Parse([]byte("ERROR\nmessage:bad frame: no command\n\n\x00"))
		if got := f.Header("message"); got != "bad frame: no command" {
			t.Errorf("Header(message) = %q, want %q", got, "bad frame: no command")
		}
	})

	t.Run("malformed_header_skipped", func(t *testing.T) {
		f := Parse([]byte("RECEIPT\nnot a header line\nreceipt-id:3\n\n\x00"))
		if len(f.Headers) != 1 {
			t.Errorf("Headers = %v, want only receipt-id", f.Headers)
		}
		if got := f.Header("receipt-id"); got != "3" {
			t.Errorf("Header(receipt-id) = %q, want %q", got, "3")
		}
	})

	t.Run("duplicate_key_last_wins", func(t *testing.T) {
		f := Parse([]byte("SEND\ndestination:/a\ndestination:/b\n\n\x00"))
		if got := f.Header("destination"); got != "/b" {
			t.Errorf("Header(destination) = %q, want %q", got, "/b")
		}
	})

	t.Run("crlf_lines", func(t *testing.T) {
		f := Parse([]byte("CONNECTED\r\nversion:1.2\r\n\r\nbody\x00"))
		if f.Command != CommandConnected {
			t.Fatalf("Command = %v, want CommandConnected", f.Command)
		}
		if got := f.Header("version"); got != "1.2" {
			t.Errorf("Header(version) = %q, want %q", got, "1.2")
		}
		if f.Body != "body" {
			t.Errorf("Body = %q, want %q", f.Body, "body")
		}
	})
}

func TestParseBody(t *testing.T) {
	t.Run("body_preserved_verbatim", func(t *testing.T) {
		body := "line one\n\nline three: with colon\n"
		f := Parse([]byte("MESSAGE\nsubscription:0\n\n" + body + "\x00"))
		if f.Body != body {
			t.Errorf("Body = %q, want %q", f.Body, body)
		}
	})

	t.Run("missing_blank_line_means_no_body", func(t *testing.T) {
		f := Parse([]byte("RECEIPT\nreceipt-id:7"))
		if f.Body != "" {
			t.Errorf("Body = %q, want empty", f.Body)
		}
		if got := f.Header("receipt-id"); got != "7" {
			t.Errorf("Header(receipt-id) = %q, want %q", got, "7")
		}
	})
}

func TestParseUnknownCommand(t *testing.T) {
	f := Parse([]byte("BANANA\nfoo:bar\n\nhello\x00"))
	if f.Command != CommandUnknown {
		t.Fatalf("Command = %v, want CommandUnknown", f.Command)
	}
	if f.Token != "BANANA" {
		t.Errorf("Token = %q, want %q", f.Token, "BANANA")
	}
	if !bytes.HasPrefix(f.Serialize(), []byte("BANANA\n")) {
		t.Errorf("Serialize() does not start with raw token: %q", f.Serialize())
	}
}

func TestParseCommandTokens(t *testing.T) {
	tests := []struct {
		token string
		want  Command
	}{
		{"CONNECT", CommandConnect},
		{"SUBSCRIBE", CommandSubscribe},
		{"UNSUBSCRIBE", CommandUnsubscribe},
		{"SEND", CommandSend},
		{"DISCONNECT", CommandDisconnect},
		{"CONNECTED", CommandConnected},
		{"MESSAGE", CommandMessage},
		{"RECEIPT", CommandReceipt},
		{"ERROR", CommandError},
		{"", CommandNone},
		{"connect", CommandUnknown},
	}

	for _, tc := range tests {
		if got := ParseCommand(tc.token); got != tc.want {
			t.Errorf("ParseCommand(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}

	for _, tc := range tests {
		if tc.want == CommandNone || tc.want == CommandUnknown {
			continue
		}
		if got := tc.want.String(); got != tc.token {
			t.Errorf("%v.String() = %q, want %q", tc.want, got, tc.token)
		}
	}
}

func BenchmarkFrameSerialize(b *testing.B) {
	f := NewFrame(CommandSend)
	f.SetHeader("destination", "/teamX_teamY")
	f.Body = "user: alice\ntime: 42\ndescription:\nsomething happened"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Serialize()
	}
}

func BenchmarkFrameParse(b *testing.B) {
	data := []byte("MESSAGE\nsubscription:0\ndestination:/teamX_teamY\n\nuser: alice\ntime: 42\n\x00")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Parse(data)
	}
}
