package protocol

import (
	"bytes"
	"strings"
)

// Terminator is the single byte that ends every frame on the wire.
const Terminator byte = 0x00

// Command identifies the frame command.
type Command uint8

const (
	// CommandNone is the command of the sentinel frame returned by Parse
	// for input with a missing or empty command line. Callers must branch
	// on it instead of dereferencing header or body fields.
	CommandNone Command = iota

	// Client → broker.
	CommandConnect
	CommandSubscribe
	CommandUnsubscribe
	CommandSend
	CommandDisconnect

	// Broker → client.
	CommandConnected
	CommandMessage
	CommandReceipt
	CommandError

	// CommandUnknown marks a frame whose command token is not part of the
	// protocol. The raw token is preserved in Frame.Token.
	CommandUnknown
)

// String returns the wire token for the command.
func (c Command) String() string {
	switch c {
	case CommandConnect:
		return "CONNECT"
	case CommandSubscribe:
		return "SUBSCRIBE"
	case CommandUnsubscribe:
		return "UNSUBSCRIBE"
	case CommandSend:
		return "SEND"
	case CommandDisconnect:
		return "DISCONNECT"
	case CommandConnected:
		return "CONNECTED"
	case CommandMessage:
		return "MESSAGE"
	case CommandReceipt:
		return "RECEIPT"
	case CommandError:
		return "ERROR"
	default:
		return ""
	}
}

// ParseCommand maps a wire token to a Command.
// Unrecognized tokens map to CommandUnknown; the empty token maps to CommandNone.
func ParseCommand(token string) Command {
	switch token {
	case "":
		return CommandNone
	case "CONNECT":
		return CommandConnect
	case "SUBSCRIBE":
		return CommandSubscribe
	case "UNSUBSCRIBE":
		return CommandUnsubscribe
	case "SEND":
		return CommandSend
	case "DISCONNECT":
		return CommandDisconnect
	case "CONNECTED":
		return CommandConnected
	case "MESSAGE":
		return CommandMessage
	case "RECEIPT":
		return CommandReceipt
	case "ERROR":
		return CommandError
	default:
		return CommandUnknown
	}
}

// Frame represents one protocol message unit.
//
// Wire format:
//
//	<COMMAND>\n
//	<key>:<value>\n   (zero or more)
//	\n
//	<body bytes>
//	\0
//
// Header order is not significant; duplicate keys are last-write-wins.
// A Frame is built per send or per receive and not mutated afterwards.
type Frame struct {
	Command Command
	// Token holds the raw command token for CommandUnknown frames so the
	// reader can surface them verbatim. Empty for known commands.
	Token   string
	Headers map[string]string
	Body    string
}

// NewFrame creates an empty frame with the given command.
func NewFrame(c Command) *Frame {
	return &Frame{
		Command: c,
		Headers: make(map[string]string),
	}
}

// SetHeader sets a header, overwriting any previous value for the key.
func (f *Frame) SetHeader(key, value string) {
	f.Headers[key] = value
}

// Header returns the value for key, or "" if the header is absent.
func (f *Frame) Header(key string) string {
	return f.Headers[key]
}

// commandToken returns the token to emit on the wire.
func (f *Frame) commandToken() string {
	if f.Command == CommandUnknown {
		return f.Token
	}
	return f.Command.String()
}

// Serialize encodes the frame to its wire form, terminator included.
// Header iteration order is unspecified; header semantics are
// order-independent. Colons inside header values are emitted verbatim.
func (f *Frame) Serialize() []byte {
	var buf bytes.Buffer
	buf.WriteString(f.commandToken())
	buf.WriteByte('\n')
	for key, value := range f.Headers {
		buf.WriteString(key)
		buf.WriteByte(':')
		buf.WriteString(value)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.WriteString(f.Body)
	buf.WriteByte(Terminator)
	return buf.Bytes()
}

// Parse decodes one frame from a raw byte block.
//
// The first line is the command; an empty or missing command line yields the
// CommandNone sentinel frame. Subsequent non-empty lines are headers, split on
// the first colon; lines with no colon are skipped. A blank line ends the
// header section and the remaining bytes, up to but excluding a trailing
// terminator, form the body. Trailing carriage returns are stripped from the
// command and header lines before interpretation.
func Parse(data []byte) *Frame {
	if n := len(data); n > 0 && data[n-1] == Terminator {
		data = data[:n-1]
	}
	rest := string(data)

	line, rest := cutLine(rest)
	token := strings.TrimSuffix(line, "\r")
	if token == "" {
		return &Frame{Command: CommandNone, Headers: make(map[string]string)}
	}

	f := NewFrame(ParseCommand(token))
	if f.Command == CommandUnknown {
		f.Token = token
	}

	for rest != "" {
		var next string
		line, next = cutLine(rest)
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			// Blank line: everything after it is the body, verbatim.
			f.Body = next
			return f
		}
		if key, value, ok := strings.Cut(line, ":"); ok {
			f.Headers[key] = value
		}
		rest = next
	}
	return f
}

// cutLine splits s at the first newline. When s holds no newline the whole
// string is returned as the line and the remainder is empty.
func cutLine(s string) (line, rest string) {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}
