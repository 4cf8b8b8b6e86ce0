package jupyter

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

const (
	protocolVersion = "5.3"
	signatureScheme = "hmac-sha256"
)

var delimiter = []byte("<IDS|MSG>")

var (
	errNoDelimiter  = errors.New("message has no delimiter frame")
	errShortMessage = errors.New("message is missing frames")
	errBadSignature = errors.New("message signature mismatch")
)

type Header struct {
	MsgID    string `json:"msg_id,omitempty"`
	Session  string `json:"session,omitempty"`
	Username string `json:"username,omitempty"`
	Date     string `json:"date,omitempty"`
	MsgType  string `json:"msg_type,omitempty"`
	Version  string `json:"version,omitempty"`
}

// Message is one decoded wire message. Content is left raw and decoded per
// message type.
type Message struct {
	Identities   [][]byte
	Header       Header
	ParentHeader Header
	Metadata     map[string]any
	Content      []byte
	Buffers      [][]byte
}

// Codec signs and verifies messages with the connection key. An empty key
// disables signing.
type Codec struct {
	key []byte
}

func NewCodec(key, scheme string) (*Codec, error) {
	if scheme != "" && scheme != signatureScheme {
		return nil, fmt.Errorf("unsupported signature scheme %q", scheme)
	}
	return &Codec{key: []byte(key)}, nil
}

func newHeader(session, username, msgType string) Header {
	return Header{
		MsgID:    uuid.NewString(),
		Session:  session,
		Username: username,
		Date:     time.Now().UTC().Format(time.RFC3339Nano),
		MsgType:  msgType,
		Version:  protocolVersion,
	}
}

func (c *Codec) Encode(msg Message) ([][]byte, error) {
	header, err := sonic.Marshal(msg.Header)
	if err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	parent, err := sonic.Marshal(msg.ParentHeader)
	if err != nil {
		return nil, fmt.Errorf("encode parent header: %w", err)
	}
	metadata := []byte("{}")
	if len(msg.Metadata) > 0 {
		if metadata, err = sonic.Marshal(msg.Metadata); err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
	}
	content := msg.Content
	if len(content) == 0 {
		content = []byte("{}")
	}

	frames := make([][]byte, 0, len(msg.Identities)+6+len(msg.Buffers))
	frames = append(frames, msg.Identities...)
	frames = append(frames, delimiter, c.sign(header, parent, metadata, content), header, parent, metadata, content)
	frames = append(frames, msg.Buffers...)

	return frames, nil
}

func (c *Codec) Decode(frames [][]byte) (Message, error) {
	idx := -1
	for i, frame := range frames {
		if bytes.Equal(frame, delimiter) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Message{}, errNoDelimiter
	}
	if len(frames) < idx+6 {
		return Message{}, errShortMessage
	}

	signature := frames[idx+1]
	header, parent, metadata, content := frames[idx+2], frames[idx+3], frames[idx+4], frames[idx+5]

	if len(c.key) > 0 {
		expected := c.sign(header, parent, metadata, content)
		if !hmac.Equal(expected, signature) {
			return Message{}, errBadSignature
		}
	}

	msg := Message{
		Identities: frames[:idx],
		Content:    content,
		Buffers:    frames[idx+6:],
	}
	if err := sonic.Unmarshal(header, &msg.Header); err != nil {
		return Message{}, fmt.Errorf("decode header: %w", err)
	}
	if err := sonic.Unmarshal(parent, &msg.ParentHeader); err != nil {
		return Message{}, fmt.Errorf("decode parent header: %w", err)
	}
	if len(metadata) > 0 {
		if err := sonic.Unmarshal(metadata, &msg.Metadata); err != nil {
			return Message{}, fmt.Errorf("decode metadata: %w", err)
		}
	}

	return msg, nil
}

func (c *Codec) sign(parts ...[]byte) []byte {
	if len(c.key) == 0 {
		return []byte{}
	}

	mac := hmac.New(sha256.New, c.key)
	for _, part := range parts {
		mac.Write(part)
	}
	sum := mac.Sum(nil)

	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out
}
