package jupyter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTripSigned(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec("secret", "hmac-sha256")
	require.NoError(t, err)

	header := newHeader("sess", "tester", msgExecuteRequest)
	frames, err := codec.Encode(Message{
		Identities: [][]byte{[]byte("peer")},
		Header:     header,
		Content:    []byte(`{"code":"1+1"}`),
	})
	require.NoError(t, err)
	require.Len(t, frames, 7)
	assert.Equal(t, "peer", string(frames[0]))
	assert.Equal(t, "<IDS|MSG>", string(frames[1]))
	assert.Len(t, frames[2], 64)
	assert.Equal(t, "{}", string(frames[4]))

	decoded, err := codec.Decode(frames)
	require.NoError(t, err)
	assert.Equal(t, header, decoded.Header)
	assert.Empty(t, decoded.ParentHeader.MsgID)
	assert.Equal(t, [][]byte{[]byte("peer")}, decoded.Identities)
	assert.JSONEq(t, `{"code":"1+1"}`, string(decoded.Content))
	assert.Equal(t, "5.3", decoded.Header.Version)
}

func TestCodecRejectsTamperedContent(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec("secret", "")
	require.NoError(t, err)

	frames, err := codec.Encode(Message{Header: newHeader("s", "u", msgStatus), Content: []byte(`{"execution_state":"idle"}`)})
	require.NoError(t, err)
	frames[len(frames)-1] = []byte(`{"execution_state":"busy"}`)

	_, err = codec.Decode(frames)
	require.ErrorIs(t, err, errBadSignature)
}

func TestCodecUnsignedWhenKeyEmpty(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec("", "")
	require.NoError(t, err)

	frames, err := codec.Encode(Message{Header: newHeader("s", "u", msgStatus)})
	require.NoError(t, err)
	assert.Empty(t, frames[1])

	_, err = codec.Decode(frames)
	require.NoError(t, err)
}

func TestCodecDecodeMalformed(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec("k", "")
	require.NoError(t, err)

	_, err = codec.Decode([][]byte{[]byte("a"), []byte("b")})
	require.ErrorIs(t, err, errNoDelimiter)

	_, err = codec.Decode([][]byte{delimiter, []byte("sig"), []byte("{}")})
	require.ErrorIs(t, err, errShortMessage)
}

func TestNewCodecRejectsUnknownScheme(t *testing.T) {
	t.Parallel()

	_, err := NewCodec("k", "hmac-md5")
	require.Error(t, err)
}
