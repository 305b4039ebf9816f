package imagedata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		in       string
		wantMIME string
		wantData string
	}{
		{in: "data:image/png;base64,AAAA", wantMIME: "image/png", wantData: "AAAA"},
		{in: "data:image/jpg;base64,BBBB", wantMIME: "image/jpeg", wantData: "BBBB"},
		{in: "data:image/webp;base64,CCCC", wantMIME: "image/webp", wantData: "CCCC"},
		{in: "AAAA", wantMIME: DefaultMIMEType, wantData: "AAAA"},
		{in: "  data:image/jpeg;base64,DDDD\n", wantMIME: "image/jpeg", wantData: "DDDD"},
		{in: "data:text/plain;base64,EEEE", wantMIME: DefaultMIMEType, wantData: "data:text/plain;base64,EEEE"},
	}

	for _, tt := range tests {
		mime, data := Split(tt.in)
		assert.Equal(t, tt.wantMIME, mime, tt.in)
		assert.Equal(t, tt.wantData, data, tt.in)
	}
}

func TestDecode(t *testing.T) {
	mime, data, err := Decode("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte("hello"), data)

	_, data, err = Decode("aGVsbG8")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	_, _, err = Decode("data:image/png;base64,@@@")
	assert.Error(t, err)
}

func TestDataURIAndExtension(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AAAA", DataURI("image/png", "AAAA"))
	assert.Equal(t, "png", Extension("image/png"))
	assert.Equal(t, "jpg", Extension("image/jpeg"))
	assert.Equal(t, "webp", Extension("image/webp"))
}
