package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHeader(t *testing.T) {
	testcases := []struct {
		desc        string
		name, value string
		wantErr     error
	}{
		{desc: "content type", name: "Content-Type", value: "text/plain"},
		{desc: "empty value", name: "X-Empty", value: ""},
		{desc: "value with separators", name: "Accept", value: "text/html, */*;q=0.8"},
		{desc: "tchar name", name: "X-A.b_c~!#$%&'*+^`|", value: "v"},
		{desc: "empty name", name: "", value: "v", wantErr: ErrInvalidInput},
		{desc: "name with space", name: "Content Type", value: "v", wantErr: ErrValidationFailed},
		{desc: "name with colon", name: "Host:", value: "v", wantErr: ErrValidationFailed},
		{desc: "name with slash", name: "a/b", value: "v", wantErr: ErrValidationFailed},
		{desc: "name with control", name: "a\x01", value: "v", wantErr: ErrValidationFailed},
		{desc: "name with DEL", name: "a\x7f", value: "v", wantErr: ErrValidationFailed},
		{desc: "value with CR", name: "a", value: "v\r", wantErr: ErrValidationFailed},
		{desc: "value with NUL", name: "a", value: "v\x00", wantErr: ErrValidationFailed},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			h, err := NewHeader(tc.name, tc.value)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.name, h.Name())
			assert.Equal(t, tc.value, h.Value())
		})
	}
}

func TestSeparatorsInHeaderName(t *testing.T) {
	for _, c := range []byte("()<>@,;:\\\"/[]?={} \t") {
		_, err := NewHeader("X"+string(c)+"Y", "v")
		assert.ErrorIs(t, err, ErrValidationFailed, "separator %q", c)
	}
}

func TestHeaders(t *testing.T) {
	must := func(name, value string) Header {
		h, err := NewHeader(name, value)
		require.NoError(t, err)
		return h
	}

	hs := NewHeaders().
		Prepend(must("Accept", "text/plain")).
		Prepend(must("Host", "localhost")).
		Prepend(must("accept", "text/html"))

	assert.Equal(t, 3, hs.Len())

	// Most recent first.
	v, ok := hs.Get("ACCEPT")
	assert.True(t, ok)
	assert.Equal(t, "text/html", v)
	assert.Equal(t, []string{"text/html", "text/plain"}, hs.Values("Accept"))

	_, ok = hs.Get("Content-Type")
	assert.False(t, ok)

	all := hs.All()
	all[0] = must("Mutated", "yes")
	first := hs.All()[0]
	assert.Equal(t, "accept", first.Name())
	assert.True(t, first.HasName("Accept"))
	assert.Equal(t, "accept: text/html", first.String())
}
