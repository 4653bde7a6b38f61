package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	records := []Record{
		{
			Embedding: []float64{0.1, -0.25, 1e-9, 3.141592653589793, 0},
			Article: Article{
				UID:     "a1b2c3",
				URL:     "https://example.com/article",
				Title:   "An Article",
				Content: "Some content\nwith lines",
			},
		},
		{
			Embedding: []float64{1, 2, 3},
			Article:   Article{UID: "x", URL: "https://example.com/other", Title: "", Content: ""},
		},
	}

	data, err := encodeRecords(records)
	require.NoError(t, err)

	decoded, err := decodeRecords(data, "test.json")
	require.NoError(t, err)
	// Float64 values survive a JSON round trip bit for bit.
	assert.Equal(t, records, decoded)
}

func TestEncodeEmptyStore(t *testing.T) {
	data, err := encodeRecords(nil)
	require.NoError(t, err)

	decoded, err := decodeRecords(data, "test.json")
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecodeRejectsMalformedStore(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"truncated document", `[{"embedding": [1, 2], "article": {"uid": "u", "ur`},
		{"not a list", `{"embedding": [1], "article": {}}`},
		{"missing article", `[{"embedding": [1, 2]}]`},
		{"missing uid", `[{"embedding": [1], "article": {"url": "https://e.com"}}]`},
		{"missing url", `[{"embedding": [1], "article": {"uid": "u"}}]`},
		{"missing embedding", `[{"article": {"uid": "u", "url": "https://e.com"}}]`},
		{"null embedding", `[{"embedding": null, "article": {"uid": "u", "url": "https://e.com"}}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeRecords([]byte(tc.data), "test.json")
			require.Error(t, err)
			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestDecodeArticle(t *testing.T) {
	a, err := decodeArticle([]byte(`{"uid": "u1", "url": "https://e.com", "title": "T", "content": "C"}`), "u1.json")
	require.NoError(t, err)
	assert.Equal(t, Article{UID: "u1", URL: "https://e.com", Title: "T", Content: "C"}, a)

	_, err = decodeArticle([]byte(`{"title": "no identity"}`), "bad.json")
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)

	_, err = decodeArticle([]byte(`not json`), "bad.json")
	assert.ErrorAs(t, err, &decodeErr)
}
