package naming_test

import (
	"regexp"
	"strings"
	"testing"

	"s3-client/core/naming"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var legalBucket = regexp.MustCompile(`^[a-z0-9].*[a-z0-9]$`)

func TestNormalizeBucket(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"AlreadyLegal", "my-bucket", "my-bucket"},
		{"Trimmed", "  my-bucket  ", "my-bucket"},
		{"Colons", "tal:abc123tal:tal", "tal-abc123tal-tal"},
		{"Uppercase", "TEST:abcTEST-", "test-abctest0"},
		{"LeadingDash", "-dog:abc", "0dog-abc"},
		{"LeadingStar", "*dog:abc", "0dog-abc"},
		{"LeadingPeriod", ".dog:abc", "0dog-abc"},
		{"TrailingPeriod", "cat:abc.", "cat-abc0"},
		{"TrailingCaret", "cat:abc^", "cat-abc0"},
		{"ConsecutivePeriods", "Tax..zx:abc-", "tax0zx-abc0"},
		{"OnlyFirstPeriodRun", "a..b...c", "a0b...c"},
		{"Underscore", "job_42", "job-42"},
		{"Spaces", "my bucket", "my-bucket"},
		{"NonASCII", "Café:Menu", "caf--menu"},
		{"ShortKept", "b1", "b1"},
		{"SingleChar", "a", "a"},
		{"SingleSymbol", "-", "0"},
		{"OnlyColons", "::", "00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := naming.NormalizeBucket(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeBucket_Long(t *testing.T) {
	raw := strings.Repeat("x", 49) + ":" + "0123456789abcdef0123456789"

	t.Run("Truncate", func(t *testing.T) {
		got, err := naming.NormalizeBucket(raw)
		require.NoError(t, err)
		assert.Len(t, got, naming.MaxBucketLength)
		assert.Equal(t, strings.ToLower(strings.ReplaceAll(raw[len(raw)-63:], ":", "-")), got)
	})

	t.Run("TruncateCollides", func(t *testing.T) {
		other := "y" + raw
		a, err := naming.NormalizeBucket(raw)
		require.NoError(t, err)
		b, err := naming.NormalizeBucket(other)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("HashAvoidsCollision", func(t *testing.T) {
		n := naming.Normalizer{Policy: naming.Hash}
		a, err := n.Bucket(raw)
		require.NoError(t, err)
		b, err := n.Bucket("y" + raw)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
		assert.Len(t, a, naming.MaxBucketLength)
		assert.Regexp(t, legalBucket, a)
	})

	t.Run("HashIsDeterministic", func(t *testing.T) {
		n := naming.Normalizer{Policy: naming.Hash}
		a, _ := n.Bucket(raw)
		b, _ := n.Bucket(raw)
		assert.Equal(t, a, b)
	})
}

func TestNormalizeBucket_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		t.Run(raw, func(t *testing.T) {
			_, err := naming.NormalizeBucket(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, naming.ErrInvalidBucketName)
			assert.True(t, naming.IsValidation(err))
		})
	}
}

func TestNormalizeBucket_Properties(t *testing.T) {
	inputs := []string{
		"abc", "ABC", "a:b:c", "--x--", "..x..", "x..y", "Hello.World",
		strings.Repeat("Z", 100), strings.Repeat(".", 10) + "abc", "bucket-" + strings.Repeat("9", 70),
		"1.2.3.4", "pipeline:job:task-0001", "snake_case_name", "Ünïcode Bücket",
	}
	for _, raw := range inputs {
		got, err := naming.NormalizeBucket(raw)
		require.NoError(t, err, raw)
		assert.NotEmpty(t, got, raw)
		assert.LessOrEqual(t, len(got), naming.MaxBucketLength, raw)
		assert.Equal(t, strings.ToLower(got), got, raw)
		assert.Regexp(t, legalBucket, got, raw)
		assert.NotContains(t, got, ":", raw)
		assert.Regexp(t, `^[a-z0-9.-]+$`, got, raw)
	}
}

func TestValidateKey(t *testing.T) {
	key, err := naming.ValidateKey("path/to/object:1")
	require.NoError(t, err)
	assert.Equal(t, "path/to/object:1", key)

	key, err = naming.ValidateKey(" spaced ")
	require.NoError(t, err)
	assert.Equal(t, " spaced ", key)

	for _, raw := range []string{"", "  ", "\t\n"} {
		_, err := naming.ValidateKey(raw)
		assert.ErrorIs(t, err, naming.ErrInvalidKey)
		assert.True(t, naming.IsValidation(err))
	}
}

func TestParseLongNamePolicy(t *testing.T) {
	p, err := naming.ParseLongNamePolicy("")
	require.NoError(t, err)
	assert.Equal(t, naming.Truncate, p)

	p, err = naming.ParseLongNamePolicy("HASH")
	require.NoError(t, err)
	assert.Equal(t, naming.Hash, p)

	_, err = naming.ParseLongNamePolicy("md5")
	assert.Error(t, err)
}
