package naming

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

const (
	// MaxBucketLength is the longest bucket name providers accept.
	MaxBucketLength = 63

	hashSuffixLength = 16
)

var (
	// ErrInvalidBucketName is returned for bucket names that cannot be normalized.
	ErrInvalidBucketName = errors.New("invalid bucket name")
	// ErrInvalidKey is returned for empty or whitespace-only object keys.
	ErrInvalidKey = errors.New("invalid object key")

	consecutivePeriods = regexp.MustCompile(`\.{2,}`)
)

// LongNamePolicy selects how names longer than MaxBucketLength are shortened.
type LongNamePolicy string

const (
	// Truncate keeps the trailing 63 characters. Distinct names sharing a
	// suffix collide; kept for compatibility with already deployed buckets.
	Truncate LongNamePolicy = "truncate"
	// Hash keeps a prefix and appends a hash of the full name.
	Hash LongNamePolicy = "hash"
)

// ParseLongNamePolicy maps a configuration value to a LongNamePolicy.
// An empty value selects Truncate.
func ParseLongNamePolicy(s string) (LongNamePolicy, error) {
	switch LongNamePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Truncate:
		return Truncate, nil
	case Hash:
		return Hash, nil
	default:
		return "", fmt.Errorf("unknown long bucket name policy %q", s)
	}
}

// Normalizer applies the bucket and key rules. The zero value uses Truncate.
type Normalizer struct {
	Policy LongNamePolicy
}

// NormalizeBucket normalizes raw with the Truncate policy.
func NormalizeBucket(raw string) (string, error) {
	return Normalizer{}.Bucket(raw)
}

// ValidateKey returns the key unchanged if it is non-empty after trimming.
func ValidateKey(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	return raw, nil
}

// IsValidation reports whether err was raised by this package.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidBucketName) || errors.Is(err, ErrInvalidKey)
}

// Bucket rewrites raw into a legal bucket name.
func (n Normalizer) Bucket(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: bucket cannot be empty", ErrInvalidBucketName)
	}

	if utf8.RuneCountInString(name) > MaxBucketLength {
		name = n.shorten(name)
	}

	name = strings.Map(replaceDisallowed, strings.ToLower(name))

	r := []rune(name)
	if !isAlnum(r[0]) {
		r[0] = '0'
	}
	if !isAlnum(r[len(r)-1]) {
		r[len(r)-1] = '0'
	}
	name = string(r)

	// Only the first run is replaced.
	if loc := consecutivePeriods.FindStringIndex(name); loc != nil {
		name = name[:loc[0]] + "0" + name[loc[1]:]
	}

	if utf8.RuneCountInString(name) > MaxBucketLength {
		return "", fmt.Errorf("%w: %q: bucket names must be no more than %d characters long",
			ErrInvalidBucketName, raw, MaxBucketLength)
	}
	return name, nil
}

// Key validates an object key.
func (n Normalizer) Key(raw string) (string, error) {
	return ValidateKey(raw)
}

func (n Normalizer) shorten(name string) string {
	r := []rune(name)
	if n.Policy == Hash {
		sum := strconv.FormatUint(xxhash.Sum64String(name), 16)
		sum = strings.Repeat("0", hashSuffixLength-len(sum)) + sum
		return string(r[:MaxBucketLength-hashSuffixLength-1]) + "-" + sum
	}
	return string(r[len(r)-MaxBucketLength:])
}

// replaceDisallowed maps every character outside [a-z0-9.-] to '-'.
func replaceDisallowed(c rune) rune {
	if isAlnum(c) || c == '.' || c == '-' {
		return c
	}
	return '-'
}

func isAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
