package environ

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"k8s.io/utils/ptr"
)

type envTest[K comparable] struct {
	name     string
	fallback K
	set      *string
	prefixed *string
	expected K
}

func testEnvGet[K comparable](t *testing.T, tests []envTest[K], fn func(string, K) K) {
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.set != nil {
				t.Setenv(test.name, *test.set)
			}
			if test.prefixed != nil {
				t.Setenv(Prefix+test.name, *test.prefixed)
			}
			assert.Equal(t, test.expected, fn(test.name, test.fallback))
		})
	}
}

func TestGetString(t *testing.T) {
	tests := []envTest[string]{
		{name: "TEST_STRING_UNSET", fallback: "example", expected: "example"},
		{name: "TEST_STRING_SET", fallback: "example", set: ptr.To("jetson-01"), expected: "jetson-01"},
		{name: "TEST_STRING_EMPTY", fallback: "example", set: ptr.To(""), expected: "example"},
		{name: "TEST_STRING_PREFIXED", fallback: "example", set: ptr.To("bare"), prefixed: ptr.To("prefixed"), expected: "prefixed"},
	}
	testEnvGet(t, tests, GetString)
}

func TestGetInt(t *testing.T) {
	tests := []envTest[int]{
		{name: "TEST_INT_UNSET", fallback: 8000, expected: 8000},
		{name: "TEST_INT_SET", fallback: 8000, set: ptr.To("9100"), expected: 9100},
		{name: "TEST_INT_INVALID", fallback: 8000, set: ptr.To("ninety"), expected: 8000},
		{name: "TEST_INT_PREFIXED", fallback: 8000, prefixed: ptr.To("9200"), expected: 9200},
	}
	testEnvGet(t, tests, GetInt)
}

func TestGetBool(t *testing.T) {
	tests := []envTest[bool]{
		{name: "TEST_BOOL_UNSET", fallback: true, expected: true},
		{name: "TEST_BOOL_FALSE", fallback: true, set: ptr.To("false"), expected: false},
		{name: "TEST_BOOL_TRUE", fallback: false, set: ptr.To("1"), expected: true},
		{name: "TEST_BOOL_INVALID", fallback: true, set: ptr.To("maybe"), expected: true},
	}
	testEnvGet(t, tests, GetBool)
}

func TestGetDuration(t *testing.T) {
	tests := []envTest[time.Duration]{
		{name: "TEST_DURATION_UNSET", fallback: 10 * time.Second, expected: 10 * time.Second},
		{name: "TEST_DURATION_SET", fallback: 10 * time.Second, set: ptr.To("30s"), expected: 30 * time.Second},
		{name: "TEST_DURATION_DAYS", fallback: time.Minute, set: ptr.To("1d"), expected: 24 * time.Hour},
		{name: "TEST_DURATION_INVALID", fallback: time.Minute, set: ptr.To("soon"), expected: time.Minute},
	}
	testEnvGet(t, tests, GetDuration)
}
