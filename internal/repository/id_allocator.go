package repository

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/noah-isme/cams/internal/models"
	appErrors "github.com/noah-isme/cams/pkg/errors"
)

// Id prefixes per allocated entity kind.
const (
	PrefixCamp       = "CAMP"
	PrefixEnquiry    = "ENQ"
	PrefixSuggestion = "SUG"
)

// PrefixForRequest returns the id prefix of a request kind.
func PrefixForRequest(kind models.RequestKind) string {
	if kind == models.RequestKindSuggestion {
		return PrefixSuggestion
	}
	return PrefixEnquiry
}

// IDAllocator hands out ids of the form <PREFIX><N>. It keeps no durable state:
// every call looks at the ids currently in use, so edits made to the record
// files between runs are picked up.
type IDAllocator struct {
	mu   sync.Mutex
	last map[string]int
}

// NewIDAllocator returns an allocator that knows the given prefixes, or the
// built-in ones when none are passed.
func NewIDAllocator(prefixes ...string) *IDAllocator {
	if len(prefixes) == 0 {
		prefixes = []string{PrefixCamp, PrefixEnquiry, PrefixSuggestion}
	}
	last := make(map[string]int, len(prefixes))
	for _, p := range prefixes {
		last[p] = 0
	}
	return &IDAllocator{last: last}
}

// Next returns the next unused id for prefix given the ids already stored.
func (a *IDAllocator) Next(prefix string, inUse []string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, known := a.last[prefix]
	if !known {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown id prefix %q", prefix))
	}
	for _, id := range inUse {
		if suffix, ok := numericSuffix(prefix, id); ok && suffix > n {
			n = suffix
		}
	}
	n++
	a.last[prefix] = n
	return prefix + strconv.Itoa(n), nil
}

// NumericSuffix extracts N from an id shaped <letters><N>; ok is false otherwise.
func NumericSuffix(id string) (int, bool) {
	i := strings.IndexFunc(id, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return 0, false
	}
	return numericSuffix(id[:i], id)
}

func numericSuffix(prefix, id string) (int, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	rest := id[len(prefix):]
	if rest == "" {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}
