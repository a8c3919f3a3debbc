package trans

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Positional markers: %1..%99, optionally locale aware (%L1).
var placeholderRe = regexp.MustCompile(`%L?([1-9][0-9]?)`)

// Placeholders returns the distinct positional markers in s, in ascending order, e.g. ["%1", "%2"].
// The locale aware %L1 counts as %1.
func Placeholders(s string) []string {
	seen := make(map[int]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(s, -1) {
		n, _ := strconv.Atoi(m[1])
		seen[n] = true
	}

	nums := make([]int, 0, len(seen))
	for n := range seen {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = "%" + strconv.Itoa(n)
	}
	return out
}

// HasCount reports whether s contains the %n quantity marker.
func HasCount(s string) bool {
	return strings.Contains(s, "%n") || strings.Contains(s, "%Ln")
}

// Arg fills the positional markers of s. The lowest numbered marker receives the first argument,
// the next lowest the second one and so on; markers without an argument are left untouched.
func Arg(s string, args ...string) string {
	if len(args) == 0 {
		return s
	}
	markers := Placeholders(s)
	values := make(map[string]string, len(markers))
	for i, m := range markers {
		if i >= len(args) {
			break
		}
		values[m[1:]] = args[i]
	}

	return placeholderRe.ReplaceAllStringFunc(s, func(tok string) string {
		num := placeholderRe.FindStringSubmatch(tok)[1]
		if v, ok := values[num]; ok {
			return v
		}
		return tok
	})
}
