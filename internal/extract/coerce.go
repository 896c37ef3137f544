package extract

import (
	"errors"
	"strconv"
	"strings"
)

var (
	errMissing   = errors.New("missing or empty")
	errNotNumber = errors.New("not an integer")
)

// optInt returns the integer value of node, or nil when the node is missing,
// empty, or not a valid integer.
func optInt(node *string) *int {
	if node == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*node))
	if err != nil {
		return nil
	}
	return &n
}

// optString returns node's text, or nil when the node is missing or empty.
func optString(node *string) *string {
	if node == nil || *node == "" {
		return nil
	}
	s := *node
	return &s
}

// reqInt64 is the required-field variant of optInt.
func reqInt64(node *string) (int64, error) {
	if node == nil || strings.TrimSpace(*node) == "" {
		return 0, errMissing
	}
	n, err := strconv.ParseInt(strings.TrimSpace(*node), 10, 64)
	if err != nil {
		return 0, errNotNumber
	}
	return n, nil
}

// reqString is the required-field variant of optString.
func reqString(node *string) (string, error) {
	if node == nil || strings.TrimSpace(*node) == "" {
		return "", errMissing
	}
	return *node, nil
}
