// internal/utils/slug.go
package utils

import (
	"errors"
	"fmt"

	"github.com/gosimple/slug"
)

// ErrEmptySlug is returned when a name produces no usable slug characters.
var ErrEmptySlug = errors.New("slug is empty")

// Slugify turns a display name into a URL slug ("Café Crème 2" -> "cafe-creme-2").
func Slugify(name string) string {
	return slug.Make(name)
}

// UniqueSlug returns base unchanged when free, otherwise the first numbered
// candidate (base-2, base-3, ...) the taken callback reports as free.
func UniqueSlug(base string, taken func(candidate string) (bool, error)) (string, error) {
	if base == "" {
		return "", ErrEmptySlug
	}

	candidate := base
	for i := 2; i < 1000; i++ {
		inUse, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !inUse {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}

	return "", fmt.Errorf("could not find a free slug for %q", base)
}
