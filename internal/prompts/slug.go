package prompts

import (
	"strings"
	"unicode"
)

const maxSlugLen = 96

// Slugify derives the slug for a prompt name: lowercase letters and digits
// of any script (with their combining marks), every other run of characters
// collapsed to a single dash. Slugs are cut to maxSlugLen runes. Names
// without a letter or digit in any script return ErrInvalidSlug.
func Slugify(name string) (string, error) {
	var b strings.Builder
	n := 0
	dash := false

	for _, r := range strings.ToLower(name) {
		if !slugRune(r, n > 0 && !dash) {
			dash = true
			continue
		}
		if dash && n > 0 {
			if n+1 >= maxSlugLen {
				break
			}
			b.WriteByte('-')
			n++
		}
		dash = false
		if n >= maxSlugLen {
			break
		}
		b.WriteRune(r)
		n++
	}

	if n == 0 {
		return "", ErrInvalidSlug
	}
	return b.String(), nil
}

func slugRune(r rune, inWord bool) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return inWord && unicode.IsMark(r)
}
