package validation

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// local@domain.tld where no part contains whitespace or a second @.
	// \p{Z} and \x{FEFF} widen RE2's ASCII-only \s to the Unicode spaces browsers reject.
	looseEmailRegex = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)
)

// New returns a validator with the custom rules registered and field names
// reported by their json tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonTagName)
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("trimmed_required", TrimmedRequired)
	_ = v.RegisterValidation("trimmed_min", TrimmedMin)
	_ = v.RegisterValidation("loose_email", LooseEmail)
}

// TrimmedRequired fails on strings that are empty once surrounding whitespace is removed
func TrimmedRequired(fl validator.FieldLevel) bool {
	return TrimFormSpace(fl.Field().String()) != ""
}

// TrimmedMin checks the trimmed length against the tag parameter.
// Length is counted the way the browser form counts it, see FormLength.
func TrimmedMin(fl validator.FieldLevel) bool {
	min, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return FormLength(TrimFormSpace(fl.Field().String())) >= min
}

// TrimFormSpace strips the whitespace a browser's String.trim strips: Unicode
// space separators, BOM, line and paragraph separators, and ASCII tab, LF,
// VT, FF, CR. Unlike strings.TrimSpace it keeps U+0085 and strips U+FEFF.
func TrimFormSpace(s string) string {
	return strings.TrimFunc(s, isFormSpace)
}

func isFormSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// FormLength counts UTF-16 code units, so characters outside the BMP count twice
func FormLength(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// LooseEmail validates the simple local@domain.tld shape used by the apply form.
// The raw value is matched, so surrounding whitespace is rejected.
func LooseEmail(fl validator.FieldLevel) bool {
	return IsLooseEmail(fl.Field().String())
}

func IsLooseEmail(s string) bool {
	return looseEmailRegex.MatchString(s)
}

func jsonTagName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}
