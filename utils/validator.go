package utils

import (
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	onlyCharactersRe = regexp.MustCompile(`^[A-Za-z ]+$`)
	emailRe          = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phoneRe          = regexp.MustCompile(`^(?:\+91|91|0)?[6-9][0-9]{9}$`)
	pincodeRe        = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	numberRe         = regexp.MustCompile(`^[0-9]+$`)
	priceRe          = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?$`)
	letterRe         = regexp.MustCompile(`[A-Za-z]`)
	digitRe          = regexp.MustCompile(`[0-9]`)
)

var imageTypes = []string{"image/jpeg", "image/jpg", "image/png"}

// IsValidInputValue reports whether s has any non-space content.
func IsValidInputValue(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidOnlyCharacters accepts letters and spaces only.
func IsValidOnlyCharacters(s string) bool {
	return onlyCharactersRe.MatchString(strings.TrimSpace(s))
}

func IsValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// IsValidPhone accepts an Indian mobile number with an optional +91, 91 or 0 prefix.
func IsValidPhone(s string) bool {
	return phoneRe.MatchString(strings.TrimSpace(s))
}

// IsValidPassword requires 8 to 15 characters with at least one letter and one digit.
func IsValidPassword(s string) bool {
	if len(s) < 8 || len(s) > 15 {
		return false
	}
	return letterRe.MatchString(s) && digitRe.MatchString(s)
}

func IsValidNumber(s string) bool {
	return numberRe.MatchString(strings.TrimSpace(s))
}

// IsValidPincode accepts six digits not starting with zero.
func IsValidPincode(s string) bool {
	return pincodeRe.MatchString(strings.TrimSpace(s))
}

// IsValidPrice accepts a positive amount with at most two decimal places.
func IsValidPrice(s string) bool {
	s = strings.TrimSpace(s)
	if !priceRe.MatchString(s) {
		return false
	}
	d, err := decimal.NewFromString(s)
	return err == nil && d.IsPositive()
}

func IsValidObjectID(s string) bool {
	return primitive.IsValidObjectID(s)
}

// IsValidImageType accepts jpeg, jpg and png MIME types.
func IsValidImageType(mime string) bool {
	return slices.Contains(imageTypes, strings.ToLower(strings.TrimSpace(mime)))
}

// IsValidSize reports whether size is one of the catalog sizes.
func IsValidSize(size string, allowed []string) bool {
	return slices.Contains(allowed, size)
}

// IsValidBool accepts the strings "true" and "false".
func IsValidBool(s string) bool {
	return s == "true" || s == "false"
}
