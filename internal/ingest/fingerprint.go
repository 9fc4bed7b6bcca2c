package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/nutridex/backend/internal/nutrition"
)

// Fingerprint derives the content hash that identifies a nutrient record for
// deduplication. It covers, in order: food name, brand name, serving unit,
// serving quantity, UPC and the nutrition-database number. Each field is
// trimmed and lowercased, with absent values treated as empty. Fields are
// length-prefixed before hashing so adjacent values can never be confused
// (["ab",""] and ["a","b"] must not collide).
func Fingerprint(f nutrition.Food) string {
	fields := []string{
		normalizeField(strValue(f.FoodName)),
		normalizeField(strValue(f.BrandName)),
		normalizeField(strValue(f.ServingUnit)),
		normalizeField(floatValue(f.ServingQty)),
		normalizeField(strValue(f.UPC)),
		normalizeField(intValue(f.NdbNo)),
	}

	var sb strings.Builder
	for _, field := range fields {
		sb.WriteString(strconv.Itoa(len(field)))
		sb.WriteByte(':')
		sb.WriteString(field)
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func normalizeField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatValue(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func intValue(i *int64) string {
	if i == nil {
		return ""
	}
	return strconv.FormatInt(*i, 10)
}
