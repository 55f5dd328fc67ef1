package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-training/pkg/backend"
)

// identifierFields lists the directory columns an alternate identifier can
// live in, tried in order.
var identifierFields = []string{"numero_control", "numero_empleado"}

// LooksLikeEmail reports whether the identifier is shaped like an email
// address. Anything else is resolved through the directory first.
func LooksLikeEmail(identifier string) bool {
	at := strings.Index(identifier, "@")
	if at <= 0 {
		return false
	}
	domain := identifier[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(identifier, " \t")
}

// numberVariants expands an employee/control number into the normalized
// forms tried during lookup: trimmed, whitespace-stripped, digits-only.
// Duplicates and empty variants are dropped while preserving order.
func numberVariants(number string) []string {
	trimmed := strings.TrimSpace(number)
	stripped := strings.Join(strings.Fields(trimmed), "")
	var digits strings.Builder
	for _, r := range stripped {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	var variants []string
	seen := make(map[string]bool)
	for _, v := range []string{trimmed, stripped, digits.String()} {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		variants = append(variants, v)
	}
	return variants
}

// ResolveIdentifierEmail maps a login identifier to the email to
// authenticate with. Email-shaped identifiers pass through untouched; others
// are looked up in the directory by exact match on the identifier columns.
func ResolveIdentifierEmail(ctx context.Context, dir backend.Directory, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if LooksLikeEmail(identifier) {
		return identifier, nil
	}
	for _, field := range identifierFields {
		user, err := dir.FindByIdentifier(ctx, field, identifier)
		if err != nil {
			if errors.Is(err, backend.ErrUserNotFound) {
				continue
			}
			return "", err
		}
		if user.Email == "" {
			return "", ErrEmployeeNumberNoEmail
		}
		return user.Email, nil
	}
	return "", ErrEmployeeNumberNotFound
}

// ResolveEmployeeEmail maps an employee/control number to an email through
// an expanding sequence of lookups: each normalized variant is tried with an
// exact match first, then a case-insensitive substring search. The first hit
// wins.
func ResolveEmployeeEmail(ctx context.Context, dir backend.Directory, number string) (string, error) {
	variants := numberVariants(number)
	if len(variants) == 0 {
		return "", ErrEmployeeNumberRequired
	}

	for _, variant := range variants {
		for _, field := range identifierFields {
			user, err := dir.FindByIdentifier(ctx, field, variant)
			if err != nil {
				if errors.Is(err, backend.ErrUserNotFound) {
					continue
				}
				return "", err
			}
			if user.Email == "" {
				return "", ErrEmployeeNumberNoEmail
			}
			return user.Email, nil
		}
	}

	for _, variant := range variants {
		for _, field := range identifierFields {
			rows, err := dir.SearchByIdentifier(ctx, field, variant)
			if err != nil {
				return "", err
			}
			if len(rows) == 0 {
				continue
			}
			if rows[0].Email == "" {
				return "", ErrEmployeeNumberNoEmail
			}
			return rows[0].Email, nil
		}
	}
	return "", ErrEmployeeNumberNotFound
}
