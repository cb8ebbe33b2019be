package audit

import (
	"strings"

	"github.com/orghub/backend/internal/models"
)

// SeverityFor derives entry severity from the response status and the
// action name. The status rules take precedence over the name rule.
func SeverityFor(statusCode int, action string) string {
	switch {
	case statusCode >= 500:
		return models.SeverityError
	case statusCode >= 400:
		return models.SeverityWarning
	}
	if strings.Contains(action, "DELETE") || strings.Contains(action, "TRANSFER") {
		return models.SeverityWarning
	}
	return models.SeverityInfo
}

// CategoryFor maps an action name onto a category. Rule order matters;
// later rules are fallbacks only.
func CategoryFor(action string) string {
	if action == "" {
		return models.CategoryBusiness
	}
	switch {
	case strings.Contains(action, "LOGIN"),
		strings.Contains(action, "LOGOUT"),
		strings.Contains(action, "PASSWORD"):
		return models.CategorySecurity
	case strings.Contains(action, "SYSTEM"),
		strings.Contains(action, "DATABASE"):
		return models.CategorySystem
	case strings.Contains(action, "SUSPICIOUS"),
		strings.Contains(action, "FAILED"):
		return models.CategorySecurity
	default:
		return models.CategoryBusiness
	}
}

var targetTables = map[string]string{
	models.TargetUser:         "users",
	"COMPANY":                 "organizations",
	models.TargetOrganization: "organizations",
	models.TargetMember:       "organization_members",
	models.TargetInvitation:   "invitations",
	models.TargetToken:        "refresh_tokens",
}

// TableFor resolves a target type to its storage table, "" when the
// type has no table (SYSTEM, OTHER, unknown).
func TableFor(targetType string) string {
	return targetTables[targetType]
}
