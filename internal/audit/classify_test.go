package audit

import (
	"testing"

	"github.com/orghub/backend/internal/models"
)

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		status   int
		action   string
		expected string
	}{
		{500, "USER_VIEW", models.SeverityError},
		{503, "ORGANIZATION_DELETE", models.SeverityError}, // status wins over action
		{400, "USER_VIEW", models.SeverityWarning},
		{404, "USER_VIEW", models.SeverityWarning},
		{200, "USER_DELETE", models.SeverityWarning},
		{200, "OWNERSHIP_TRANSFER", models.SeverityWarning},
		{200, "USER_VIEW", models.SeverityInfo},
		{201, "ORGANIZATION_CREATE", models.SeverityInfo},
		{0, "", models.SeverityInfo},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			if got := SeverityFor(tt.status, tt.action); got != tt.expected {
				t.Errorf("SeverityFor(%d, %q) = %q, want %q", tt.status, tt.action, got, tt.expected)
			}
		})
	}
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		action   string
		expected string
	}{
		{"", models.CategoryBusiness},
		{"LOGIN_SUCCESS", models.CategorySecurity},
		{"LOGOUT", models.CategorySecurity},
		{"PASSWORD_CHANGE", models.CategorySecurity},
		{"SYSTEM_STARTUP", models.CategorySystem},
		{"DATABASE_MIGRATION", models.CategorySystem},
		{"SUSPICIOUS_REQUEST", models.CategorySecurity},
		{"FAILED_LOGIN", models.CategorySecurity}, // FAILED rule beats the BUSINESS fallback
		{"ORGANIZATION_UPDATE", models.CategoryBusiness},
		{"MEMBER_ROLE_UPDATE", models.CategoryBusiness},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			if got := CategoryFor(tt.action); got != tt.expected {
				t.Errorf("CategoryFor(%q) = %q, want %q", tt.action, got, tt.expected)
			}
		})
	}
}

func TestTableFor(t *testing.T) {
	tests := []struct {
		targetType string
		expected   string
	}{
		{models.TargetUser, "users"},
		{models.TargetOrganization, "organizations"},
		{"COMPANY", "organizations"},
		{models.TargetMember, "organization_members"},
		{models.TargetInvitation, "invitations"},
		{models.TargetToken, "refresh_tokens"},
		{models.TargetSystem, ""},
		{"", ""},
		{"bogus", ""},
	}
	for _, tt := range tests {
		t.Run(tt.targetType, func(t *testing.T) {
			if got := TableFor(tt.targetType); got != tt.expected {
				t.Errorf("TableFor(%q) = %q, want %q", tt.targetType, got, tt.expected)
			}
		})
	}
}
