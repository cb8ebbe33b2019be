package dto

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	Code string `json:"code"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type CreateOrganizationRequest struct {
	Name        string  `json:"name"`
	Website     *string `json:"website,omitempty"`
	Description *string `json:"description,omitempty"`
}

type UpdateOrganizationRequest struct {
	Name        string  `json:"name"`
	Website     *string `json:"website,omitempty"`
	Description *string `json:"description,omitempty"`
}

type TransferOwnershipRequest struct {
	NewOwnerUserID string `json:"new_owner_user_id"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

type CreateInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}
