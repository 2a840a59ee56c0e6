package models

import "github.com/google/uuid"

type SignUpRequest struct {
	FirstName   string   `json:"first_name" binding:"required,max=100" example:"Jane"`
	LastName    string   `json:"last_name" binding:"required,max=100" example:"Doe"`
	Email       string   `json:"email" binding:"required,email" example:"a@x.com"`
	PhoneNumber string   `json:"phone_number" binding:"required,phone" example:"0780000000"`
	NationalID  string   `json:"national_id" binding:"required,max=32" example:"1199880012345678"`
	Gender      Gender   `json:"gender" binding:"required,oneof=MALE FEMALE OTHER" example:"FEMALE"`
	Password    string   `json:"password" binding:"required,password" example:"Abcd1234!"`
	Role        RoleName `json:"role" binding:"omitempty,oneof=ADMIN STANDARD" example:"STANDARD"`
}

type UpdateUserRequest struct {
	FirstName   string `json:"first_name" binding:"required,max=100"`
	LastName    string `json:"last_name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"required,phone"`
	NationalID  string `json:"national_id" binding:"required,max=32"`
	Gender      Gender `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email" example:"a@x.com"`
	Code  string `json:"code" binding:"required" example:"123456"`
}

type RejectionRequest struct {
	RejectionMessage string `json:"rejection_message" binding:"required" example:"National id does not match"`
}

type ApproveManyRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required,min=1"`
}

type SendUsersEmailRequest struct {
	Subject   string     `json:"subject" binding:"required" example:"Scheduled maintenance"`
	Content   string     `json:"content" binding:"required" example:"The service will be unavailable on Sunday."`
	UserTypes []RoleName `json:"user_types" binding:"omitempty,dive,oneof=ADMIN STANDARD"`
}

type RejectManyRequest struct {
	UserIDs          []uuid.UUID `json:"user_ids" binding:"required,min=1"`
	RejectionMessage string      `json:"rejection_message" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"a@x.com"`
	Password string `json:"password" binding:"required" example:"Abcd1234!"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      *User  `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,password"`
}

type CreateNotificationRequest struct {
	UserID  uuid.UUID        `json:"user_id" binding:"required"`
	Message string           `json:"message" binding:"required,max=255"`
	Type    NotificationType `json:"type" binding:"required,oneof=USER_AWAITS_CONFIRMATION GENERAL"`
}

type UserSearchQuery struct {
	Status UserStatus `form:"status" binding:"required,oneof=WAIT_EMAIL_VERIFICATION PENDING ACTIVE REJECTED DEACTIVATED"`
	Name   string     `form:"name"`
	Gender Gender     `form:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	Role   RoleName   `form:"role" binding:"omitempty,oneof=ADMIN STANDARD"`
}
