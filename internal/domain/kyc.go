package domain

import (
	"time"

	"github.com/google/uuid"
)

// KYCDocumentType enumerates the identity documents accepted for review.
type KYCDocumentType string

const (
	KYCDocumentNationalID KYCDocumentType = "national_id"
	KYCDocumentPassport   KYCDocumentType = "passport"
	KYCDocumentResidence  KYCDocumentType = "residence_permit"
)

func (t KYCDocumentType) Valid() bool {
	switch t {
	case KYCDocumentNationalID, KYCDocumentPassport, KYCDocumentResidence:
		return true
	}
	return false
}

// KYCSubmission is a user's identity verification request awaiting admin review.
type KYCSubmission struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	DocumentType    KYCDocumentType `json:"document_type" db:"document_type"`
	DocumentNumber  string          `json:"document_number" db:"document_number"`
	FullName        string          `json:"full_name" db:"full_name"`
	DateOfBirth     time.Time       `json:"date_of_birth" db:"date_of_birth"`
	Status          KYCStatus       `json:"status" db:"status"`
	RejectionReason *string         `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ReviewedBy      *uuid.UUID      `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}
