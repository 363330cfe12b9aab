package dynamo

// DynamoDB attribute names used in update and condition expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldOTP          = "otp"
	fieldOTPIssuedAt  = "otp_issued_at"
	fieldOTPAttempts  = "otp_attempts"
	fieldIsVerified   = "is_verified"
	fieldStatus       = "status"
	fieldActivatedAt  = "activated_at"
	fieldUpdatedAt    = "updated_at"
	fieldEmailGuard   = "email"
	fieldGuardOwnerID = "owner_id"
)
