package enums

type AuditStatus string

const (
	AuditStatusPending   AuditStatus = "pending"
	AuditStatusReviewing AuditStatus = "reviewing"
	AuditStatusApproved  AuditStatus = "approved"
	AuditStatusRejected  AuditStatus = "rejected"
)

func ParseAuditStatus(value string) (AuditStatus, bool) {
	switch AuditStatus(value) {
	case AuditStatusPending, AuditStatusReviewing, AuditStatusApproved, AuditStatusRejected:
		return AuditStatus(value), true
	default:
		return "", false
	}
}
