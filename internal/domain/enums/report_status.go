package enums

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusProcessed ReportStatus = "processed"
	ReportStatusRejected  ReportStatus = "rejected"
)

func ParseReportStatus(value string) (ReportStatus, bool) {
	switch ReportStatus(value) {
	case ReportStatusPending, ReportStatusProcessed, ReportStatusRejected:
		return ReportStatus(value), true
	default:
		return "", false
	}
}
