package cache

func DashboardReportKey(userID string) string {
	return "reports:dashboard:v1:user=" + userID
}
