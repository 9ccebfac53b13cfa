package dto

// ── 月结报表模块 DTO ──

// GenerateReportRequest 生成月结报表包请求
// sections 取值见固定目录：ar_aging | claims_status | denials | payments | productivity
type GenerateReportRequest struct {
	Year     int      `json:"year"     binding:"required,min=2000,max=2100"`
	Month    int      `json:"month"    binding:"required,min=1,max=12"`
	Sections []string `json:"sections" binding:"required,dive,oneof=ar_aging claims_status denials payments productivity"`
}
