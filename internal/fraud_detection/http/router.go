package http

import "github.com/gin-gonic/gin"

// Register mounts every route under rg. Admin routes sit behind g.Admin and
// mutating routes behind g.Mutating.
func (h *Handler) Register(rg *gin.RouterGroup, g Guards) {
	rg.GET("/entities/types", h.EntityTypes)
	rg.GET("/entities", h.Entities)
	rg.GET("/entities/:id/neighborhood", h.Neighborhood)
	rg.GET("/pools/:role", h.EntityPool)

	rg.GET("/fraud-rings", h.FraudRings)
	rg.GET("/fraud-rings/network", h.FraudRingNetwork)
	rg.GET("/fraud-rings/:claim_id/network", h.FraudRingNeighborhood)

	det := rg.Group("/detections")
	det.GET("/runs", h.ListRuns)
	det.GET("/runs/:id", h.GetRun)
	det.GET("/runs/:id/events", h.StreamRunEvents)
	det.GET("/suspicious", h.SuspiciousCommunities)
	det.GET("/suspicious/network", h.SuspiciousNetwork)

	rg.GET("/risk/assessments", h.ListAssessments)
	rg.GET("/risk/assessments/:claim_id", h.GetAssessment)

	write := rg.Group("", guards(g.Mutating)...)
	write.POST("/detections/runs", h.StartRun)
	write.DELETE("/detections/runs/:id", h.CancelRun)
	write.POST("/claims", h.SubmitClaim)
	write.POST("/claims/preview", h.PreviewClaim)
	write.POST("/risk/assess", h.Assess)

	admin := rg.Group("/admin", guards(g.Admin)...)
	admin.GET("/stats", h.Stats)
	adminWrite := admin.Group("", guards(g.Mutating)...)
	adminWrite.POST("/generate", h.Generate)
	adminWrite.DELETE("/data", h.ClearData)
	adminWrite.DELETE("/detections", h.ClearDetections)
}

func guards(fns ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(fns))
	for _, fn := range fns {
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}
