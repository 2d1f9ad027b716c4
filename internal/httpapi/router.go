package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// registerRoutes wires every route onto e. Handlers are grouped per
// resource in their own file, all methods on *api.
func registerRoutes(e *echo.Echo, deps Deps) {
	h := &api{d: deps}

	e.GET("/health", func(c echo.Context) error { return c.JSON(http.StatusOK, map[string]string{"status": "ok"}) })

	e.POST("/login", h.login, deps.LoginLimiter.Middleware(1, 5))
	e.POST("/change-password", h.changePassword)

	users := e.Group("/users")
	users.GET("", h.listUsers)
	users.POST("", h.createUser)
	users.GET("/:username", h.getUser)
	users.DELETE("/:username", h.deleteUser)

	projectsGroup := e.Group("/projects")
	projectsGroup.GET("", h.listProjects)
	projectsGroup.POST("", h.createProject)

	p := e.Group("/projects/:pid")
	p.GET("", h.getProject, deps.requireRead())
	p.PATCH("", h.updateProject, deps.requireManageSettings())
	p.DELETE("", h.deleteProject, deps.requireManageUsers())

	p.GET("/members", h.listMembers, deps.requireRead())
	p.POST("/members", h.addMember, deps.requireManageUsers())
	p.PATCH("/members/:username", h.changeMemberRole, deps.requireManageUsers())
	p.DELETE("/members/:username", h.removeMember, deps.requireManageUsers())

	p.GET("/folders", h.listFolders, deps.requireRead())
	p.POST("/folders", h.createFolder, deps.requireUpload())
	p.PATCH("/folders/:fid", h.renameFolder, deps.requireUpload())
	p.DELETE("/folders/:fid", h.deleteFolder, deps.requireUpload())

	p.GET("/documents", h.listDocuments, deps.requireRead())
	p.POST("/documents", h.uploadDocument, deps.requireUpload())
	p.GET("/documents/:did", h.getDocument, deps.requireRead())
	p.PATCH("/documents/:did", h.renameDocument, deps.requireUpload())
	p.DELETE("/documents/:did", h.deleteDocument, deps.requireUpload())
	p.GET("/documents/:did/preview", h.previewDocument, deps.requireRead())
	p.GET("/documents/:did/download", h.downloadDocument, deps.requireRead())
	p.GET("/documents/:did/versions", h.listDocumentVersions, deps.requireRead())
	p.POST("/documents/:did/move", h.moveDocument, deps.requireUpload())
	p.POST("/documents/:did/rename", h.renameDocument, deps.requireUpload())
	p.GET("/documents/:did/content", h.documentContent, deps.requireRead())

	p.GET("/config-summary", h.configSummary, deps.requireRead())
	p.GET("/summary-metrics", h.summaryMetrics, deps.requireRead())
	p.GET("/devices/:name", h.getDevice, deps.requireRead())
	p.DELETE("/devices/:name", h.deleteDevice, deps.requireDeleteDevice())
	p.GET("/devices/:name/image", h.getDeviceImage, deps.requireRead())
	p.PUT("/devices/:name/image", h.putDeviceImage, deps.requireUpload())
	p.GET("/devices/:name/configs", h.deviceConfigs, deps.requireRead())

	p.POST("/analyze/overview", h.submitProjectAnalysis(kindProjectOverview), deps.requireUpload())
	p.POST("/analyze/recommendations", h.submitProjectAnalysis(kindProjectRecommendations), deps.requireUpload())
	p.POST("/analyze/topology", h.submitProjectAnalysis(kindProjectTopology), deps.requireUpload())
	p.GET("/analyze/overview", h.getProjectAnalysis(kindProjectOverview), deps.requireRead())
	p.GET("/analyze/recommendations", h.getProjectAnalysis(kindProjectRecommendations), deps.requireRead())
	p.GET("/analyze/topology", h.getProjectAnalysis(kindProjectTopology), deps.requireRead())

	p.POST("/devices/:name/analyze/overview", h.submitDeviceAnalysis(kindDeviceOverview), deps.requireUpload())
	p.POST("/devices/:name/analyze/recommendations", h.submitDeviceAnalysis(kindDeviceRecommendations), deps.requireUpload())
	p.POST("/devices/:name/analyze/config-drift", h.submitDeviceAnalysis(kindDeviceConfigDrift), deps.requireUpload())
	p.GET("/devices/:name/analyze/overview", h.getDeviceAnalysis(kindDeviceOverview), deps.requireRead())
	p.GET("/devices/:name/analyze/recommendations", h.getDeviceAnalysis(kindDeviceRecommendations), deps.requireRead())
	p.GET("/devices/:name/analyze/config-drift", h.getDeviceAnalysis(kindDeviceConfigDrift), deps.requireRead())

	p.POST("/analysis/verify", h.verifyAnalysis, deps.requireUpload())
	p.GET("/analysis/full", h.analysisFull, deps.requireRead())

	p.GET("/topology", h.getTopology, deps.requireRead())
	p.GET("/network-topology", h.getNetworkTopology, deps.requireRead())
	p.PUT("/topology/layout", h.saveTopologyLayout, deps.requireUpload())

	p.GET("/options", h.listOptions, deps.requireRead())
	p.POST("/options", h.addOption, deps.requireUpload())
}
