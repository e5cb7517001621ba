package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/authz"
	"github.com/salvaalejos/ceitm-web/internal/handler"
	"github.com/salvaalejos/ceitm-web/internal/middleware"
	"github.com/salvaalejos/ceitm-web/internal/repository"
	"github.com/salvaalejos/ceitm-web/internal/service"
	"github.com/salvaalejos/ceitm-web/pkg/config"
)

type handlerSet struct {
	auth         *handler.AuthHandler
	users        *handler.UserHandler
	careers      *handler.CareerHandler
	students     *handler.StudentHandler
	scholarships *handler.ScholarshipHandler
	applications *handler.ApplicationHandler
	complaints   *handler.ComplaintHandler
	campusMap    *handler.MapHandler
	news         *handler.NewsHandler
	documents    *handler.DocumentHandler
	convenios    *handler.ConvenioHandler
	shifts       *handler.ShiftHandler
	sanctions    *handler.SanctionHandler
	audit        *handler.AuditHandler
	uploads      *handler.UploadHandler
	metrics      *handler.MetricsHandler
}

func registerRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h *handlerSet,
	authSvc *service.AuthService,
	metrics *service.MetricsService,
	cacheRepo *repository.CacheRepository,
	logr *zap.Logger,
) {
	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	api.Use(middleware.Metrics(metrics))

	submitLimit := middleware.RateLimit(cacheRepo, cfg.RateLimit, "submissions", logr)

	public := api.Group("/public")
	{
		public.GET("/team", h.users.Team)

		public.POST("/applications", submitLimit, h.applications.Submit)
		public.PUT("/applications/:id", submitLimit, h.applications.Resubmit)
		public.GET("/applications/track/:controlNumber", h.applications.Track)

		public.POST("/complaints", submitLimit, h.complaints.Create)
		public.GET("/complaints/:code", h.complaints.Track)

		public.GET("/news", h.news.ListPublic)
		public.GET("/news/search", h.news.Search)
		public.GET("/news/:slug", h.news.GetBySlug)

		public.GET("/map/buildings", h.campusMap.ListBuildings)
		public.GET("/map/buildings/:id", h.campusMap.GetBuilding)
		public.GET("/map/search", h.campusMap.Search)

		public.GET("/documents", h.documents.ListPublic)

		public.GET("/convenios", h.convenios.ListPublic)
		public.GET("/convenios/:id", h.convenios.Get)
	}

	api.GET("/careers", h.careers.List)
	api.GET("/careers/:id", h.careers.Get)
	api.GET("/scholarships", h.scholarships.List)
	api.GET("/scholarships/:id", h.scholarships.Get)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.auth.Login)
		auth.POST("/refresh", h.auth.Refresh)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.POST("/auth/logout", h.auth.Logout)
		protected.GET("/auth/me", h.auth.Me)
		protected.PUT("/auth/password", h.auth.ChangePassword)

		protected.GET("/users", middleware.Authorize(authz.ResourceUsers, authz.ActionRead), h.users.List)
		protected.GET("/users/:id", middleware.Authorize(authz.ResourceUsers, authz.ActionRead), h.users.Get)
		protected.POST("/users", middleware.Authorize(authz.ResourceUsers, authz.ActionCreate), h.users.Create)
		protected.PUT("/users/me", h.users.UpdateProfile)
		protected.PUT("/users/:id", middleware.Authorize(authz.ResourceUsers, authz.ActionUpdate), h.users.Update)
		protected.DELETE("/users/:id", middleware.Authorize(authz.ResourceUsers, authz.ActionDelete), h.users.Deactivate)

		protected.POST("/careers", middleware.Authorize(authz.ResourceCareers, authz.ActionCreate), h.careers.Create)
		protected.PUT("/careers/:id", middleware.Authorize(authz.ResourceCareers, authz.ActionUpdate), h.careers.Update)

		protected.POST("/scholarships", middleware.Authorize(authz.ResourceScholarships, authz.ActionCreate), h.scholarships.Create)
		protected.PUT("/scholarships/:id", middleware.Authorize(authz.ResourceScholarships, authz.ActionUpdate), h.scholarships.Update)
		protected.DELETE("/scholarships/:id", middleware.Authorize(authz.ResourceScholarships, authz.ActionDelete), h.scholarships.Deactivate)
		protected.GET("/scholarships/:id/quotas", middleware.Authorize(authz.ResourceScholarships, authz.ActionRead), h.scholarships.Quotas)
		protected.PUT("/scholarships/:id/quotas", middleware.Authorize(authz.ResourceScholarships, authz.ActionUpdate), h.scholarships.SetQuota)

		protected.GET("/applications", middleware.Authorize(authz.ResourceApplications, authz.ActionRead), h.applications.List)
		protected.GET("/applications/export", middleware.Authorize(authz.ResourceApplications, authz.ActionExport), h.applications.ExportCSV)
		protected.GET("/applications/:id", middleware.Authorize(authz.ResourceApplications, authz.ActionRead), h.applications.Get)
		protected.PUT("/applications/:id/status", middleware.Authorize(authz.ResourceApplications, authz.ActionUpdate), h.applications.Transition)
		protected.GET("/applications/:id/pdf", middleware.Authorize(authz.ResourceApplications, authz.ActionExport), h.applications.ExportPDF)

		protected.GET("/students", middleware.Authorize(authz.ResourceStudents, authz.ActionRead), h.students.ListHolders)
		protected.GET("/students/:controlNumber/history", middleware.Authorize(authz.ResourceStudents, authz.ActionRead), h.students.History)
		protected.PUT("/students/:controlNumber/blacklist", middleware.Authorize(authz.ResourceStudents, authz.ActionUpdate), h.students.SetBlacklist)

		protected.GET("/complaints", middleware.Authorize(authz.ResourceComplaints, authz.ActionRead), h.complaints.List)
		protected.GET("/complaints/:id", middleware.Authorize(authz.ResourceComplaints, authz.ActionRead), h.complaints.Get)
		protected.PUT("/complaints/:id/resolve", middleware.Authorize(authz.ResourceComplaints, authz.ActionResolve), h.complaints.Resolve)
		protected.DELETE("/complaints/:id", middleware.Authorize(authz.ResourceComplaints, authz.ActionDelete), h.complaints.Delete)

		protected.POST("/map/buildings", middleware.Authorize(authz.ResourceMap, authz.ActionCreate), h.campusMap.CreateBuilding)
		protected.PUT("/map/buildings/:id", middleware.Authorize(authz.ResourceMap, authz.ActionUpdate), h.campusMap.UpdateBuilding)
		protected.DELETE("/map/buildings/:id", middleware.Authorize(authz.ResourceMap, authz.ActionDelete), h.campusMap.DeleteBuilding)
		protected.POST("/map/buildings/:id/rooms", middleware.Authorize(authz.ResourceMap, authz.ActionCreate), h.campusMap.AddRoom)
		protected.DELETE("/map/rooms/:roomId", middleware.Authorize(authz.ResourceMap, authz.ActionDelete), h.campusMap.DeleteRoom)

		protected.GET("/news", middleware.Authorize(authz.ResourceNews, authz.ActionRead), h.news.List)
		protected.POST("/news", middleware.Authorize(authz.ResourceNews, authz.ActionCreate), h.news.Create)
		protected.PUT("/news/:id", middleware.Authorize(authz.ResourceNews, authz.ActionUpdate), h.news.Update)
		protected.DELETE("/news/:id", middleware.Authorize(authz.ResourceNews, authz.ActionDelete), h.news.Delete)

		protected.GET("/documents", middleware.Authorize(authz.ResourceDocuments, authz.ActionRead), h.documents.List)
		protected.GET("/documents/:id", middleware.Authorize(authz.ResourceDocuments, authz.ActionRead), h.documents.Get)
		protected.POST("/documents", middleware.Authorize(authz.ResourceDocuments, authz.ActionCreate), h.documents.Create)
		protected.PUT("/documents/:id", middleware.Authorize(authz.ResourceDocuments, authz.ActionUpdate), h.documents.Update)
		protected.DELETE("/documents/:id", middleware.Authorize(authz.ResourceDocuments, authz.ActionDelete), h.documents.Delete)

		protected.GET("/convenios", middleware.Authorize(authz.ResourceConvenios, authz.ActionRead), h.convenios.List)
		protected.POST("/convenios", middleware.Authorize(authz.ResourceConvenios, authz.ActionCreate), h.convenios.Create)
		protected.PUT("/convenios/:id", middleware.Authorize(authz.ResourceConvenios, authz.ActionUpdate), h.convenios.Update)
		protected.DELETE("/convenios/:id", middleware.Authorize(authz.ResourceConvenios, authz.ActionDelete), h.convenios.Delete)

		protected.GET("/shifts", middleware.Authorize(authz.ResourceShifts, authz.ActionRead), h.shifts.Week)
		protected.GET("/shifts/mine", middleware.Authorize(authz.ResourceShifts, authz.ActionRead), h.shifts.Mine)
		protected.POST("/shifts", middleware.Authorize(authz.ResourceShifts, authz.ActionCreate), h.shifts.Assign)
		protected.DELETE("/shifts/:id", middleware.Authorize(authz.ResourceShifts, authz.ActionDelete), h.shifts.Release)

		protected.GET("/sanctions/mine", h.sanctions.Mine)
		protected.GET("/sanctions/user/:userId", middleware.Authorize(authz.ResourceSanctions, authz.ActionRead), h.sanctions.ListForUser)
		protected.POST("/sanctions", middleware.Authorize(authz.ResourceSanctions, authz.ActionCreate), h.sanctions.Create)
		protected.PATCH("/sanctions/:id/settle", middleware.Authorize(authz.ResourceSanctions, authz.ActionUpdate), h.sanctions.Settle)
		protected.DELETE("/sanctions/:id", middleware.Authorize(authz.ResourceSanctions, authz.ActionDelete), h.sanctions.Delete)

		protected.GET("/audit", middleware.Authorize(authz.ResourceAudit, authz.ActionRead), h.audit.List)

		protected.POST("/uploads/images", h.uploads.UploadImage)
		protected.POST("/uploads/files", h.uploads.UploadFile)
	}
}
