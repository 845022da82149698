package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumeBuilder/internal/ai"
	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/auth"
	"resumeBuilder/internal/config"
	"resumeBuilder/internal/export"
	"resumeBuilder/internal/importer"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/store"
)

// Deps 汇总路由需要的依赖。
type Deps struct {
	DB       *gorm.DB
	Redis    redis.UniversalClient
	Auth     *auth.AuthService
	Store    *store.Store
	Registry *render.Registry
	Exporter *export.Service
	Importer *importer.Importer
	Text     *ai.TextService
	Queue    TaskEnqueuer
	Objects  ObjectStore
	Scanner  Scanner
	Logger   *slog.Logger
	Config   *config.Config
}

// ObjectStore 汇总 API 使用的对象存储能力，由 *storage.Client 实现。
type ObjectStore interface {
	ObjectUploader
	Presigner
	PrefixRemover
}

// RegisterRoutes 注册 /v1 下的全部路由。
func RegisterRoutes(router *gin.Engine, d Deps) error {
	customizationHandler, err := NewCustomizationHandler(d.Store, d.Registry)
	if err != nil {
		return err
	}
	resumeHandler := NewResumeHandler(d.Store, WithExportCleanup(d.Objects))
	sectionHandler := NewSectionHandler(d.Store)
	templateHandler := NewTemplateHandler(d.Registry, d.Exporter)
	exportHandler := NewExportHandler(d.Store, d.Exporter, d.Queue, d.Objects, d.Config.MinIO.PresignTTL)
	importHandler := NewImportHandler(d.Importer, d.Scanner, d.Config.Upload.MaxImportBytes)
	aiHandler := NewAIHandler(d.Text, d.Store)
	uploadHandler := NewUploadHandler(d.Objects, d.Scanner, d.Config.Upload.MaxImageBytes)
	authHandler := NewAuthHandler(d.DB, d.Auth, d.Redis, d.Logger, d.Config.Auth)
	wsHandler := NewWsHandler(d.Redis, d.Auth, d.Logger, d.Config.API.Origins())
	authMiddleware := middleware.AuthMiddleware(d.Auth)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)
		v1.GET("/templates", templateHandler.ListTemplates)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
			authGroup.POST("/change-password", authMiddleware, authHandler.ChangePassword)
		}

		// 改密与退出不经过改密闸门。
		protected := v1.Group("")
		protected.Use(authMiddleware, middleware.RequirePasswordChangeCompletedMiddleware())
		registerResumeRoutes(protected, resumeHandler, sectionHandler, customizationHandler, templateHandler, exportHandler, aiHandler)

		protected.POST("/uploads", uploadHandler.UploadImage)
		protected.POST("/import", importHandler.Import)
		protected.POST("/ai/generate", aiHandler.Generate)
		protected.POST("/ai/experience-description", aiHandler.DescribeExperience)
	}
	return nil
}

func registerResumeRoutes(
	g *gin.RouterGroup,
	resumes *ResumeHandler,
	sections *SectionHandler,
	customizations *CustomizationHandler,
	templates *TemplateHandler,
	exports *ExportHandler,
	aiText *AIHandler,
) {
	g.GET("/resumes", resumes.ListResumes)
	g.POST("/resumes", resumes.CreateResume)

	r := g.Group("/resumes/:id")
	r.GET("", resumes.GetResume)
	r.PATCH("", resumes.RenameResume)
	r.DELETE("", resumes.DeleteResume)

	r.GET("/personal-info", sections.GetPersonalInfo)
	r.POST("/personal-info", sections.CreatePersonalInfo)
	r.PUT("/personal-info", sections.UpdatePersonalInfo)

	r.GET("/experiences", sections.ListExperiences)
	r.POST("/experiences", sections.CreateExperience)
	r.PUT("/experiences/:itemID", sections.UpdateExperience)
	r.DELETE("/experiences/:itemID", sections.DeleteExperience)

	r.GET("/educations", sections.ListEducations)
	r.POST("/educations", sections.CreateEducation)
	r.PUT("/educations/:itemID", sections.UpdateEducation)
	r.DELETE("/educations/:itemID", sections.DeleteEducation)

	r.GET("/skills", sections.ListSkills)
	r.POST("/skills", sections.CreateSkill)
	r.PUT("/skills/:itemID", sections.UpdateSkill)
	r.DELETE("/skills/:itemID", sections.DeleteSkill)

	r.GET("/customization", customizations.GetCustomization)
	r.PUT("/customization", customizations.PutCustomization)

	r.GET("/preview", templates.Preview)
	r.GET("/export/pdf", exports.DownloadPDF)
	r.GET("/export/docx", exports.DownloadDOCX)
	r.POST("/exports", exports.EnqueueExport)
	r.GET("/exports/latest", exports.LatestExport)

	r.POST("/ai/summary", aiText.Summarize)
}
