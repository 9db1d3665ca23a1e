package main

import (
	"fmt"
	"log"
	"os"

	_ "askud/docs"
	"askud/internal/access"
	"askud/internal/auth"
	"askud/internal/config"
	"askud/internal/handlers"
	"askud/internal/models"
	"askud/internal/storage"
	"askud/internal/tasks"
	"askud/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/crypto/bcrypt"
)

// @Title						Система контроля доступа в лаборатории
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectDatabase()

	if err := storage.DB.AutoMigrate(
		&models.Employee{},
		&models.Laboratory{},
		&models.AccessSchedule{},
		&models.CurrentPresence{},
		&models.AccessEvent{},
	); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.InitRedis()

	cfg := config.Load()
	handlers.Init(access.NewService(storage.DB), cfg)

	seedAdmin()

	tasks.InitScheduler()

	go ws.HubInstance.Run()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/refresh", handlers.RefreshToken)
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/verify_access", handlers.VerifyAccessHandler)
		apiGroup.GET("/current_presence", handlers.CurrentPresenceHandler)
		apiGroup.GET("/laboratory_presence", handlers.LaboratoryPresenceHandler)
		apiGroup.GET("/laboratories", handlers.ListLaboratoriesHandler)
		apiGroup.GET("/laboratories/:id/ws", ws.LaboratoryWebSocketHandler)
	}

	adminGroup := r.Group("/api/admin", auth.AuthMiddleware(), auth.AdminMiddleware())
	{
		adminGroup.GET("/employees", handlers.ListEmployeesHandler)
		adminGroup.POST("/employees", handlers.CreateEmployeeHandler)
		adminGroup.GET("/employees/:id", handlers.GetEmployeeHandler)
		adminGroup.PUT("/employees/:id", handlers.UpdateEmployeeHandler)
		adminGroup.DELETE("/employees/:id", handlers.DeleteEmployeeHandler)
		adminGroup.GET("/employees/:id/access", handlers.ListAccessRulesHandler)
		adminGroup.POST("/employees/:id/access", handlers.UpsertAccessRuleHandler)
		adminGroup.DELETE("/employees/:id/access/:ruleID", handlers.DeleteAccessRuleHandler)

		adminGroup.GET("/laboratories", handlers.ListLaboratoriesAdminHandler)
		adminGroup.POST("/laboratories", handlers.CreateLaboratoryHandler)
		adminGroup.PUT("/laboratories/:id", handlers.UpdateLaboratoryHandler)
		adminGroup.DELETE("/laboratories/:id", handlers.DeleteLaboratoryHandler)

		adminGroup.GET("/events", handlers.ListEventsHandler)
		adminGroup.GET("/statistics", handlers.DashboardStatsHandler)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}

// seedAdmin создаёт учётную запись администратора при первом запуске,
// если в базе ещё нет ни одного администратора.
func seedAdmin() {
	var count int64
	storage.DB.Model(&models.Employee{}).
		Where("user_type = ?", models.UserTypeAdmin).Count(&count)
	if count > 0 {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Println("ADMIN_PASSWORD не задан, используется пароль по умолчанию — смените его!")
	}
	pin := os.Getenv("ADMIN_PIN")
	if pin == "" {
		pin = "9999"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("Ошибка хеширования пароля администратора:", err)
		return
	}

	admin := models.Employee{
		Login:        "admin",
		PasswordHash: string(hashed),
		PinCode:      pin,
		FullName:     "Администратор системы",
		IsActive:     true,
		UserType:     models.UserTypeAdmin,
	}
	if err := storage.DB.Create(&admin).Error; err != nil {
		log.Println("Ошибка создания администратора:", err)
		return
	}
	log.Println("Создана учётная запись администратора (login: admin)")
}
