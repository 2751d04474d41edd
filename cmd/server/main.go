package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bimakw/pmo/internal/config"
	"github.com/bimakw/pmo/internal/handler"
	"github.com/bimakw/pmo/internal/model"
	"github.com/bimakw/pmo/internal/notify"
	"github.com/bimakw/pmo/internal/router"
	"github.com/bimakw/pmo/internal/service"
	"github.com/bimakw/pmo/internal/sse"
	"github.com/bimakw/pmo/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// Load config
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.Team{},
		&model.TeamMember{},
		&model.Project{},
		&model.ProjectMember{},
		&model.Milestone{},
		&model.Task{},
		&model.Comment{},
		&model.Tag{},
		&model.TaskTag{},
		&model.TimeEntry{},
		&model.Attachment{},
		&model.ActivityEvent{},
		&model.Notification{},
	); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Core components
	st := store.New(db)
	hub := sse.NewHub(rdb, time.Duration(cfg.Stream.ReplayTTLMinutes)*time.Minute)
	trigger := notify.NewTrigger(db, notify.DefaultPolicy{})
	trigger.Start()
	defer trigger.Stop()

	// Every committed mutation fans out to the notification trigger and
	// the live activity streams.
	st.AddHook(trigger.Enqueue)
	st.AddHook(hub.Publish)

	// Services
	userService := service.NewUserService(st)
	projectService := service.NewProjectService(st)
	teamService := service.NewTeamService(st)
	milestoneService := service.NewMilestoneService(st)
	taskService := service.NewTaskService(st, cfg.Ledger.AutofillActualHours)
	ledgerService := service.NewTimeLedgerService(st)
	tagService := service.NewTagService(st)
	attachmentService := service.NewAttachmentService(st)
	activityService := service.NewActivityService(st)
	notificationService := service.NewNotificationService(st)

	// Handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	projectHandler := handler.NewProjectHandler(projectService, ledgerService)
	milestoneHandler := handler.NewMilestoneHandler(milestoneService)
	taskHandler := handler.NewTaskHandler(taskService, ledgerService)
	teamHandler := handler.NewTeamHandler(teamService)
	tagHandler := handler.NewTagHandler(tagService)
	timeEntryHandler := handler.NewTimeEntryHandler(ledgerService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService, cfg.Storage.UploadDir)
	activityHandler := handler.NewActivityHandler(activityService, projectService, hub)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	dashboardHandler := handler.NewDashboardHandler(db)

	// Router
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.Default()
	router.Setup(r, router.Deps{
		DB:                  db,
		JWTSecret:           cfg.JWT.Secret,
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		ProjectHandler:      projectHandler,
		MilestoneHandler:    milestoneHandler,
		TaskHandler:         taskHandler,
		TeamHandler:         teamHandler,
		TagHandler:          tagHandler,
		TimeEntryHandler:    timeEntryHandler,
		AttachmentHandler:   attachmentHandler,
		ActivityHandler:     activityHandler,
		NotificationHandler: notificationHandler,
		DashboardHandler:    dashboardHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
