package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/repository"
	"portfolio-backend/internal/service/audit"
	"portfolio-backend/internal/service/auth"
	"portfolio-backend/internal/service/checkout"
	"portfolio-backend/internal/service/email"
	"portfolio-backend/internal/service/media"
	"portfolio-backend/internal/service/review"
)

type Services struct {
	Auth     auth.Service
	Review   review.Service
	Media    media.Service
	Email    email.Service
	Checkout checkout.Service
	Audit    audit.Service
}

func NewServices(repos *repository.Repositories, redis *redis.Client, minioClient *minio.Client, cfg *config.Config) *Services {
	emailService := email.NewService(cfg)
	authService := auth.NewService(repos.User, repos.Session, emailService, cfg)
	mediaService := media.NewService(repos.Media, repos.Comment, minioClient, redis, cfg)
	auditService := audit.NewService(repos.AuditLog)
	checkoutService := checkout.NewService(cfg)

	reviewService := review.NewService(repos.Comment, repos.User, repos.AuditLog, redis)
	reviewService.SetEmailService(emailService)
	reviewService.SetMediaService(mediaService)

	return &Services{
		Auth:     authService,
		Review:   reviewService,
		Media:    mediaService,
		Email:    emailService,
		Checkout: checkoutService,
		Audit:    auditService,
	}
}
