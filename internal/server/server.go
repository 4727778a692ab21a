package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/evermore-app/evermore/internal/auth"
	authdomain "github.com/evermore-app/evermore/internal/auth/domain"
	"github.com/evermore-app/evermore/internal/auth/session"
	"github.com/evermore-app/evermore/internal/config"
	"github.com/evermore-app/evermore/internal/guest"
	guestdomain "github.com/evermore-app/evermore/internal/guest/domain"
	"github.com/evermore-app/evermore/internal/identity"
	"github.com/evermore-app/evermore/internal/invitation"
	invitationdomain "github.com/evermore-app/evermore/internal/invitation/domain"
	"github.com/evermore-app/evermore/internal/media"
	mediadomain "github.com/evermore-app/evermore/internal/media/domain"
	"github.com/evermore-app/evermore/internal/providers/email"
	"github.com/evermore-app/evermore/internal/providers/mediastore"
	"github.com/evermore-app/evermore/internal/qa"
	qadomain "github.com/evermore-app/evermore/internal/qa/domain"
	"github.com/evermore-app/evermore/internal/wedding"
	weddingdomain "github.com/evermore-app/evermore/internal/wedding/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	session.Module,
	identity.Module,
	email.Module,
	mediastore.Module,
	wedding.Module,
	invitation.Module,
	guest.Module,
	media.Module,
	qa.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(requestLogger(log))
	r.Use(metricsMiddleware(newHTTPMetrics()))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, zap.Error(last.Err))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request", fields...)
		} else {
			log.Info("request", fields...)
		}
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	sessions      *session.Manager
	resolver      *identity.Resolver
	genID         *snowflake.Node
	authsvc       authdomain.Service
	weddingSvc    weddingdomain.Service
	invitationSvc invitationdomain.Service
	guestSvc      guestdomain.Service
	mediaSvc      mediadomain.Service
	qaSvc         qadomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	Sessions      *session.Manager
	Resolver      *identity.Resolver
	GenID         *snowflake.Node
	Authsvc       authdomain.Service
	WeddingSvc    weddingdomain.Service
	InvitationSvc invitationdomain.Service
	GuestSvc      guestdomain.Service
	MediaSvc      mediadomain.Service
	QaSvc         qadomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		sessions:      p.Sessions,
		resolver:      p.Resolver,
		genID:         p.GenID,
		authsvc:       p.Authsvc,
		weddingSvc:    p.WeddingSvc,
		invitationSvc: p.InvitationSvc,
		guestSvc:      p.GuestSvc,
		mediaSvc:      p.MediaSvc,
		qaSvc:         p.QaSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAuthRoutes() {
	grp := s.engine.Group("/auth")
	grp.POST("/signup", s.Signup)
	grp.POST("/login", s.Login)
	grp.POST("/logout", s.Logout)
	grp.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/", s.AuthRequired())

	api.POST("/users", s.CreateUser)

	api.POST("/weddings", s.CreateWedding)
	api.GET("/weddings", s.ListWeddings)
	api.GET("/weddings/:id", s.GetWedding)
	api.PUT("/weddings/:id", s.UpdateWedding)
	api.DELETE("/weddings/:id", s.DeleteWedding)

	api.POST("/weddings/:id/invitations", s.CreateInvitation)
	api.GET("/weddings/:id/invitations", s.ListInvitations)
	api.POST("/invitations/accept", s.AcceptInvitation)

	api.POST("/media/upload", s.UploadMedia)
	api.GET("/media", s.ListMedia)
	api.PUT("/media/:id", s.ApproveMedia)
	api.DELETE("/media/:id", s.DeleteMedia)

	api.POST("/guests", s.CreateGuest)
	api.GET("/guests", s.ListGuests)
	api.PUT("/guests", s.UpdateRSVP)
	api.DELETE("/guests/:id", s.DeleteGuest)

	api.POST("/questions", s.CreateQuestion)
	api.GET("/questions", s.ListQuestions)
	api.DELETE("/questions/:id", s.DeleteQuestion)
	api.POST("/answers", s.CreateAnswer)
	api.PUT("/answers/:id", s.UpdateAnswer)
	api.DELETE("/answers/:id", s.DeleteAnswer)
}
