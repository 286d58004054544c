package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/voraviaadmin/voravia/internal/backup"
	"github.com/voraviaadmin/voravia/internal/directory"
	"github.com/voraviaadmin/voravia/internal/email"
	"github.com/voraviaadmin/voravia/internal/handler"
	"github.com/voraviaadmin/voravia/internal/middleware"
	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/nutrition"
	"github.com/voraviaadmin/voravia/internal/push"
	"github.com/voraviaadmin/voravia/internal/store"
	ws "github.com/voraviaadmin/voravia/internal/websocket"
)

// Config collects everything the server needs beyond the database handle.
type Config struct {
	InviteSecret []byte
	Nutrition    nutrition.Config
	Directory    directory.Config
	Backup       backup.Config
	Push         push.Config
}

type Server struct {
	db              *sql.DB
	hub             *ws.Hub
	contextH        *handler.ContextHandler
	memberH         *handler.MemberHandler
	scanH           *handler.ScanHandler
	restaurantH     *handler.RestaurantHandler
	scoreH          *handler.HealthScoreHandler
	profileH        *handler.ProfileHandler
	reminderH       *handler.ReminderHandler
	authH           *handler.AuthHandler
	inviteH         *handler.InviteHandler
	groupH          *handler.GroupHandler
	backupH         *handler.BackupHandler
	pushH           *handler.PushHandler
	sessionStore    *store.SessionStore
	pushStore       *store.PushStore
	rateLimiter     *middleware.RateLimiter
	backupManager   *backup.Manager
	directoryClient *directory.Client
	pushService     *push.Service
	pushScheduler   *push.Scheduler
	logger          *slog.Logger
}

func New(db *sql.DB, cfg Config, emailClient *email.Client, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	stateStore := store.NewAppStateStore(db)
	contextStore := store.NewContextStore(stateStore)
	memberStore := store.NewMemberStore(db)
	groupStore := store.NewGroupStore(db)
	profileStore := store.NewProfileStore(db)
	scanStore := store.NewScanStore(db)
	restaurantStore := store.NewRestaurantStore(db)
	reminderStore := store.NewReminderStore(db)

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	backupStore := store.NewBackupStore(db)
	pushStore := store.NewPushStore(db)

	products := nutrition.NewClient(cfg.Nutrition)

	directoryClient := directory.NewClient(cfg.Directory, memberStore, logger.With("component", "directory"), func(m *model.Member) {
		hub.Broadcast(ws.NewMessage("member", "updated", m.ID, map[string]any{
			"family_id":    m.FamilyID,
			"corporate_id": m.CorporateID,
		}))
	})

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, stateStore, logger.With("component", "backup"), func(st backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(st.State),
			Extra: map[string]any{
				"in_progress": st.InProgress,
				"error":       st.Error,
			},
		})
	})

	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, pushStore, reminderStore, scanStore, memberStore, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}

	return &Server{
		db:              db,
		hub:             hub,
		contextH:        handler.NewContextHandler(contextStore, memberStore, groupStore, hub, logger.With("component", "context")),
		memberH:         handler.NewMemberHandler(memberStore, hub, logger.With("component", "member")),
		scanH:           handler.NewScanHandler(scanStore, memberStore, profileStore, products, hub, logger.With("component", "scan")),
		restaurantH:     handler.NewRestaurantHandler(restaurantStore, profileStore, contextStore, logger.With("component", "restaurant")),
		scoreH:          handler.NewHealthScoreHandler(contextStore, memberStore, groupStore, scanStore, logger.With("component", "score")),
		profileH:        handler.NewProfileHandler(profileStore, memberStore, logger.With("component", "profile")),
		reminderH:       handler.NewReminderHandler(reminderStore, memberStore, logger.With("component", "reminder")),
		authH:           handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		inviteH:         handler.NewInviteHandler(groupStore, memberStore, emailClient, hub, cfg.InviteSecret, logger.With("component", "invite")),
		groupH:          handler.NewGroupHandler(groupStore, directoryClient, hub, logger.With("component", "group")),
		backupH:         handler.NewBackupHandler(backupMgr, backupStore, stateStore, logger.With("component", "backup_handler")),
		pushH:           pushH,
		sessionStore:    sessionStore,
		pushStore:       pushStore,
		rateLimiter:     middleware.NewRateLimiter(),
		backupManager:   backupMgr,
		directoryClient: directoryClient,
		pushService:     pushSvc,
		pushScheduler:   pushSched,
		logger:          logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// DirectoryClient returns the directory sync client.
func (s *Server) DirectoryClient() *directory.Client {
	return s.directoryClient
}

// PushScheduler returns the push notification scheduler.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes behind the session middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Active context
	mux.HandleFunc("GET /api/context", s.contextH.Get)
	mux.HandleFunc("PUT /api/context", s.contextH.Put)

	// Members
	mux.HandleFunc("GET /api/members", s.memberH.List)
	mux.HandleFunc("POST /api/members", s.memberH.Create)
	mux.HandleFunc("GET /api/members/{id}", s.memberH.Get)
	mux.HandleFunc("PUT /api/members/{id}", s.memberH.Update)
	mux.HandleFunc("DELETE /api/members/{id}", s.memberH.Delete)
	mux.HandleFunc("PUT /api/members/{id}/grants", s.memberH.SetGrants)
	mux.HandleFunc("PUT /api/members/sort", s.memberH.UpdateSortOrder)

	// Health profiles
	mux.HandleFunc("GET /api/members/{id}/profile", s.profileH.Get)
	mux.HandleFunc("PUT /api/members/{id}/profile", s.profileH.Put)

	// Scans
	mux.HandleFunc("POST /api/scans", s.scanH.Create)
	mux.HandleFunc("GET /api/scans/{id}", s.scanH.Get)
	mux.HandleFunc("GET /api/members/{id}/scans", s.scanH.ListByMember)
	mux.HandleFunc("DELETE /api/scans/{id}", s.scanH.Delete)

	// Restaurants and menus
	mux.HandleFunc("POST /api/restaurants", s.restaurantH.Create)
	mux.HandleFunc("GET /api/restaurants", s.restaurantH.Search)
	mux.HandleFunc("GET /api/restaurants/nearby", s.restaurantH.Nearby)
	mux.HandleFunc("GET /api/restaurants/{id}", s.restaurantH.Get)
	mux.HandleFunc("POST /api/restaurants/{id}/menu", s.restaurantH.CreateMenuItem)
	mux.HandleFunc("GET /api/restaurants/{id}/menu", s.restaurantH.Menu)

	// Aggregated health score for the active context
	mux.HandleFunc("GET /api/health-score", s.scoreH.Get)

	// Reminders
	mux.HandleFunc("POST /api/reminders", s.reminderH.Create)
	mux.HandleFunc("GET /api/members/{id}/reminders", s.reminderH.ListByMember)
	mux.HandleFunc("PUT /api/reminders/{id}", s.reminderH.Update)
	mux.HandleFunc("DELETE /api/reminders/{id}", s.reminderH.Delete)

	// Groups and invites
	mux.HandleFunc("GET /api/groups", s.groupH.List)
	mux.HandleFunc("GET /api/groups/{id}", s.groupH.Get)
	mux.HandleFunc("DELETE /api/groups/{id}", s.groupH.Delete)
	mux.HandleFunc("POST /api/invites", s.inviteH.Create)
	mux.HandleFunc("POST /api/invites/accept", s.inviteH.Accept)
	mux.HandleFunc("GET /api/directory/status", s.groupH.DirectoryStatus)
	mux.HandleFunc("POST /api/directory/sync", s.groupH.DirectorySync)

	// Backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.HandleFunc("PUT /api/backups/config", s.backupH.Configure)
	mux.HandleFunc("POST /api/backups/run", s.backupH.RunNow)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.backupH.Restore)
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)

	// Push notifications
	if s.pushH != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("GET /api/members/{id}/push", s.pushH.ListByMember)
		mux.HandleFunc("DELETE /api/push/subscriptions", s.pushH.Unsubscribe)
		mux.HandleFunc("POST /api/push/test", s.pushH.Test)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
