package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sagniknandigit/internship-management/internal/applications"
	"github.com/sagniknandigit/internship-management/internal/authz"
	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/internal/internships"
	"github.com/sagniknandigit/internship-management/internal/interviews"
	"github.com/sagniknandigit/internship-management/internal/mentoring"
	"github.com/sagniknandigit/internship-management/internal/metrics"
	"github.com/sagniknandigit/internship-management/internal/notify"
	"github.com/sagniknandigit/internship-management/internal/reports"
	"github.com/sagniknandigit/internship-management/internal/settings"
	"github.com/sagniknandigit/internship-management/internal/users"
	"github.com/sagniknandigit/internship-management/pkg/redis"
)

// Deps is everything the router needs. Limiter and DB may be nil.
type Deps struct {
	Version   string
	BuildTime string
	DB        Pinger

	Users        *users.Service
	Internships  *internships.Service
	Applications *applications.Service
	Interviews   *interviews.Service
	Notify       *notify.Service
	Mentoring    *mentoring.Service
	Reports      *reports.Service
	Settings     *settings.Service
	Hub          *events.Hub
	Authz        *authz.Enforcer
	Limiter      *redis.Limiter

	// Location is the zone interview dates are written in.
	Location  *time.Location
	Heartbeat time.Duration
}

func SetupRoutes(d Deps) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{DB: d.DB}
	authHandler := NewAuthHandler(d.Users, d.Limiter)
	userHandler := NewUserHandler(d.Users)
	internshipHandler := NewInternshipHandler(d.Internships, d.Applications)
	applicationHandler := NewApplicationHandler(d.Applications)
	interviewHandler := NewInterviewHandler(d.Interviews, d.Location)
	updateHandler := NewUpdateHandler(d.Notify)
	mentoringHandler := NewMentoringHandler(d.Mentoring)
	reportHandler := NewReportHandler(d.Reports)
	settingsHandler := NewSettingsHandler(d.Settings)
	eventsHandler := NewEventsHandler(d.Hub, d.Users, d.Heartbeat)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(d.Version, d.BuildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(AuthMiddleware(d.Users))

	can := func(resource, action string, h http.HandlerFunc) http.HandlerFunc {
		return Authorize(d.Authz, resource, action, h)
	}

	// Session and profile
	apiV1.HandleFunc("/auth/signout", authHandler.Signout).Methods("POST")
	apiV1.HandleFunc("/me", can("profile", "read", authHandler.Me)).Methods("GET")
	apiV1.HandleFunc("/me/settings", can("settings", "read", settingsHandler.Get)).Methods("GET")
	apiV1.HandleFunc("/me/settings", can("settings", "write", settingsHandler.Put)).Methods("PUT")
	apiV1.HandleFunc("/me/applications", can("application", "read_own", applicationHandler.Mine)).Methods("GET")
	apiV1.HandleFunc("/me/mentors", can("assignment", "mentors", mentoringHandler.Mentors)).Methods("GET")

	// Users
	apiV1.HandleFunc("/users", can("user", "list", userHandler.List)).Methods("GET")
	apiV1.HandleFunc("/users/{id}/role", can("user", "set_role", userHandler.ChangeRole)).Methods("PATCH")
	apiV1.HandleFunc("/users/{id}", can("user", "delete", userHandler.Delete)).Methods("DELETE")

	// Internships
	apiV1.HandleFunc("/internships", can("internship", "read", internshipHandler.List)).Methods("GET")
	apiV1.HandleFunc("/internships", can("internship", "create", internshipHandler.Create)).Methods("POST")
	apiV1.HandleFunc("/internships/{id}", can("internship", "read", internshipHandler.Get)).Methods("GET")
	apiV1.HandleFunc("/internships/{id}/applicants", can("internship", "applicants", internshipHandler.Applicants)).Methods("GET")
	apiV1.HandleFunc("/internships/{id}/end", can("internship", "end", internshipHandler.End)).Methods("POST")
	apiV1.HandleFunc("/internships/{id}/applications", can("application", "submit", internshipHandler.Apply)).Methods("POST")

	// Applications
	apiV1.HandleFunc("/applications", can("application", "list", applicationHandler.List)).Methods("GET")
	apiV1.HandleFunc("/applications/transitions", can("application", "set_status", applicationHandler.Transitions)).Methods("GET")
	apiV1.HandleFunc("/applications/{id}", can("application", "read_own", applicationHandler.Get)).Methods("GET")
	apiV1.HandleFunc("/applications/{id}/status", can("application", "set_status", applicationHandler.SetStatus)).Methods("PATCH")
	apiV1.HandleFunc("/applications/{id}/mentor", can("application", "assign_mentor", applicationHandler.AssignMentor)).Methods("POST")
	apiV1.HandleFunc("/interns/{id}/eligible-applications", can("application", "list", applicationHandler.Eligible)).Methods("GET")

	// Interviews
	apiV1.HandleFunc("/interviews", can("interview", "create", interviewHandler.Schedule)).Methods("POST")
	apiV1.HandleFunc("/interviews", can("interview", "read", interviewHandler.List)).Methods("GET")
	apiV1.HandleFunc("/interviews/calendar.ics", can("interview", "read", interviewHandler.Calendar)).Methods("GET")
	apiV1.HandleFunc("/interviews/{id}/status", can("interview", "update", interviewHandler.SetStatus)).Methods("PATCH")

	// Updates
	apiV1.HandleFunc("/updates", can("update", "post", updateHandler.Post)).Methods("POST")
	apiV1.HandleFunc("/updates", can("update", "read", updateHandler.List)).Methods("GET")
	apiV1.HandleFunc("/updates/unread-count", can("update", "read", updateHandler.UnreadCount)).Methods("GET")
	apiV1.HandleFunc("/updates/read-all", can("update", "read", updateHandler.MarkAllRead)).Methods("POST")
	apiV1.HandleFunc("/updates/{id}/read", can("update", "read", updateHandler.MarkRead)).Methods("POST")

	// Mentoring
	apiV1.HandleFunc("/mentor/interns", can("assignment", "interns", mentoringHandler.Interns)).Methods("GET")
	apiV1.HandleFunc("/conversations", can("conversation", "list", mentoringHandler.Conversations)).Methods("GET")
	apiV1.HandleFunc("/conversations/{internId}/messages", can("conversation", "read", mentoringHandler.Messages)).Methods("GET")
	apiV1.HandleFunc("/conversations/{internId}/messages", can("conversation", "write", mentoringHandler.Send)).Methods("POST")
	apiV1.HandleFunc("/tasks", can("task", "create", mentoringHandler.AssignTask)).Methods("POST")
	apiV1.HandleFunc("/tasks", can("task", "read", mentoringHandler.Tasks)).Methods("GET")
	apiV1.HandleFunc("/tasks/{id}/submit", can("task", "submit", mentoringHandler.SubmitTask)).Methods("POST")
	apiV1.HandleFunc("/tasks/{id}/review", can("task", "review", mentoringHandler.ReviewTask)).Methods("POST")
	apiV1.HandleFunc("/documents", can("document", "share", mentoringHandler.ShareDocument)).Methods("POST")
	apiV1.HandleFunc("/documents", can("document", "read", mentoringHandler.Documents)).Methods("GET")

	// Reports
	apiV1.HandleFunc("/reports/summary", can("report", "read", reportHandler.Summary)).Methods("GET")
	apiV1.HandleFunc("/reports/export.xlsx", can("report", "read", reportHandler.Export)).Methods("GET")

	// Event stream
	apiV1.HandleFunc("/events", can("events", "subscribe", eventsHandler.Stream)).Methods("GET")

	return r
}
