package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/sagniknandigit/internship-management/api"
	"github.com/sagniknandigit/internship-management/internal/applications"
	"github.com/sagniknandigit/internship-management/internal/auth"
	"github.com/sagniknandigit/internship-management/internal/authz"
	"github.com/sagniknandigit/internship-management/internal/db/dbtest"
	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/internal/internships"
	"github.com/sagniknandigit/internship-management/internal/interviews"
	"github.com/sagniknandigit/internship-management/internal/mentoring"
	"github.com/sagniknandigit/internship-management/internal/notify"
	"github.com/sagniknandigit/internship-management/internal/reports"
	"github.com/sagniknandigit/internship-management/internal/repository/sqlite"
	"github.com/sagniknandigit/internship-management/internal/settings"
	"github.com/sagniknandigit/internship-management/internal/users"
	"github.com/sagniknandigit/internship-management/pkg/models"
)

type testEnv struct {
	router *mux.Router
	hub    *events.Hub
	admin  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	d := dbtest.Open(t)
	store := sqlite.New(d, nil)
	repo := store.Repository()
	hub := events.NewHub(32, nil)
	t.Cleanup(hub.Close)

	enforcer, err := authz.New()
	if err != nil {
		t.Fatalf("authz: %v", err)
	}
	wf, err := applications.NewWorkflow(applications.PolicyOpen)
	if err != nil {
		t.Fatalf("workflow: %v", err)
	}
	settingsSvc, err := settings.NewService(repo.Settings)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	userSvc := users.NewService(repo.User, auth.NewTokens("test-secret", time.Hour), store, hub, nil)

	env := &testEnv{hub: hub}
	env.router = api.SetupRoutes(api.Deps{
		Version:      "test",
		BuildTime:    "now",
		DB:           d,
		Users:        userSvc,
		Internships:  internships.NewService(repo.Internship, repo.Application, repo.User, hub, nil),
		Applications: applications.NewService(repo, wf, nil, hub, nil),
		Interviews:   interviews.NewService(repo, nil, hub, nil),
		Notify:       notify.NewService(repo.Update, repo.User, hub, nil),
		Mentoring:    mentoring.NewService(repo, hub, nil),
		Reports:      reports.NewService(repo),
		Settings:     settingsSvc,
		Hub:          hub,
		Authz:        enforcer,
		Location:     time.UTC,
		Heartbeat:    time.Minute,
	})

	ctx := context.Background()
	if _, err := userSvc.EnsureAdmin(ctx, "Ada Admin", "admin@example.com", "adminpw"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	sess, err := userSvc.SignIn(ctx, "admin@example.com", "adminpw")
	if err != nil {
		t.Fatalf("admin signin: %v", err)
	}
	env.admin = sess.Token
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signup registers a user through the API and returns its token.
func (e *testEnv) signup(t *testing.T, name, email string, role models.Role) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "password1", "role": string(role),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: %d %s", email, w.Code, w.Body)
	}
	var sess users.Session
	decodeBody(t, w, &sess)
	return sess.Token
}

func (e *testEnv) me(t *testing.T, token string) models.User {
	t.Helper()
	w := e.do(t, http.MethodGet, "/v1/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body)
	}
	var u models.User
	decodeBody(t, w, &u)
	return u
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body, err)
	}
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("want status %d got %d: %s", status, w.Code, w.Body)
	}
}

func applicantBody(first string) map[string]any {
	return map[string]any{
		"first_name":        first,
		"last_name":         "Doe",
		"email":             strings.ToLower(first) + "@example.com",
		"address":           "1 Main St",
		"city":              "Pune",
		"state":             "MH",
		"university":        "State University",
		"current_year":      "3",
		"passing_year":      "2027",
		"why_internship":    "learn",
		"expectations":      "mentorship",
		"skills":            []string{"Go", "SQL"},
		"resume_file":       "resume.pdf",
		"cover_letter_file": "cover.pdf",
	}
}

func (e *testEnv) createInternship(t *testing.T, title string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/internships", e.admin, map[string]any{
		"title": title, "location": "Remote", "duration": "3 months", "apply_by": "2030-01-31",
		"stipend": "1000", "skills": []string{"Go"},
	})
	wantStatus(t, w, http.StatusCreated)
	var in models.Internship
	decodeBody(t, w, &in)
	return in.ID
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "MissingHeader", header: "", want: http.StatusUnauthorized},
		{name: "EmptyBearer", header: "Bearer ", want: http.StatusUnauthorized},
		{name: "BadToken", header: "Bearer bad.token.here", want: http.StatusUnauthorized},
		{name: "Valid", header: "Bearer " + env.admin, want: http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/internships", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			wantStatus(t, w, c.want)
		})
	}
}

func TestRoleEnforcement(t *testing.T) {
	env := newTestEnv(t)
	intern := env.signup(t, "Ivy Intern", "ivy@example.com", models.RoleIntern)
	mentor := env.signup(t, "Max Mentor", "max@example.com", models.RoleMentor)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"InternCannotReadReports", http.MethodGet, "/v1/reports/summary", intern, http.StatusForbidden},
		{"MentorCannotReadReports", http.MethodGet, "/v1/reports/summary", mentor, http.StatusForbidden},
		{"AdminReadsReports", http.MethodGet, "/v1/reports/summary", env.admin, http.StatusOK},
		{"InternCannotListUsers", http.MethodGet, "/v1/users", intern, http.StatusForbidden},
		{"InternCannotListAllApplications", http.MethodGet, "/v1/applications", intern, http.StatusForbidden},
		{"InternListsOwnApplications", http.MethodGet, "/v1/me/applications", intern, http.StatusOK},
		{"MentorCannotSubmitApplication", http.MethodPost, "/v1/internships/x/applications", mentor, http.StatusForbidden},
		{"AdminCannotSubmitApplication", http.MethodPost, "/v1/internships/x/applications", env.admin, http.StatusForbidden},
		{"MentorListsInterns", http.MethodGet, "/v1/mentor/interns", mentor, http.StatusOK},
		{"InternCannotListMentorInterns", http.MethodGet, "/v1/mentor/interns", intern, http.StatusForbidden},
		{"InternListsMentors", http.MethodGet, "/v1/me/mentors", intern, http.StatusOK},
		{"InternCannotListConversations", http.MethodGet, "/v1/conversations", intern, http.StatusForbidden},
		{"AdminCannotAssignTasks", http.MethodPost, "/v1/tasks", env.admin, http.StatusForbidden},
		{"EveryoneReadsUpdates", http.MethodGet, "/v1/updates", intern, http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			wantStatus(t, env.do(t, c.method, c.path, c.token, map[string]string{}), c.want)
		})
	}
}

func TestSuspendedUserLosesAccess(t *testing.T) {
	env := newTestEnv(t)
	intern := env.signup(t, "Sam Suspended", "sam@example.com", models.RoleIntern)
	u := env.me(t, intern)

	w := env.do(t, http.MethodPatch, "/v1/users/"+u.ID+"/role", env.admin, map[string]string{"role": "Suspend"})
	wantStatus(t, w, http.StatusOK)

	wantStatus(t, env.do(t, http.MethodGet, "/v1/me", intern, nil), http.StatusForbidden)
	wantStatus(t, env.do(t, http.MethodPost, "/v1/auth/signin", "", map[string]string{"email": "sam@example.com", "password": "password1"}), http.StatusForbidden)
}

func TestAdminCannotChangeOwnRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.me(t, env.admin)
	wantStatus(t, env.do(t, http.MethodPatch, "/v1/users/"+admin.ID+"/role", env.admin, map[string]string{"role": "Intern"}), http.StatusConflict)
	wantStatus(t, env.do(t, http.MethodDelete, "/v1/users/"+admin.ID, env.admin, nil), http.StatusConflict)
	wantStatus(t, env.do(t, http.MethodDelete, "/v1/users/nobody", env.admin, nil), http.StatusNotFound)
}

func TestInternshipValidationAndListing(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/internships", env.admin, map[string]any{"title": "Backend", "apply_by": "31/01/2030"})
	wantStatus(t, w, http.StatusBadRequest)
	var er struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, w, &er)
	if er.Fields["apply_by"] == "" || er.Fields["location"] == "" {
		t.Fatalf("expected field errors for apply_by and location, got %v", er.Fields)
	}

	env.createInternship(t, "Backend Intern")
	env.createInternship(t, "Frontend Intern")

	w = env.do(t, http.MethodGet, "/v1/internships?title=back", env.admin, nil)
	wantStatus(t, w, http.StatusOK)
	var page internships.Page
	decodeBody(t, w, &page)
	if page.Total != 1 || page.Items[0].Title != "Backend Intern" || !page.Items[0].Active {
		t.Fatalf("unexpected filtered page: %+v", page)
	}

	wantStatus(t, env.do(t, http.MethodGet, "/v1/internships?page=x", env.admin, nil), http.StatusBadRequest)
	wantStatus(t, env.do(t, http.MethodGet, "/v1/internships?sort=title", env.admin, nil), http.StatusBadRequest)
	wantStatus(t, env.do(t, http.MethodGet, "/v1/internships/missing", env.admin, nil), http.StatusNotFound)
}

func TestEndInternshipIsIdempotentAndBlocksApplications(t *testing.T) {
	env := newTestEnv(t)
	intern := env.signup(t, "Ivy Intern", "ivy@example.com", models.RoleIntern)
	id := env.createInternship(t, "Data Intern")

	for range 2 {
		w := env.do(t, http.MethodPost, "/v1/internships/"+id+"/end", env.admin, nil)
		wantStatus(t, w, http.StatusOK)
		var stat models.InternshipStat
		decodeBody(t, w, &stat)
		if stat.Active || !stat.Closed {
			t.Fatalf("expected closed stat, got %+v", stat)
		}
	}
	wantStatus(t, env.do(t, http.MethodPost, "/v1/internships/"+id+"/applications", intern, applicantBody("Ivy")), http.StatusConflict)
}

func TestHireAssignAndReport(t *testing.T) {
	env := newTestEnv(t)
	internTok := env.signup(t, "Ivy Intern", "ivy@example.com", models.RoleIntern)
	mentorTok := env.signup(t, "Max Mentor", "max@example.com", models.RoleMentor)
	intern := env.me(t, internTok)
	mentor := env.me(t, mentorTok)
	internshipID := env.createInternship(t, "Platform Intern")

	w := env.do(t, http.MethodPost, "/v1/internships/"+internshipID+"/applications", internTok, applicantBody("Ivy"))
	wantStatus(t, w, http.StatusCreated)
	var app models.Application
	decodeBody(t, w, &app)
	if app.Status != models.StatusSubmitted || app.InternID != intern.ID {
		t.Fatalf("unexpected application: %+v", app)
	}

	w = env.do(t, http.MethodGet, "/v1/internships/"+internshipID, internTok, nil)
	wantStatus(t, w, http.StatusOK)
	var listing models.InternshipListing
	decodeBody(t, w, &listing)
	if listing.ApplicantCount != 1 {
		t.Fatalf("applicant count = %d, want 1", listing.ApplicantCount)
	}

	// mentor assignment needs a hire first
	wantStatus(t, env.do(t, http.MethodPost, "/v1/applications/"+app.ID+"/mentor", env.admin, map[string]string{"mentor_id": mentor.ID}), http.StatusConflict)

	wantStatus(t, env.do(t, http.MethodPatch, "/v1/applications/"+app.ID+"/status", env.admin, map[string]string{"status": "Bogus"}), http.StatusBadRequest)

	w = env.do(t, http.MethodPatch, "/v1/applications/"+app.ID+"/status", env.admin, map[string]string{"status": "Hired"})
	wantStatus(t, w, http.StatusOK)
	var sr struct {
		Application models.Application `json:"application"`
		Changed     bool               `json:"changed"`
	}
	decodeBody(t, w, &sr)
	if !sr.Changed || sr.Application.Status != models.StatusHired {
		t.Fatalf("unexpected status response: %+v", sr)
	}

	w = env.do(t, http.MethodPatch, "/v1/applications/"+app.ID+"/status", env.admin, map[string]string{"status": "Hired"})
	wantStatus(t, w, http.StatusOK)
	decodeBody(t, w, &sr)
	if sr.Changed {
		t.Fatalf("same status reported as a change")
	}

	w = env.do(t, http.MethodPost, "/v1/applications/"+app.ID+"/mentor", env.admin, map[string]string{"mentor_id": mentor.ID})
	wantStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodGet, "/v1/mentor/interns", mentorTok, nil)
	wantStatus(t, w, http.StatusOK)
	var contacts []mentoring.Contact
	decodeBody(t, w, &contacts)
	if len(contacts) != 1 || contacts[0].UserID != intern.ID {
		t.Fatalf("unexpected mentor interns: %+v", contacts)
	}

	w = env.do(t, http.MethodGet, "/v1/reports/summary", env.admin, nil)
	wantStatus(t, w, http.StatusOK)
	var rep reports.Report
	decodeBody(t, w, &rep)
	if len(rep.Mentors) != 1 || rep.Mentors[0].AssignedInternCount != 1 || rep.Mentors[0].AssignedInternNames[0] != "Ivy Intern" {
		t.Fatalf("unexpected mentor workload: %+v", rep.Mentors)
	}
	if rep.Internships[0].ConversionRate != 100 {
		t.Fatalf("conversion rate = %v, want 100", rep.Internships[0].ConversionRate)
	}

	w = env.do(t, http.MethodGet, "/v1/reports/export.xlsx", env.admin, nil)
	wantStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected export content type %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Fatalf("export is not a zip archive")
	}
}

func TestApplicationOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup(t, "Ivy Intern", "ivy@example.com", models.RoleIntern)
	other := env.signup(t, "Oz Other", "oz@example.com", models.RoleIntern)
	id := env.createInternship(t, "Ops Intern")

	w := env.do(t, http.MethodPost, "/v1/internships/"+id+"/applications", owner, applicantBody("Ivy"))
	wantStatus(t, w, http.StatusCreated)
	var app models.Application
	decodeBody(t, w, &app)

	wantStatus(t, env.do(t, http.MethodGet, "/v1/applications/"+app.ID, owner, nil), http.StatusOK)
	wantStatus(t, env.do(t, http.MethodGet, "/v1/applications/"+app.ID, other, nil), http.StatusForbidden)
	wantStatus(t, env.do(t, http.MethodGet, "/v1/applications/"+app.ID, env.admin, nil), http.StatusOK)

	w = env.do(t, http.MethodPost, "/v1/internships/"+id+"/applications", owner, map[string]any{"first_name": "Ivy"})
	wantStatus(t, w, http.StatusBadRequest)
}

func TestInterviewScheduleAndCalendar(t *testing.T) {
	env := newTestEnv(t)
	internTok := env.signup(t, "Ivy Intern", "ivy@example.com", models.RoleIntern)
	mentorTok := env.signup(t, "Max Mentor", "max@example.com", models.RoleMentor)
	intern := env.me(t, internTok)
	mentor := env.me(t, mentorTok)
	id := env.createInternship(t, "QA Intern")

	w := env.do(t, http.MethodPost, "/v1/internships/"+id+"/applications", internTok, applicantBody("Ivy"))
	wantStatus(t, w, http.StatusCreated)
	var app models.Application
	decodeBody(t, w, &app)

	w = env.do(t, http.MethodGet, "/v1/interns/"+intern.ID+"/eligible-applications", env.admin, nil)
	wantStatus(t, w, http.StatusOK)
	var eligible []models.Application
	decodeBody(t, w, &eligible)
	if len(eligible) != 1 {
		t.Fatalf("eligible = %d, want 1", len(eligible))
	}

	w = env.do(t, http.MethodPost, "/v1/interviews", env.admin, map[string]any{
		"intern_id": intern.ID, "mentor_id": mentor.ID, "application_id": app.ID,
		"date": "2030-02-01", "time": "10:30", "duration_minutes": 45, "link": "https://meet.example.com/abc",
	})
	wantStatus(t, w, http.StatusCreated)
	var v interviews.View
	decodeBody(t, w, &v)
	if v.EndTime != "11:15" {
		t.Fatalf("end time = %q, want 11:15", v.EndTime)
	}

	w = env.do(t, http.MethodGet, "/v1/interviews", internTok, nil)
	wantStatus(t, w, http.StatusOK)
	var views []interviews.View
	decodeBody(t, w, &views)
	if len(views) != 1 {
		t.Fatalf("intern sees %d interviews, want 1", len(views))
	}

	w = env.do(t, http.MethodGet, "/v1/interviews/calendar.ics", mentorTok, nil)
	wantStatus(t, w, http.StatusOK)
	if body := w.Body.String(); !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "BEGIN:VEVENT") {
		t.Fatalf("unexpected calendar: %s", body)
	}

	wantStatus(t, env.do(t, http.MethodPatch, "/v1/interviews/"+v.ID+"/status", internTok, map[string]string{"status": "Completed"}), http.StatusForbidden)
	wantStatus(t, env.do(t, http.MethodPatch, "/v1/interviews/"+v.ID+"/status", mentorTok, map[string]string{"status": "Completed"}), http.StatusOK)
	wantStatus(t, env.do(t, http.MethodPatch, "/v1/interviews/"+v.ID+"/status", env.admin, map[string]string{"status": "Cancelled"}), http.StatusConflict)
}

func TestUpdatesTargetingAndReadState(t *testing.T) {
	env := newTestEnv(t)
	aTok := env.signup(t, "Ann Intern", "ann@example.com", models.RoleIntern)
	bTok := env.signup(t, "Ben Intern", "ben@example.com", models.RoleIntern)
	a := env.me(t, aTok)

	wantStatus(t, env.do(t, http.MethodPost, "/v1/updates", env.admin, map[string]string{
		"title": "Welcome", "content": "hello interns", "target_role": "Intern",
	}), http.StatusCreated)
	w := env.do(t, http.MethodPost, "/v1/updates", env.admin, map[string]string{
		"title": "For Ann", "content": "just you", "target_role": "Specific", "target_user_id": a.ID,
	})
	wantStatus(t, w, http.StatusCreated)
	var private models.Update
	decodeBody(t, w, &private)

	wantStatus(t, env.do(t, http.MethodPost, "/v1/updates", env.admin, map[string]string{
		"title": "CTA", "content": "x", "target_role": "All", "cta_label": "Open",
	}), http.StatusBadRequest)
	wantStatus(t, env.do(t, http.MethodPost, "/v1/updates", aTok, map[string]string{
		"title": "Nope", "content": "x", "target_role": "All",
	}), http.StatusForbidden)

	unread := func(tok string) int {
		w := env.do(t, http.MethodGet, "/v1/updates/unread-count", tok, nil)
		wantStatus(t, w, http.StatusOK)
		var out map[string]int
		decodeBody(t, w, &out)
		return out["unread"]
	}
	if got := unread(aTok); got != 2 {
		t.Fatalf("ann unread = %d, want 2", got)
	}
	if got := unread(bTok); got != 1 {
		t.Fatalf("ben unread = %d, want 1", got)
	}

	wantStatus(t, env.do(t, http.MethodPost, "/v1/updates/"+private.ID+"/read", bTok, nil), http.StatusNotFound)
	wantStatus(t, env.do(t, http.MethodPost, "/v1/updates/"+private.ID+"/read", aTok, nil), http.StatusNoContent)
	if got := unread(aTok); got != 1 {
		t.Fatalf("ann unread after read = %d, want 1", got)
	}
	if got := unread(bTok); got != 1 {
		t.Fatalf("ben unread changed to %d", got)
	}

	w = env.do(t, http.MethodPost, "/v1/updates/read-all", bTok, nil)
	wantStatus(t, w, http.StatusOK)
	var marked map[string]int
	decodeBody(t, w, &marked)
	if marked["marked"] != 1 || unread(bTok) != 0 {
		t.Fatalf("read-all marked %d", marked["marked"])
	}
}

func TestMentoringFlow(t *testing.T) {
	env := newTestEnv(t)
	internTok := env.signup(t, "Ivy Intern", "ivy@example.com", models.RoleIntern)
	mentorTok := env.signup(t, "Max Mentor", "max@example.com", models.RoleMentor)
	strangerTok := env.signup(t, "Sid Stranger", "sid@example.com", models.RoleMentor)
	intern := env.me(t, internTok)
	mentor := env.me(t, mentorTok)
	id := env.createInternship(t, "ML Intern")

	w := env.do(t, http.MethodPost, "/v1/internships/"+id+"/applications", internTok, applicantBody("Ivy"))
	wantStatus(t, w, http.StatusCreated)
	var app models.Application
	decodeBody(t, w, &app)

	// no assignment yet
	wantStatus(t, env.do(t, http.MethodPost, "/v1/tasks", mentorTok, map[string]string{"intern_id": intern.ID, "title": "Setup"}), http.StatusForbidden)

	wantStatus(t, env.do(t, http.MethodPatch, "/v1/applications/"+app.ID+"/status", env.admin, map[string]string{"status": "Hired"}), http.StatusOK)
	wantStatus(t, env.do(t, http.MethodPost, "/v1/applications/"+app.ID+"/mentor", env.admin, map[string]string{"mentor_id": mentor.ID}), http.StatusOK)

	wantStatus(t, env.do(t, http.MethodPost, "/v1/conversations/"+intern.ID+"/messages", mentorTok, map[string]string{"text": "welcome"}), http.StatusCreated)
	wantStatus(t, env.do(t, http.MethodPost, "/v1/conversations/"+intern.ID+"/messages", internTok, map[string]string{"text": "thanks"}), http.StatusCreated)
	wantStatus(t, env.do(t, http.MethodGet, "/v1/conversations/"+intern.ID+"/messages", strangerTok, nil), http.StatusForbidden)

	w = env.do(t, http.MethodGet, "/v1/conversations/"+intern.ID+"/messages", internTok, nil)
	wantStatus(t, w, http.StatusOK)
	var msgs []models.Message
	decodeBody(t, w, &msgs)
	if len(msgs) != 2 || msgs[0].Text != "welcome" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}

	w = env.do(t, http.MethodPost, "/v1/tasks", mentorTok, map[string]string{"intern_id": intern.ID, "title": "Setup", "due_date": "2030-03-01"})
	wantStatus(t, w, http.StatusCreated)
	var task models.Task
	decodeBody(t, w, &task)

	wantStatus(t, env.do(t, http.MethodPost, "/v1/tasks/"+task.ID+"/review", mentorTok, map[string]string{"status": "Approved"}), http.StatusConflict)
	wantStatus(t, env.do(t, http.MethodPost, "/v1/tasks/"+task.ID+"/submit", internTok, map[string]string{"submission": "done"}), http.StatusOK)
	wantStatus(t, env.do(t, http.MethodPost, "/v1/tasks/"+task.ID+"/review", mentorTok, map[string]string{"status": "Needs Revision"}), http.StatusBadRequest)
	w = env.do(t, http.MethodPost, "/v1/tasks/"+task.ID+"/review", mentorTok, map[string]string{"status": "Approved"})
	wantStatus(t, w, http.StatusOK)
	decodeBody(t, w, &task)
	if task.Status != models.TaskApproved {
		t.Fatalf("task status = %s", task.Status)
	}

	wantStatus(t, env.do(t, http.MethodPost, "/v1/documents", mentorTok, map[string]string{"intern_id": intern.ID, "title": "Guide", "file_name": "guide.pdf"}), http.StatusCreated)
	w = env.do(t, http.MethodGet, "/v1/documents", internTok, nil)
	wantStatus(t, w, http.StatusOK)
	var docs []models.Document
	decodeBody(t, w, &docs)
	if len(docs) != 1 || docs[0].FileName != "guide.pdf" {
		t.Fatalf("unexpected documents: %+v", docs)
	}

	w = env.do(t, http.MethodGet, "/v1/conversations", mentorTok, nil)
	wantStatus(t, w, http.StatusOK)
	var convs []mentoring.Conversation
	decodeBody(t, w, &convs)
	if len(convs) != 1 || len(convs[0].Messages) != 2 {
		t.Fatalf("unexpected conversations: %+v", convs)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signup(t, "Ivy Intern", "ivy@example.com", models.RoleIntern)

	w := env.do(t, http.MethodGet, "/v1/me/settings", tok, nil)
	wantStatus(t, w, http.StatusOK)
	if !bytes.Contains(w.Body.Bytes(), []byte(`"notifications":true`)) {
		t.Fatalf("expected defaults, got %s", w.Body)
	}

	doc := map[string]any{"university": "State", "darkMode": true, "passingYear": "2027"}
	wantStatus(t, env.do(t, http.MethodPut, "/v1/me/settings", tok, doc), http.StatusOK)
	wantStatus(t, env.do(t, http.MethodPut, "/v1/me/settings", tok, map[string]any{"darkMode": "yes"}), http.StatusBadRequest)

	w = env.do(t, http.MethodGet, "/v1/me/settings", tok, nil)
	wantStatus(t, w, http.StatusOK)
	var got map[string]any
	decodeBody(t, w, &got)
	if got["university"] != "State" || got["darkMode"] != true {
		t.Fatalf("unexpected settings: %v", got)
	}
}
