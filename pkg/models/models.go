package models

// Domain models matching the database schema in db/migrations/0001_init.sql.
// Timestamps named Created/Updated are unix milliseconds.

type User struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name" validate:"required"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	Role         Role   `json:"role" db:"role"`
	PasswordHash string `json:"-" db:"password_hash"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
}

type Internship struct {
	ID          string   `json:"id" db:"id"`
	Title       string   `json:"title" db:"title" validate:"required"`
	Location    string   `json:"location" db:"location"`
	Stipend     string   `json:"stipend" db:"stipend"`
	Duration    string   `json:"duration" db:"duration"`
	ApplyBy     string   `json:"apply_by" db:"apply_by" validate:"omitempty,datetime=2006-01-02"`
	Description string   `json:"description" db:"description"`
	Skills      []string `json:"skills" db:"skills"`
	PostedBy    string   `json:"posted_by" db:"posted_by"`
	Created     int64    `json:"created" db:"created"`
}

// InternshipStat is the per-listing aggregate kept next to applications.
type InternshipStat struct {
	InternshipID     string   `json:"id" db:"internship_id"`
	Title            string   `json:"title" db:"title"`
	Active           bool     `json:"active" db:"active"`
	Closed           bool     `json:"closed" db:"closed"`
	ApplicationCount int      `json:"application_count" db:"application_count"`
	Applicants       []string `json:"applicants" db:"applicants"`
	Updated          int64    `json:"updated" db:"updated"`
}

// InternshipListing is an internship enriched with its stat for list views.
type InternshipListing struct {
	Internship
	Active         bool `json:"active"`
	Closed         bool `json:"closed"`
	ApplicantCount int  `json:"applicant_count"`
}

// Applicant holds the fields an intern fills in when applying.
type Applicant struct {
	FirstName       string   `json:"first_name" validate:"required"`
	MiddleName      string   `json:"middle_name,omitempty"`
	LastName        string   `json:"last_name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Address         string   `json:"address" validate:"required"`
	City            string   `json:"city" validate:"required"`
	State           string   `json:"state" validate:"required"`
	University      string   `json:"university" validate:"required"`
	CurrentYear     string   `json:"current_year" validate:"required"`
	PassingYear     string   `json:"passing_year" validate:"required"`
	GitHub          string   `json:"github,omitempty"`
	LinkedIn        string   `json:"linkedin,omitempty"`
	WhyInternship   string   `json:"why_internship" validate:"required"`
	Expectations    string   `json:"expectations" validate:"required"`
	Skills          []string `json:"skills" validate:"min=1,dive,required"`
	ResumeFile      string   `json:"resume_file" validate:"required"`
	CoverLetterFile string   `json:"cover_letter_file" validate:"required"`
}

// FullName joins first, middle and last name the way it is shown to admins.
func (a Applicant) FullName() string {
	name := a.FirstName
	if a.MiddleName != "" {
		name += " " + a.MiddleName
	}
	return name + " " + a.LastName
}

type Application struct {
	ID           string            `json:"id" db:"id"`
	InternID     string            `json:"intern_id" db:"intern_id"`
	InternshipID string            `json:"internship_id" db:"internship_id"`
	Status       ApplicationStatus `json:"status" db:"status"`
	Applicant
	MentorID  string     `json:"mentor_id,omitempty" db:"mentor_id"`
	AppliedOn string     `json:"applied_on" db:"applied_on"`
	Screening *Screening `json:"screening,omitempty" db:"screening"`
	Created   int64      `json:"created" db:"created"`
	Updated   int64      `json:"updated" db:"updated"`
}

// Screening is the automated review attached to an application after submit.
type Screening struct {
	SkillMatch    float64  `json:"skill_match"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Summary       string   `json:"summary,omitempty"`
	Model         string   `json:"model,omitempty"`
	Created       int64    `json:"created"`
}

type MentorAssignment struct {
	MentorID      string `json:"mentor_id" db:"mentor_id"`
	InternID      string `json:"intern_id" db:"intern_id"`
	ApplicationID string `json:"application_id" db:"application_id"`
	Created       int64  `json:"created" db:"created"`
}

// Meeting is an interview slot. The end time is derived, never stored.
type Meeting struct {
	ID              string        `json:"id" db:"id"`
	Title           string        `json:"title" db:"title"`
	InternID        string        `json:"intern_id" db:"intern_id"`
	MentorID        string        `json:"mentor_id" db:"mentor_id"`
	InternshipID    string        `json:"internship_id" db:"internship_id"`
	ApplicationID   string        `json:"application_id" db:"application_id"`
	Date            string        `json:"date" db:"date"`
	Time            string        `json:"time" db:"time"`
	DurationMinutes int           `json:"duration_minutes" db:"duration_minutes"`
	Link            string        `json:"link" db:"link"`
	Status          MeetingStatus `json:"status" db:"status"`
	ScheduledBy     string        `json:"scheduled_by" db:"scheduled_by"`
	Created         int64         `json:"created" db:"created"`
}

type Update struct {
	ID             string     `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Content        string     `json:"content" db:"content"`
	PostedByUserID string     `json:"posted_by_user_id" db:"posted_by_user_id"`
	PostedByName   string     `json:"posted_by_name" db:"posted_by_name"`
	PostedByRole   Role       `json:"posted_by_role" db:"posted_by_role"`
	TargetRole     TargetRole `json:"target_role" db:"target_role"`
	TargetUserID   string     `json:"target_user_id,omitempty" db:"target_user_id"`
	ImageFile      string     `json:"image_file,omitempty" db:"image_file"`
	AttachmentFile string     `json:"attachment_file,omitempty" db:"attachment_file"`
	CTALabel       string     `json:"cta_label,omitempty" db:"cta_label"`
	CTALink        string     `json:"cta_link,omitempty" db:"cta_link"`
	ReadBy         []string   `json:"read_by,omitempty" db:"-"`
	Created        int64      `json:"created" db:"created"`
}

type Message struct {
	ID         string `json:"id" db:"id"`
	InternID   string `json:"intern_id" db:"intern_id"`
	SenderID   string `json:"sender_id" db:"sender_id"`
	SenderRole Role   `json:"sender_role" db:"sender_role"`
	Text       string `json:"text" db:"text"`
	Created    int64  `json:"created" db:"created"`
}

type Task struct {
	ID          string     `json:"id" db:"id"`
	InternID    string     `json:"intern_id" db:"intern_id"`
	MentorID    string     `json:"mentor_id" db:"mentor_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	DueDate     string     `json:"due_date,omitempty" db:"due_date"`
	Status      TaskStatus `json:"status" db:"status"`
	Submission  string     `json:"submission,omitempty" db:"submission"`
	Feedback    string     `json:"feedback,omitempty" db:"feedback"`
	Created     int64      `json:"created" db:"created"`
	Updated     int64      `json:"updated" db:"updated"`
}

// Document is a shared file reference; contents are never stored.
type Document struct {
	ID       string `json:"id" db:"id"`
	InternID string `json:"intern_id" db:"intern_id"`
	MentorID string `json:"mentor_id" db:"mentor_id"`
	Title    string `json:"title" db:"title"`
	FileName string `json:"file_name" db:"file_name"`
	Created  int64  `json:"created" db:"created"`
}
