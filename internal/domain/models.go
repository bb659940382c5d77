package domain

import (
	"encoding/json"
	"time"
)

// Registration is a cohort application. StudentID is issued once at creation and never changes.
type Registration struct {
	ID                  int64      `json:"id"`
	StudentName         string     `json:"student_name"`
	WechatID            string     `json:"wechat_id"`
	Phone               string     `json:"phone"`
	Email               string     `json:"email"`
	Gender              string     `json:"gender"`
	AgeGroup            string     `json:"age_group"`
	Education           string     `json:"education"`
	University          string     `json:"university"`
	Major               string     `json:"major"`
	City                string     `json:"city"`
	Role                string     `json:"role"`
	Languages           string     `json:"languages"`
	Experience          string     `json:"experience"`
	Source              string     `json:"source"`
	HasWeb3Experience   bool       `json:"has_web3_experience"`
	StudyTime           string     `json:"study_time"`
	Interests           string     `json:"interests"`
	Platforms           string     `json:"platforms"`
	WillingToHackathon  bool       `json:"willing_to_hackathon"`
	WillingToLead       bool       `json:"willing_to_lead"`
	WantsPrivateService bool       `json:"wants_private_service"`
	Referrer            string     `json:"referrer"`
	WalletAddress       string     `json:"wallet_address"`
	StudentID           string     `json:"student_id"`
	Approved            *bool      `json:"approved"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at"`
}

// StudentIDLess orders decimal student ids numerically without parsing them:
// shorter strings are smaller, equal lengths compare lexically.
func StudentIDLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// RegistrationPatch carries the mutable registration fields; nil means unchanged.
type RegistrationPatch struct {
	StudentName         *string `json:"student_name"`
	WechatID            *string `json:"wechat_id"`
	Phone               *string `json:"phone"`
	Email               *string `json:"email"`
	Gender              *string `json:"gender"`
	AgeGroup            *string `json:"age_group"`
	Education           *string `json:"education"`
	University          *string `json:"university"`
	Major               *string `json:"major"`
	City                *string `json:"city"`
	Role                *string `json:"role"`
	Languages           *string `json:"languages"`
	Experience          *string `json:"experience"`
	Source              *string `json:"source"`
	HasWeb3Experience   *bool   `json:"has_web3_experience"`
	StudyTime           *string `json:"study_time"`
	Interests           *string `json:"interests"`
	Platforms           *string `json:"platforms"`
	WillingToHackathon  *bool   `json:"willing_to_hackathon"`
	WillingToLead       *bool   `json:"willing_to_lead"`
	WantsPrivateService *bool   `json:"wants_private_service"`
	Referrer            *string `json:"referrer"`
	WalletAddress       *string `json:"wallet_address"`
	Approved            *bool   `json:"approved"`
}

// Apply copies the set fields onto reg. ID, StudentID and CreatedAt are never touched.
func (p RegistrationPatch) Apply(reg *Registration) {
	setString(&reg.StudentName, p.StudentName)
	setString(&reg.WechatID, p.WechatID)
	setString(&reg.Phone, p.Phone)
	setString(&reg.Email, p.Email)
	setString(&reg.Gender, p.Gender)
	setString(&reg.AgeGroup, p.AgeGroup)
	setString(&reg.Education, p.Education)
	setString(&reg.University, p.University)
	setString(&reg.Major, p.Major)
	setString(&reg.City, p.City)
	setString(&reg.Role, p.Role)
	setString(&reg.Languages, p.Languages)
	setString(&reg.Experience, p.Experience)
	setString(&reg.Source, p.Source)
	setBool(&reg.HasWeb3Experience, p.HasWeb3Experience)
	setString(&reg.StudyTime, p.StudyTime)
	setString(&reg.Interests, p.Interests)
	setString(&reg.Platforms, p.Platforms)
	setBool(&reg.WillingToHackathon, p.WillingToHackathon)
	setBool(&reg.WillingToLead, p.WillingToLead)
	setBool(&reg.WantsPrivateService, p.WantsPrivateService)
	setString(&reg.Referrer, p.Referrer)
	setString(&reg.WalletAddress, p.WalletAddress)
	if p.Approved != nil {
		v := *p.Approved
		reg.Approved = &v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Staff is a back-office operator identified by wallet address.
type Staff struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	WechatID      string    `json:"wechat_id"`
	Phone         string    `json:"phone"`
	Role          string    `json:"role"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}

// StaffRoleAdmin is the role seeded by the init-admin command.
const StaffRoleAdmin = "admin"

// AuthResult is the outcome of a wallet lookup. Role is a staff role, "student" or "pending".
type AuthResult struct {
	Success bool   `json:"success"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
	ID      string `json:"id,omitempty"`
}

const (
	RoleStudent = "student"
	RolePending = "pending"
)

// DefaultPoints is the value of a question whose score was never given.
const DefaultPoints = 1

// Question is a choice question belonging to a task.
type Question struct {
	ID             int64     `json:"id"`
	TaskNumber     int       `json:"task_number"`
	QuestionNumber int       `json:"question_number"`
	QuestionText   string    `json:"question_text"`
	Options        Options   `json:"options"`
	CorrectOption  string    `json:"correct_option"`
	Points         int       `json:"score"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UnmarshalJSON fills Points with DefaultPoints when score is absent or
// null. An explicit 0 is kept.
func (q *Question) UnmarshalJSON(data []byte) error {
	type plain Question
	p := plain{Points: DefaultPoints}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*q = Question(p)
	return nil
}

// Validate checks a complete question, including one produced by applying
// a patch to a stored row.
func (q Question) Validate() error {
	var fields []string
	if q.TaskNumber < 0 {
		fields = append(fields, "task_number")
	}
	if q.QuestionNumber < 1 {
		fields = append(fields, "question_number")
	}
	if q.QuestionText == "" {
		fields = append(fields, "question_text")
	}
	if len(q.Options) < 2 {
		fields = append(fields, "options")
	}
	if q.CorrectOption == "" || !q.Options.Has(q.CorrectOption) {
		fields = append(fields, "correct_option")
	}
	if q.Points < 0 {
		fields = append(fields, "score")
	}
	if len(fields) > 0 {
		return Invalid("missing or invalid", fields...)
	}
	return nil
}

// Public strips the correct answer so the question can be served to students.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:             q.ID,
		TaskNumber:     q.TaskNumber,
		QuestionNumber: q.QuestionNumber,
		QuestionText:   q.QuestionText,
		Options:        q.Options,
		Points:         q.Points,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
}

// PublicQuestion is a Question without its correct option.
type PublicQuestion struct {
	ID             int64     `json:"id"`
	TaskNumber     int       `json:"task_number"`
	QuestionNumber int       `json:"question_number"`
	QuestionText   string    `json:"question_text"`
	Options        Options   `json:"options"`
	Points         int       `json:"score"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// QuestionPatch updates a subset of question fields.
type QuestionPatch struct {
	TaskNumber     *int     `json:"task_number"`
	QuestionNumber *int     `json:"question_number"`
	QuestionText   *string  `json:"question_text"`
	Options        *Options `json:"options"`
	CorrectOption  *string  `json:"correct_option"`
	Points         *int     `json:"score"`
}

// Apply copies the set fields onto q.
func (p QuestionPatch) Apply(q *Question) {
	if p.TaskNumber != nil {
		q.TaskNumber = *p.TaskNumber
	}
	if p.QuestionNumber != nil {
		q.QuestionNumber = *p.QuestionNumber
	}
	setString(&q.QuestionText, p.QuestionText)
	if p.Options != nil {
		q.Options = append(Options(nil), (*p.Options)...)
	}
	setString(&q.CorrectOption, p.CorrectOption)
	if p.Points != nil {
		q.Points = *p.Points
	}
}

// AnswerKey is the grading view of a question.
type AnswerKey struct {
	QuestionID    int64
	TaskNumber    int
	CorrectOption string
	Points        int
}

// KeyOf extracts the answer key of q. Points are taken as stored.
func KeyOf(q Question) AnswerKey {
	return AnswerKey{
		QuestionID:    q.ID,
		TaskNumber:    q.TaskNumber,
		CorrectOption: q.CorrectOption,
		Points:        q.Points,
	}
}

// ScoreType distinguishes quiz grading from practice grading.
type ScoreType string

const (
	ScoreChoice   ScoreType = "choice"
	ScorePractice ScoreType = "practice"
)

// Valid reports whether t is a known score type.
func (t ScoreType) Valid() bool {
	return t == ScoreChoice || t == ScorePractice
}

// ScoreRecord is one scored event for a student and task.
type ScoreRecord struct {
	ID         int64      `json:"id"`
	StudentID  string     `json:"student_id"`
	TaskNumber int        `json:"task_number"`
	ScoreType  ScoreType  `json:"score_type"`
	Score      int        `json:"score"`
	Completed  bool       `json:"completed"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// ScorePatch is a manual override of a score record.
type ScorePatch struct {
	Score     *int       `json:"score"`
	Completed *bool      `json:"completed"`
	ScoreType *ScoreType `json:"score_type"`
}

// Apply copies the set fields onto rec.
func (p ScorePatch) Apply(rec *ScoreRecord) {
	if p.Score != nil {
		rec.Score = *p.Score
	}
	if p.Completed != nil {
		rec.Completed = *p.Completed
	}
	if p.ScoreType != nil {
		rec.ScoreType = *p.ScoreType
	}
}

// TaskSummary aggregates a student's records for one (task, score type) group.
type TaskSummary struct {
	TaskNumber     int       `json:"task_number"`
	ScoreType      ScoreType `json:"score_type"`
	TotalScore     int       `json:"total_score"`
	TimesCompleted int       `json:"times_completed"`
}

// OverallSummary aggregates all of a student's records.
type OverallSummary struct {
	TotalScore   int     `json:"total_score"`
	AvgScore     float64 `json:"avg_score"`
	RecordsCount int     `json:"records_count"`
}

// StudentSummary is computed on demand and never stored.
type StudentSummary struct {
	StudentID string         `json:"student_id"`
	PerTask   []TaskSummary  `json:"perTask"`
	Overall   OverallSummary `json:"overall"`
}

// LeaderboardEntry is one ranked student.
type LeaderboardEntry struct {
	StudentID     string `json:"student_id"`
	StudentName   string `json:"student_name"`
	WechatID      string `json:"wechat_id"`
	WalletAddress string `json:"wallet_address"`
	TotalScore    int    `json:"total_score"`
}

// RawScore is a score record joined with the owning student's name, if any.
type RawScore struct {
	ID          int64     `json:"id"`
	StudentID   string    `json:"student_id"`
	StudentName *string   `json:"student_name"`
	TaskNumber  int       `json:"task_number"`
	ScoreType   ScoreType `json:"score_type"`
	Score       int       `json:"score"`
}

// Project maps an external project identifier to its contract addresses.
type Project struct {
	ID               int64      `json:"id"`
	ProjectID        string     `json:"project_id"`
	ProjectName      string     `json:"project_name"`
	FactoryAddress   string     `json:"factory_address"`
	WhitelistAddress string     `json:"whitelist_address"`
	NFTAddress       string     `json:"nft_address"`
	ClaimAddress     string     `json:"claim_address"`
	ERC20Address     string     `json:"erc20_address"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

// ProjectClaim records that a student claimed a project's reward.
type ProjectClaim struct {
	ID           int64      `json:"id"`
	StudentID    string     `json:"student_id"`
	StudentName  *string    `json:"student_name"`
	ProjectID    string     `json:"project_id"`
	ProjectName  string     `json:"project_name"`
	NFTAddress   string     `json:"nft_address"`
	ClaimAddress string     `json:"claim_address"`
	ERC20Address string     `json:"erc20_address"`
	HasClaimed   bool       `json:"has_claimed"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// StudentNote is a markdown note kept by staff about one student.
type StudentNote struct {
	ID              int64      `json:"id"`
	StudentID       string     `json:"student_id"`
	StudentName     string     `json:"student_name"`
	Title           string     `json:"title"`
	ContentMarkdown string     `json:"content_markdown"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

// NotePatch updates a note's text; the owning student never changes.
type NotePatch struct {
	StudentName     *string `json:"student_name"`
	Title           *string `json:"title"`
	ContentMarkdown *string `json:"content_markdown"`
}

// Apply copies the set fields onto n.
func (p NotePatch) Apply(n *StudentNote) {
	setString(&n.StudentName, p.StudentName)
	setString(&n.Title, p.Title)
	setString(&n.ContentMarkdown, p.ContentMarkdown)
}
