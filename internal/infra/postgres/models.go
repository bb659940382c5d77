package postgres

import (
	"time"

	"cohort-admin/internal/domain"
	"github.com/uptrace/bun"
)

type registrationRow struct {
	bun.BaseModel `bun:"table:registrations,alias:r"`

	ID                  int64      `bun:"id,pk,autoincrement"`
	StudentName         string     `bun:"student_name,notnull"`
	WechatID            string     `bun:"wechat_id,notnull"`
	Phone               string     `bun:"phone,notnull"`
	Email               string     `bun:"email,notnull"`
	Gender              string     `bun:"gender,notnull"`
	AgeGroup            string     `bun:"age_group,notnull"`
	Education           string     `bun:"education,notnull"`
	University          string     `bun:"university,notnull"`
	Major               string     `bun:"major,notnull"`
	City                string     `bun:"city,notnull"`
	Role                string     `bun:"role,notnull"`
	Languages           string     `bun:"languages,notnull"`
	Experience          string     `bun:"experience,notnull"`
	Source              string     `bun:"source,notnull"`
	HasWeb3Experience   bool       `bun:"has_web3_experience,notnull"`
	StudyTime           string     `bun:"study_time,notnull"`
	Interests           string     `bun:"interests,notnull"`
	Platforms           string     `bun:"platforms,notnull"`
	WillingToHackathon  bool       `bun:"willing_to_hackathon,notnull"`
	WillingToLead       bool       `bun:"willing_to_lead,notnull"`
	WantsPrivateService bool       `bun:"wants_private_service,notnull"`
	Referrer            string     `bun:"referrer,notnull"`
	WalletAddress       string     `bun:"wallet_address,notnull"`
	StudentID           string     `bun:"student_id,notnull,unique"`
	Approved            *bool      `bun:"approved"`
	CreatedAt           time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt           *time.Time `bun:"updated_at"`
}

func registrationFromDomain(r domain.Registration) *registrationRow {
	return &registrationRow{
		ID:                  r.ID,
		StudentName:         r.StudentName,
		WechatID:            r.WechatID,
		Phone:               r.Phone,
		Email:               r.Email,
		Gender:              r.Gender,
		AgeGroup:            r.AgeGroup,
		Education:           r.Education,
		University:          r.University,
		Major:               r.Major,
		City:                r.City,
		Role:                r.Role,
		Languages:           r.Languages,
		Experience:          r.Experience,
		Source:              r.Source,
		HasWeb3Experience:   r.HasWeb3Experience,
		StudyTime:           r.StudyTime,
		Interests:           r.Interests,
		Platforms:           r.Platforms,
		WillingToHackathon:  r.WillingToHackathon,
		WillingToLead:       r.WillingToLead,
		WantsPrivateService: r.WantsPrivateService,
		Referrer:            r.Referrer,
		WalletAddress:       r.WalletAddress,
		StudentID:           r.StudentID,
		Approved:            r.Approved,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func (row *registrationRow) toDomain() domain.Registration {
	return domain.Registration{
		ID:                  row.ID,
		StudentName:         row.StudentName,
		WechatID:            row.WechatID,
		Phone:               row.Phone,
		Email:               row.Email,
		Gender:              row.Gender,
		AgeGroup:            row.AgeGroup,
		Education:           row.Education,
		University:          row.University,
		Major:               row.Major,
		City:                row.City,
		Role:                row.Role,
		Languages:           row.Languages,
		Experience:          row.Experience,
		Source:              row.Source,
		HasWeb3Experience:   row.HasWeb3Experience,
		StudyTime:           row.StudyTime,
		Interests:           row.Interests,
		Platforms:           row.Platforms,
		WillingToHackathon:  row.WillingToHackathon,
		WillingToLead:       row.WillingToLead,
		WantsPrivateService: row.WantsPrivateService,
		Referrer:            row.Referrer,
		WalletAddress:       row.WalletAddress,
		StudentID:           row.StudentID,
		Approved:            row.Approved,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

type retiredStudentIDRow struct {
	bun.BaseModel `bun:"table:retired_student_ids,alias:rs"`

	StudentID string    `bun:"student_id,pk"`
	RetiredAt time.Time `bun:"retired_at,nullzero,notnull,default:current_timestamp"`
}

type staffRow struct {
	bun.BaseModel `bun:"table:staff,alias:s"`

	ID            int64     `bun:"id,pk,autoincrement"`
	Name          string    `bun:"name,notnull"`
	WechatID      string    `bun:"wechat_id,notnull"`
	Phone         string    `bun:"phone,notnull"`
	Role          string    `bun:"role,notnull"`
	WalletAddress string    `bun:"wallet_address,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (row *staffRow) toDomain() domain.Staff {
	return domain.Staff{
		ID:            row.ID,
		Name:          row.Name,
		WechatID:      row.WechatID,
		Phone:         row.Phone,
		Role:          row.Role,
		WalletAddress: row.WalletAddress,
		CreatedAt:     row.CreatedAt,
	}
}

// questionRow keeps options as the serialized text stored in the column.
type questionRow struct {
	bun.BaseModel `bun:"table:choice_questions,alias:q"`

	ID             int64     `bun:"id,pk,autoincrement"`
	TaskNumber     int       `bun:"task_number,notnull"`
	QuestionNumber int       `bun:"question_number,notnull"`
	QuestionText   string    `bun:"question_text,notnull"`
	Options        string    `bun:"options,notnull"`
	CorrectOption  string    `bun:"correct_option,notnull"`
	Score          int       `bun:"score,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (row *questionRow) toDomain() (domain.Question, error) {
	opts, err := domain.DecodeOptions(row.ID, row.Options)
	if err != nil {
		return domain.Question{}, err
	}
	q := row.withoutOptions()
	q.Options = opts
	return q, nil
}

func (row *questionRow) withoutOptions() domain.Question {
	return domain.Question{
		ID:             row.ID,
		TaskNumber:     row.TaskNumber,
		QuestionNumber: row.QuestionNumber,
		QuestionText:   row.QuestionText,
		CorrectOption:  row.CorrectOption,
		Points:         row.Score,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

type scoreRow struct {
	bun.BaseModel `bun:"table:task_scores,alias:ts"`

	ID         int64      `bun:"id,pk,autoincrement"`
	StudentID  string     `bun:"student_id,notnull"`
	TaskNumber int        `bun:"task_number,notnull"`
	ScoreType  string     `bun:"score_type,notnull"`
	Score      int        `bun:"score,notnull"`
	Completed  bool       `bun:"completed,notnull"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  *time.Time `bun:"updated_at"`
}

func (row *scoreRow) toDomain() domain.ScoreRecord {
	return domain.ScoreRecord{
		ID:         row.ID,
		StudentID:  row.StudentID,
		TaskNumber: row.TaskNumber,
		ScoreType:  domain.ScoreType(row.ScoreType),
		Score:      row.Score,
		Completed:  row.Completed,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

type projectRow struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID               int64      `bun:"id,pk,autoincrement"`
	ProjectID        string     `bun:"project_id,notnull,unique"`
	ProjectName      string     `bun:"project_name"`
	FactoryAddress   string     `bun:"factory_address"`
	WhitelistAddress string     `bun:"whitelist_address"`
	NFTAddress       string     `bun:"nft_address"`
	ClaimAddress     string     `bun:"claim_address"`
	ERC20Address     string     `bun:"erc20_address"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        *time.Time `bun:"updated_at"`
}

func (row *projectRow) toDomain() domain.Project {
	return domain.Project{
		ID:               row.ID,
		ProjectID:        row.ProjectID,
		ProjectName:      row.ProjectName,
		FactoryAddress:   row.FactoryAddress,
		WhitelistAddress: row.WhitelistAddress,
		NFTAddress:       row.NFTAddress,
		ClaimAddress:     row.ClaimAddress,
		ERC20Address:     row.ERC20Address,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

type claimRow struct {
	bun.BaseModel `bun:"table:student_project_claims,alias:c"`

	ID           int64      `bun:"id,pk,autoincrement"`
	StudentID    string     `bun:"student_id,notnull"`
	StudentName  *string    `bun:"student_name,scanonly"`
	ProjectID    string     `bun:"project_id,notnull"`
	ProjectName  string     `bun:"project_name"`
	NFTAddress   string     `bun:"nft_address"`
	ClaimAddress string     `bun:"claim_address"`
	ERC20Address string     `bun:"erc20_address"`
	HasClaimed   bool       `bun:"has_claimed,notnull"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    *time.Time `bun:"updated_at"`
}

func (row *claimRow) toDomain() domain.ProjectClaim {
	return domain.ProjectClaim{
		ID:           row.ID,
		StudentID:    row.StudentID,
		StudentName:  row.StudentName,
		ProjectID:    row.ProjectID,
		ProjectName:  row.ProjectName,
		NFTAddress:   row.NFTAddress,
		ClaimAddress: row.ClaimAddress,
		ERC20Address: row.ERC20Address,
		HasClaimed:   row.HasClaimed,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type noteRow struct {
	bun.BaseModel `bun:"table:student_notes,alias:n"`

	ID              int64      `bun:"id,pk,autoincrement"`
	StudentID       string     `bun:"student_id,notnull"`
	StudentName     string     `bun:"student_name"`
	Title           string     `bun:"title"`
	ContentMarkdown string     `bun:"content_markdown"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       *time.Time `bun:"updated_at"`
}

func (row *noteRow) toDomain() domain.StudentNote {
	return domain.StudentNote{
		ID:              row.ID,
		StudentID:       row.StudentID,
		StudentName:     row.StudentName,
		Title:           row.Title,
		ContentMarkdown: row.ContentMarkdown,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}
