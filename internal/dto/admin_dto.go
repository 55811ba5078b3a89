package dto

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	StatusNotStarted = "non_commencé"
	StatusInProgress = "en_cours"
	StatusFinished   = "finalisé"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery is a normalised page request.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

// NewListQuery parses raw query values. Unparseable numbers count as zero
// and are then clamped: page >= 1, 1 <= limit <= 100.
func NewListQuery(page, limit, search string) ListQuery {
	q := ListQuery{Page: 1, Limit: DefaultPageSize, Search: strings.TrimSpace(search)}
	if page != "" {
		q.Page, _ = strconv.Atoi(page)
	}
	if limit != "" {
		q.Limit, _ = strconv.Atoi(limit)
	}
	q.Page = max(1, q.Page)
	q.Limit = max(1, min(MaxPageSize, q.Limit))
	return q
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

func (q ListQuery) Pagination(total int64) *Pagination {
	return &Pagination{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
	}
}

// UserSummaryDTO is one row of the back-office user listing.
type UserSummaryDTO struct {
	ID                uint       `json:"id"`
	UserCode          string     `json:"userCode" copier:"-"`
	FirstName         *string    `json:"firstName"`
	LastName          *string    `json:"lastName"`
	Email             string     `json:"email"`
	Telephone         *string    `json:"telephone"`
	WhatsappNumber    *string    `json:"whatsappNumber"`
	Age               *int       `json:"age"`
	CreatedAt         time.Time  `json:"createdAt"`
	LastLoginAt       *time.Time `json:"lastLoginAt"`
	IsPresent         bool       `json:"isPresent"`
	QRCode            *string    `json:"qrCode"`
	TestStatus        string     `json:"testStatus"`
	CurrentStep       *string    `json:"currentStep"`
	TestCompleted     bool       `json:"testCompleted"`
	CompletedSteps    []string   `json:"completedSteps"`
	AllStepsCompleted bool       `json:"allStepsCompleted"`
	DominantProfile   *string    `json:"dominantProfile"`
	IsStaff           bool       `json:"isStaff"`
	IsSuperAdmin      bool       `json:"isSuperAdmin"`
}

type StatsDTO struct {
	TotalUsers         int64   `json:"totalUsers"`
	UsersWithTests     int64   `json:"usersWithTests"`
	CompletedTests     int64   `json:"completedTests"`
	PresentUsers       int64   `json:"presentUsers"`
	AbsentUsers        int64   `json:"absentUsers"`
	TestCompletionRate float64 `json:"testCompletionRate"`
	PresenceRate       float64 `json:"presenceRate"`
}

type ScanUserDTO struct {
	ID        uint    `json:"id"`
	UserCode  string  `json:"userCode"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     string  `json:"email"`
}

type ScanTestDTO struct {
	HasTest           bool     `json:"hasTest"`
	IsCompleted       bool     `json:"isCompleted"`
	HasReport         bool     `json:"hasReport"`
	CompletedSteps    []string `json:"completedSteps"`
	AllStepsCompleted bool     `json:"allStepsCompleted"`
	DominantProfile   *string  `json:"dominantProfile"`
}

type ScanPresenceDTO struct {
	IsPresent bool      `json:"isPresent"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScanResultDTO is returned when a guest's QR code is scanned at the door.
type ScanResultDTO struct {
	User     ScanUserDTO     `json:"user"`
	Test     ScanTestDTO     `json:"test"`
	Presence ScanPresenceDTO `json:"presence"`
}
