package domain

import "time"

// Kind names a family of user-owned records. The value doubles as the URL
// segment under /api/users/:userId.
type Kind string

const (
	KindEmotion          Kind = "emotions"
	KindThought          Kind = "thoughts"
	KindGoal             Kind = "goals"
	KindAction           Kind = "actions"
	KindJournal          Kind = "journals"
	KindProtectiveFactor Kind = "protective-factors"
	KindCopingStrategy   Kind = "coping-strategies"
	KindResource         Kind = "resources"
	KindStrategyUsage    Kind = "strategy-usages"
)

// Collection is the persistence collection backing the kind.
func (k Kind) Collection() string {
	switch k {
	case KindEmotion:
		return "emotion_records"
	case KindThought:
		return "thought_records"
	case KindGoal:
		return "goals"
	case KindAction:
		return "actions"
	case KindJournal:
		return "journal_entries"
	case KindProtectiveFactor:
		return "protective_factors"
	case KindCopingStrategy:
		return "coping_strategies"
	case KindResource:
		return "resources"
	case KindStrategyUsage:
		return "strategy_usages"
	default:
		return string(k)
	}
}

// Personal reports whether records of this kind describe the owner's own
// experience. Therapists may never create them.
func (k Kind) Personal() bool {
	switch k {
	case KindEmotion, KindThought, KindGoal, KindAction:
		return true
	default:
		return false
	}
}

// SharesGlobal reports whether owner-less library entries of this kind are
// visible to every user.
func (k Kind) SharesGlobal() bool {
	return k == KindProtectiveFactor || k == KindCopingStrategy
}

// Record is implemented by every user-owned record type.
type Record interface {
	Kind() Kind
	Meta() *RecordMeta
}

// Managed is implemented by records whose server-maintained fields must
// survive a client update.
type Managed interface {
	RestoreManaged(prev Record)
}

// Defaulter is implemented by records that fill server defaults on create.
type Defaulter interface {
	ApplyDefaults(now time.Time)
}

// RecordMeta holds the identity and ownership fields shared by all records.
// UserID is empty only for global library entries.
type RecordMeta struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId,omitempty" bson:"user_id,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

func (m *RecordMeta) Meta() *RecordMeta { return m }

// Comment is therapist feedback or a note attached to a record.
type Comment struct {
	ID         string    `json:"id" bson:"id"`
	AuthorID   string    `json:"authorId" bson:"author_id"`
	AuthorRole Role      `json:"authorRole" bson:"author_role"`
	Body       string    `json:"body" bson:"body"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

// EmotionRecord captures a single emotional episode.
type EmotionRecord struct {
	RecordMeta     `bson:",inline"`
	Emotion        string    `json:"emotion" bson:"emotion" validate:"required,max=64"`
	Intensity      int       `json:"intensity" bson:"intensity" validate:"min=1,max=10"`
	Trigger        string    `json:"trigger,omitempty" bson:"trigger,omitempty"`
	BodySensations []string  `json:"bodySensations,omitempty" bson:"body_sensations,omitempty"`
	Notes          string    `json:"notes,omitempty" bson:"notes,omitempty"`
	RecordedAt     time.Time `json:"recordedAt" bson:"recorded_at"`
}

func (*EmotionRecord) Kind() Kind { return KindEmotion }

func (e *EmotionRecord) ApplyDefaults(now time.Time) {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = now
	}
}

// ThoughtRecord is a CBT thought record, optionally linked to an emotion.
type ThoughtRecord struct {
	RecordMeta           `bson:",inline"`
	EmotionRecordID      string   `json:"emotionRecordId,omitempty" bson:"emotion_record_id,omitempty"`
	Situation            string   `json:"situation" bson:"situation" validate:"required"`
	AutomaticThought     string   `json:"automaticThought" bson:"automatic_thought" validate:"required"`
	CognitiveDistortions []string `json:"cognitiveDistortions,omitempty" bson:"cognitive_distortions,omitempty"`
	EvidenceFor          string   `json:"evidenceFor,omitempty" bson:"evidence_for,omitempty"`
	EvidenceAgainst      string   `json:"evidenceAgainst,omitempty" bson:"evidence_against,omitempty"`
	AlternativeThought   string   `json:"alternativeThought,omitempty" bson:"alternative_thought,omitempty"`
	BeliefBefore         int      `json:"beliefBefore" bson:"belief_before" validate:"min=0,max=100"`
	BeliefAfter          int      `json:"beliefAfter" bson:"belief_after" validate:"min=0,max=100"`
}

func (*ThoughtRecord) Kind() Kind { return KindThought }

// GoalStatus is the progress state of a goal.
type GoalStatus string

const (
	GoalNotStarted GoalStatus = "not_started"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalAbandoned  GoalStatus = "abandoned"
)

// ParseGoalStatus converts a wire value into a GoalStatus.
func ParseGoalStatus(s string) (GoalStatus, error) {
	switch st := GoalStatus(s); st {
	case GoalNotStarted, GoalInProgress, GoalCompleted, GoalAbandoned:
		return st, nil
	default:
		return "", Invalid("unknown goal status " + s)
	}
}

// Milestone is a step towards a goal.
type Milestone struct {
	ID          string     `json:"id" bson:"id"`
	Title       string     `json:"title" bson:"title"`
	Completed   bool       `json:"completed" bson:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
}

// Goal is a client goal with milestones and therapist feedback.
type Goal struct {
	RecordMeta  `bson:",inline"`
	Title       string      `json:"title" bson:"title" validate:"required,max=200"`
	Description string      `json:"description,omitempty" bson:"description,omitempty"`
	Category    string      `json:"category,omitempty" bson:"category,omitempty"`
	Status      GoalStatus  `json:"status" bson:"status" validate:"omitempty,oneof=not_started in_progress completed abandoned"`
	TargetDate  *time.Time  `json:"targetDate,omitempty" bson:"target_date,omitempty"`
	Milestones  []Milestone `json:"milestones" bson:"milestones"`
	Feedback    []Comment   `json:"feedback" bson:"feedback"`
}

func (*Goal) Kind() Kind { return KindGoal }

func (g *Goal) ApplyDefaults(time.Time) {
	if g.Status == "" {
		g.Status = GoalNotStarted
	}
	if g.Milestones == nil {
		g.Milestones = []Milestone{}
	}
	if g.Feedback == nil {
		g.Feedback = []Comment{}
	}
}

func (g *Goal) RestoreManaged(prev Record) {
	if p, ok := prev.(*Goal); ok {
		g.Milestones = p.Milestones
		g.Feedback = p.Feedback
		g.Status = p.Status
	}
}

// Action is a concrete behavioural step, optionally tied to a goal.
type Action struct {
	RecordMeta  `bson:",inline"`
	GoalID      string     `json:"goalId,omitempty" bson:"goal_id,omitempty"`
	Title       string     `json:"title" bson:"title" validate:"required,max=200"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty" bson:"due_date,omitempty"`
	Completed   bool       `json:"completed" bson:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
}

func (*Action) Kind() Kind { return KindAction }

func (a *Action) RestoreManaged(prev Record) {
	if p, ok := prev.(*Action); ok {
		a.Completed = p.Completed
		a.CompletedAt = p.CompletedAt
	}
}

// JournalEntry is free-form journaling with therapist comments.
type JournalEntry struct {
	RecordMeta `bson:",inline"`
	Title      string    `json:"title,omitempty" bson:"title,omitempty" validate:"max=200"`
	Content    string    `json:"content" bson:"content" validate:"required"`
	Mood       string    `json:"mood,omitempty" bson:"mood,omitempty"`
	Tags       []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	Comments   []Comment `json:"comments" bson:"comments"`
}

func (*JournalEntry) Kind() Kind { return KindJournal }

func (j *JournalEntry) ApplyDefaults(time.Time) {
	if j.Comments == nil {
		j.Comments = []Comment{}
	}
}

func (j *JournalEntry) RestoreManaged(prev Record) {
	if p, ok := prev.(*JournalEntry); ok {
		j.Comments = p.Comments
	}
}

// ProtectiveFactor is something that supports the user's wellbeing.
type ProtectiveFactor struct {
	RecordMeta  `bson:",inline"`
	Name        string `json:"name" bson:"name" validate:"required,max=120"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
}

func (*ProtectiveFactor) Kind() Kind { return KindProtectiveFactor }

// CopingStrategy is a technique the user can apply.
type CopingStrategy struct {
	RecordMeta  `bson:",inline"`
	Name        string `json:"name" bson:"name" validate:"required,max=120"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
}

func (*CopingStrategy) Kind() Kind { return KindCopingStrategy }

// Resource is reading or worksheet material shared with a user.
type Resource struct {
	RecordMeta  `bson:",inline"`
	Title       string `json:"title" bson:"title" validate:"required,max=200"`
	URL         string `json:"url,omitempty" bson:"url,omitempty" validate:"omitempty,url"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
}

func (*Resource) Kind() Kind { return KindResource }

// StrategyUsage links a thought record to a coping strategy or protective
// factor applied in that situation.
type StrategyUsage struct {
	RecordMeta      `bson:",inline"`
	ThoughtRecordID string `json:"thoughtRecordId" bson:"thought_record_id"`
	StrategyID      string `json:"strategyId" bson:"strategy_id" validate:"required"`
	StrategyKind    Kind   `json:"strategyKind" bson:"strategy_kind" validate:"required,oneof=coping-strategies protective-factors"`
	Helpful         *bool  `json:"helpful,omitempty" bson:"helpful,omitempty"`
}

func (*StrategyUsage) Kind() Kind { return KindStrategyUsage }

// RecordPtr constrains generic code to pointers of record structs.
type RecordPtr[T any] interface {
	*T
	Record
}
