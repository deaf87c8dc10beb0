package rotation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/familypulse/internal/model"
	"github.com/dukerupert/familypulse/internal/push"
	"github.com/dukerupert/familypulse/internal/store"
	"github.com/google/uuid"
)

// Notifier delivers a push notification for a rotation event. It may be nil
// when push is not configured; rotation still runs, silently.
type Notifier interface {
	Send(req push.Request) push.Result
}

// FamilyResult is the per-family outcome of one rotation run.
type FamilyResult struct {
	FamilyID          string `json:"family_id"`
	Status            string `json:"status"` // created, skipped, failed
	Reason            string `json:"reason,omitempty"`
	SuggestedQuestion string `json:"suggested_question,omitempty"`
	AskerID           string `json:"asker_id,omitempty"`
	QuestionID        string `json:"question_id,omitempty"`
}

// RunResult summarizes a full rotation pass over all families.
type RunResult struct {
	WeekNumber int            `json:"week_number"`
	WeekStart  string         `json:"week_start"`
	Results    []FamilyResult `json:"results"`
}

// NextAsker picks who asks next from the ID-sorted member list. An unknown or
// empty previous asker starts the cycle at the first member; the cycle wraps
// after the last member.
func NextAsker(members []model.User, lastAskedID string) *model.User {
	if len(members) == 0 {
		return nil
	}
	if lastAskedID != "" {
		for i := range members {
			if members[i].ID == lastAskedID {
				return &members[(i+1)%len(members)]
			}
		}
	}
	return &members[0]
}

// Rotator creates each family's pending question for the week and notifies
// the chosen asker.
type Rotator struct {
	families  *store.FamilyStore
	questions *store.QuestionStore
	presets   *store.PresetStore
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

func NewRotator(families *store.FamilyStore, questions *store.QuestionStore, presets *store.PresetStore, notifier Notifier, logger *slog.Logger) *Rotator {
	return &Rotator{
		families:  families,
		questions: questions,
		presets:   presets,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// RotateAll runs one rotation pass over every family. The pass is idempotent
// for a given week: re-running it skips families that already have that
// week's question. One family's failure never stops the others.
func (r *Rotator) RotateAll() (*RunResult, error) {
	now := r.now()
	weekNumber := WeekNumber(now)
	weekStart := WeekStart(now).Format("2006-01-02")

	ids, err := r.families.ListFamilyIDs()
	if err != nil {
		return nil, fmt.Errorf("rotate questions: %w", err)
	}

	run := &RunResult{WeekNumber: weekNumber, WeekStart: weekStart, Results: make([]FamilyResult, 0, len(ids))}
	for _, familyID := range ids {
		res := r.rotateFamily(familyID, weekNumber, weekStart)
		run.Results = append(run.Results, res)
		r.logger.Info("rotated family",
			"family_id", familyID, "week_number", weekNumber,
			"status", res.Status, "reason", res.Reason)
	}
	return run, nil
}

// InitializeFamily creates the current week's question for a single family,
// used when a family first enables the feature rather than waiting for the
// next scheduled run.
func (r *Rotator) InitializeFamily(familyID string) FamilyResult {
	now := r.now()
	return r.rotateFamily(familyID, WeekNumber(now), WeekStart(now).Format("2006-01-02"))
}

func (r *Rotator) rotateFamily(familyID string, weekNumber int, weekStart string) FamilyResult {
	res := FamilyResult{FamilyID: familyID}

	members, err := r.families.ListMembers(familyID)
	if err != nil {
		r.logger.Error("list family members", "family_id", familyID, "error", err)
		res.Status = "failed"
		res.Reason = "could not load family members"
		return res
	}
	if len(members) == 0 {
		res.Status = "skipped"
		res.Reason = "no family members"
		return res
	}

	existing, err := r.questions.GetByFamilyWeek(familyID, weekNumber)
	if err != nil {
		r.logger.Error("check existing question", "family_id", familyID, "error", err)
		res.Status = "failed"
		res.Reason = "could not check existing question"
		return res
	}
	if existing != nil {
		res.Status = "skipped"
		res.Reason = "question already exists"
		res.QuestionID = existing.ID
		return res
	}

	var lastAskedID string
	latest, err := r.questions.LatestByFamily(familyID)
	if err != nil {
		r.logger.Error("load latest question", "family_id", familyID, "error", err)
		res.Status = "failed"
		res.Reason = "could not determine previous asker"
		return res
	}
	if latest != nil {
		lastAskedID = latest.AssignedUserID
	}
	asker := NextAsker(members, lastAskedID)

	preset, err := r.presets.Random()
	if err != nil || preset == nil {
		if err != nil {
			r.logger.Error("pick preset question", "family_id", familyID, "error", err)
		}
		res.Status = "failed"
		res.Reason = "no preset questions available"
		return res
	}

	q := &model.WeeklyQuestion{
		ID:                    uuid.NewString(),
		FamilyID:              familyID,
		WeekStartDate:         weekStart,
		WeekNumber:            weekNumber,
		AssignedUserID:        asker.ID,
		SuggestedQuestionText: preset.QuestionText,
		Status:                model.QuestionPending,
	}
	inserted, err := r.questions.Insert(q)
	if err != nil {
		r.logger.Error("insert weekly question", "family_id", familyID, "error", err)
		res.Status = "failed"
		res.Reason = "could not create question"
		return res
	}
	if !inserted {
		// A concurrent run won the unique constraint race.
		res.Status = "skipped"
		res.Reason = "question already exists"
		return res
	}

	res.Status = "created"
	res.SuggestedQuestion = preset.QuestionText
	res.AskerID = asker.ID
	res.QuestionID = q.ID

	if r.notifier != nil {
		nres := r.notifier.Send(push.Request{
			UserID:     asker.ID,
			Category:   model.CategoryYourTurn,
			Title:      "It's your turn!",
			Body:       "Pick this week's question for your family",
			URL:        "/connect",
			QuestionID: q.ID,
		})
		if !nres.Success {
			r.logger.Info("asker notification not delivered",
				"family_id", familyID, "user_id", asker.ID, "reason", nres.Error)
		}
	}

	return res
}
