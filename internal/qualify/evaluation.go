package qualify

import (
	"context"
	"fmt"

	"outreach-engine/internal/domain"
)

// EvalContext is the structured context handed to the semantic evaluator.
type EvalContext struct {
	ChannelName      string
	SubscriberText   string // "250,000" or "Unknown"
	Tier             domain.Tier
	ProfileText      string
	VideoTitle       string
	VideoDescription string
	Transcript       string // optional excerpt
}

// Evaluation is the evaluator's result. Required fields are pointers so a
// missing value is distinguishable from a zero one; Validate fails closed
// on anything absent rather than guessing.
type Evaluation struct {
	CreatorFirstName string `json:"creator_first_name"`

	Language struct {
		Primary   string `json:"primary_language"`
		IsEnglish *bool  `json:"is_english"`
		Score     *int   `json:"language_score"`
	} `json:"language"`

	ContentFit struct {
		IsEducational *bool  `json:"is_educational"`
		SubjectArea   string `json:"subject_area"`
		Depth         string `json:"content_depth"`
		NeedsVisuals  *bool  `json:"needs_visual_animation"`
		Score         *int   `json:"fit_score"`
	} `json:"content_fit"`

	Quality struct {
		ProductionLevel  string `json:"production_level"`
		UpgradePotential *bool  `json:"has_upgrade_potential"`
		Score            *int   `json:"quality_score"`
	} `json:"channel_quality"`

	SubscriberFit struct {
		Tier  string `json:"tier"`
		Score *int   `json:"sub_score"`
	} `json:"subscriber_fit"`

	Disqualify struct {
		Should *bool  `json:"should_disqualify"`
		Reason string `json:"reason"`
	} `json:"disqualify"`

	Assessment string `json:"overall_assessment"`
}

// Validate checks every required field arrived. Any gap is a
// ValidationError; the lead stays where it was for a re-attempt.
func (e *Evaluation) Validate() error {
	missing := func(field string) error {
		return &domain.ValidationError{
			Op:  "evaluate",
			Err: fmt.Errorf("missing required field %q", field),
		}
	}

	switch {
	case e.CreatorFirstName == "":
		return missing("creator_first_name")
	case e.Language.Primary == "":
		return missing("language.primary_language")
	case e.Language.IsEnglish == nil:
		return missing("language.is_english")
	case e.Language.Score == nil:
		return missing("language.language_score")
	case e.ContentFit.IsEducational == nil:
		return missing("content_fit.is_educational")
	case e.ContentFit.SubjectArea == "":
		return missing("content_fit.subject_area")
	case e.ContentFit.Depth == "":
		return missing("content_fit.content_depth")
	case e.ContentFit.Score == nil:
		return missing("content_fit.fit_score")
	case e.Quality.ProductionLevel == "":
		return missing("channel_quality.production_level")
	case e.Quality.Score == nil:
		return missing("channel_quality.quality_score")
	case e.SubscriberFit.Tier == "":
		return missing("subscriber_fit.tier")
	case e.SubscriberFit.Score == nil:
		return missing("subscriber_fit.sub_score")
	case e.Disqualify.Should == nil:
		return missing("disqualify.should_disqualify")
	case e.Assessment == "":
		return missing("overall_assessment")
	}
	return nil
}

// Evaluator is the external semantic-evaluation collaborator.
type Evaluator interface {
	Evaluate(ctx context.Context, ec EvalContext) (*Evaluation, string, error)
}
