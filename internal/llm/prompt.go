package llm

import (
	"fmt"
	"strings"

	"outreach-engine/internal/qualify"
)

const evalSchema = `{
  "creator_first_name": "best guess at the creator's first name, or the channel name",
  "language": {
    "primary_language": "e.g. English",
    "is_english": true,
    "language_score": -2
  },
  "content_fit": {
    "is_educational": true,
    "subject_area": "e.g. physics, programming, history",
    "content_depth": "surface | intermediate | deep",
    "needs_visual_animation": true,
    "fit_score": 0
  },
  "channel_quality": {
    "production_level": "low | medium | high",
    "has_upgrade_potential": true,
    "quality_score": 0
  },
  "subscriber_fit": {
    "tier": "too_small | small | sweet_spot | big | unknown",
    "sub_score": 0
  },
  "disqualify": {
    "should_disqualify": false,
    "reason": ""
  },
  "overall_assessment": "two or three sentences"
}`

func evalPrompt(ec qualify.EvalContext) string {
	var b strings.Builder
	b.WriteString("You are vetting YouTube creators as outreach targets for an educational-video animation service.\n")
	b.WriteString("Judge whether this channel makes educational content that would benefit from professional visual animation.\n\n")

	fmt.Fprintf(&b, "Channel: %s\n", ec.ChannelName)
	fmt.Fprintf(&b, "Subscribers: %s (tier: %s)\n", ec.SubscriberText, ec.Tier)
	if ec.ProfileText != "" {
		fmt.Fprintf(&b, "Channel description: %s\n", ec.ProfileText)
	}
	fmt.Fprintf(&b, "Sample video: %s\n", ec.VideoTitle)
	if ec.VideoDescription != "" {
		fmt.Fprintf(&b, "Video description: %s\n", ec.VideoDescription)
	}
	if ec.Transcript != "" {
		fmt.Fprintf(&b, "Transcript excerpt:\n%s\n", ec.Transcript)
	}

	b.WriteString("\nScoring guide:\n")
	b.WriteString("- language_score: -2 to 2. English content scores 2, major European languages 0 to 1, anything else negative.\n")
	b.WriteString("- fit_score: 0 to 3. Educational explainer content that is text- or talking-head-heavy scores highest.\n")
	b.WriteString("- quality_score: 0 to 2. Decent channels with clear room to upgrade visuals score highest.\n")
	b.WriteString("- sub_score: 0 to 2. sweet_spot tier scores 2, small 1, everything else 0.\n")
	b.WriteString("- Set should_disqualify only for hard misses: non-educational content, kids entertainment, pure music, reaction or compilation channels.\n")

	b.WriteString("\nRespond with ONLY a JSON object in exactly this shape:\n")
	b.WriteString(evalSchema)
	return b.String()
}

func keywordPrompt(avoid []string) string {
	var b strings.Builder
	b.WriteString("Generate 20 YouTube search queries for finding small and mid-size educational creators.\n")
	b.WriteString("Target explainer channels across science, math, engineering, history, economics, medicine and programming.\n")
	b.WriteString("Mix broad topics with niche sub-topics. One query per line, no numbering, no quotes, no commentary.\n")
	if len(avoid) > 0 {
		b.WriteString("\nDo not repeat any of these already-used queries:\n")
		for _, a := range avoid {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}
	return b.String()
}
