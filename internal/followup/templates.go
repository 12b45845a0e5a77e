package followup

import "fmt"

// Template returns the subject and body for the k-th follow-up
// (1-indexed). Out-of-range k falls back to the last message.
func Template(k int, creatorName, channelName, assetURL string) (string, string) {
	name := creatorName
	if name == "" {
		name = "there"
	}

	switch k {
	case 1:
		return "Quick follow-up on the sample animation",
			fmt.Sprintf(`Hi %s,

Just floating my last note back up. I put together a short animated sample based on one of your videos and would love your take on it.

%s

No pressure either way, happy to answer any questions.`, name, assetURL)
	case 2:
		return fmt.Sprintf("Re: sample animation for %s", channelName),
			fmt.Sprintf(`Hi %s,

I know inboxes get buried, so one more nudge. The sample is still up here:

%s

If animation isn't a priority right now that's completely fine, a one-line "not interested" works too.`, name, assetURL)
	case 3:
		return "Should I close this out?",
			fmt.Sprintf(`Hi %s,

Haven't heard back so I'll assume the timing isn't right. If you'd like to see what your explainers could look like animated, the sample stays up:

%s`, name, assetURL)
	default:
		return "Closing the loop",
			fmt.Sprintf(`Hi %s,

This is my last note, I won't keep nudging. If professionally animated versions of your videos ever become interesting, just reply to any of these emails and I'll pick it right back up.

All the best with the channel.`, name)
	}
}
