package usecase

import (
	"time"

	"notification-service/internal/domain"
)

// eligibleChannels narrows the requested channel tags to those the
// recipient's preferences and the current time allow. Unknown tags and
// duplicates are dropped silently. Quiet hours suppress email, SMS and
// push; in-app is pull-based and exempt.
func eligibleChannels(requested []string, prefs *domain.Preferences, now time.Time) []domain.Channel {
	quiet := prefs.InQuietHours(now)

	var out []domain.Channel
	seen := make(map[domain.Channel]bool, len(requested))
	for _, raw := range requested {
		ch, ok := domain.ParseChannel(raw)
		if !ok || seen[ch] {
			continue
		}
		seen[ch] = true

		switch ch {
		case domain.ChannelEmail:
			if prefs.EmailEnabled && !quiet {
				out = append(out, ch)
			}
		case domain.ChannelSMS:
			if prefs.SMSEnabled && !quiet {
				out = append(out, ch)
			}
		case domain.ChannelPush:
			if prefs.PushEnabled && !quiet {
				out = append(out, ch)
			}
		case domain.ChannelInApp:
			if prefs.InAppEnabled {
				out = append(out, ch)
			}
		}
	}
	return out
}
