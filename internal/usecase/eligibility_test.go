package usecase

import (
	"reflect"
	"testing"
	"time"

	"notification-service/internal/domain"
)

func channels(cs []domain.Channel) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, string(c))
	}
	return out
}

func TestEligibleChannelsRespectsPreferences(t *testing.T) {
	prefs := domain.DefaultPreferences("t1", "u1") // sms off

	got := eligibleChannels([]string{"email", "sms", "push", "in-app"}, prefs, time.Now())
	want := []string{"email", "push", "in-app"}
	if !reflect.DeepEqual(channels(got), want) {
		t.Errorf("eligible = %v, want %v", channels(got), want)
	}
}

func TestEligibleChannelsDropsUnknownAndDuplicates(t *testing.T) {
	prefs := domain.DefaultPreferences("t1", "u1")

	got := eligibleChannels([]string{"email", "email", "fax", "EMAIL", "push"}, prefs, time.Now())
	want := []string{"email", "push"}
	if !reflect.DeepEqual(channels(got), want) {
		t.Errorf("eligible = %v, want %v", channels(got), want)
	}
}

func TestEligibleChannelsQuietHoursExemptInApp(t *testing.T) {
	prefs := domain.DefaultPreferences("t1", "u1")
	prefs.SMSEnabled = true
	prefs.QuietHoursStart = "22:00"
	prefs.QuietHoursEnd = "06:00"

	quiet := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.Local)
	got := eligibleChannels([]string{"email", "sms", "push", "in-app"}, prefs, quiet)
	want := []string{"in-app"}
	if !reflect.DeepEqual(channels(got), want) {
		t.Errorf("during quiet hours eligible = %v, want %v", channels(got), want)
	}

	loud := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.Local)
	got = eligibleChannels([]string{"email", "sms", "push", "in-app"}, prefs, loud)
	want = []string{"email", "sms", "push", "in-app"}
	if !reflect.DeepEqual(channels(got), want) {
		t.Errorf("outside quiet hours eligible = %v, want %v", channels(got), want)
	}
}

func TestEligibleChannelsAllDisabled(t *testing.T) {
	prefs := &domain.Preferences{TenantID: "t1", OwnerID: "u1"}

	got := eligibleChannels([]string{"email", "sms", "push", "in-app"}, prefs, time.Now())
	if len(got) != 0 {
		t.Errorf("eligible = %v, want empty", channels(got))
	}
}

func TestEligibleChannelsPreservesRequestOrder(t *testing.T) {
	prefs := domain.DefaultPreferences("t1", "u1")

	got := eligibleChannels([]string{"in-app", "push", "email"}, prefs, time.Now())
	want := []string{"in-app", "push", "email"}
	if !reflect.DeepEqual(channels(got), want) {
		t.Errorf("eligible = %v, want %v", channels(got), want)
	}
}
